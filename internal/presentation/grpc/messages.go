package grpc

// ScoreRequest represents the proto ScoreRequest message.
type ScoreRequest struct {
	Text string `json:"text"`
}

// ScoreResponse represents the proto ScoreResponse message.
type ScoreResponse struct {
	Subjectivity float64 `json:"subjectivity"`
	Objectivity  float64 `json:"objectivity"`
	Level        string  `json:"level"`
	ModelName    string  `json:"model_name"`
}

// AssessmentMsg represents the proto TextAssessment message.
type AssessmentMsg struct {
	ID           string  `json:"id"`
	TenantID     string  `json:"tenant_id"`
	Reference    string  `json:"reference,omitempty"`
	Subjectivity float64 `json:"subjectivity"`
	Objectivity  float64 `json:"objectivity"`
	Level        string  `json:"level"`
	ModelName    string  `json:"model_name"`
	AssessedAt   string  `json:"assessed_at"`
}

// AssessTextRequest represents the proto AssessTextRequest message.
// TenantID is only honored when authentication is disabled.
type AssessTextRequest struct {
	TenantID  string `json:"tenant_id,omitempty"`
	Reference string `json:"reference,omitempty"`
	Text      string `json:"text"`
}

// AssessTextResponse represents the proto AssessTextResponse message.
type AssessTextResponse struct {
	Assessment *AssessmentMsg `json:"assessment"`
}

// BatchItemMsg represents one text of an AssessBatchRequest.
type BatchItemMsg struct {
	Reference string `json:"reference,omitempty"`
	Text      string `json:"text"`
}

// AssessBatchRequest represents the proto AssessBatchRequest message.
type AssessBatchRequest struct {
	TenantID string         `json:"tenant_id,omitempty"`
	Items    []BatchItemMsg `json:"items"`
}

// AssessBatchResponse represents the proto AssessBatchResponse message.
type AssessBatchResponse struct {
	Assessments []*AssessmentMsg `json:"assessments"`
}

// GetAssessmentRequest represents the proto GetAssessmentRequest message.
type GetAssessmentRequest struct {
	TenantID string `json:"tenant_id,omitempty"`
	ID       string `json:"id"`
}

// GetAssessmentResponse represents the proto GetAssessmentResponse message.
type GetAssessmentResponse struct {
	Assessment *AssessmentMsg `json:"assessment"`
}

// ListAssessmentsRequest represents the proto ListAssessmentsRequest message.
type ListAssessmentsRequest struct {
	TenantID string `json:"tenant_id,omitempty"`
	Limit    int32  `json:"limit"`
	Offset   int32  `json:"offset"`
}

// ListAssessmentsResponse represents the proto ListAssessmentsResponse message.
type ListAssessmentsResponse struct {
	Assessments []*AssessmentMsg `json:"assessments"`
}
