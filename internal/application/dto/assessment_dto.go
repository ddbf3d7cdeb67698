package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/nlgkit/subjectivity/internal/domain/model"
)

// ScoreRequest is the input DTO for stateless scoring.
type ScoreRequest struct {
	Text string `json:"text"`
}

// ScoreResponse is the output DTO of stateless scoring.
type ScoreResponse struct {
	Level        string  `json:"level"`
	ModelName    string  `json:"model_name"`
	Subjectivity float64 `json:"subjectivity"`
	Objectivity  float64 `json:"objectivity"`
}

// AssessTextRequest is the input DTO for the AssessText use case. A non-nil
// ID makes the request idempotent: repeating it returns the stored assessment.
type AssessTextRequest struct {
	Reference string    `json:"reference"`
	Text      string    `json:"text"`
	TenantID  uuid.UUID `json:"tenant_id"`
	ID        uuid.UUID `json:"id,omitempty"`
}

// BatchItem is a single text of a batch request.
type BatchItem struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// AssessBatchRequest is the input DTO for the AssessBatch use case.
type AssessBatchRequest struct {
	Items    []BatchItem `json:"items"`
	TenantID uuid.UUID   `json:"tenant_id"`
}

// AssessmentResponse is the output DTO returned after an assessment.
type AssessmentResponse struct {
	AssessedAt   time.Time `json:"assessed_at"`
	CreatedAt    time.Time `json:"created_at"`
	Reference    string    `json:"reference,omitempty"`
	Text         string    `json:"text"`
	Level        string    `json:"level"`
	ModelName    string    `json:"model_name"`
	Subjectivity float64   `json:"subjectivity"`
	Objectivity  float64   `json:"objectivity"`
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
}

// GetAssessmentRequest is the input DTO for retrieving an assessment.
type GetAssessmentRequest struct {
	TenantID     uuid.UUID `json:"tenant_id"`
	AssessmentID uuid.UUID `json:"assessment_id"`
}

// ListAssessmentsRequest is the input DTO for listing a tenant's assessments.
type ListAssessmentsRequest struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// FromModel maps a domain model to the response DTO.
func FromModel(a *model.TextAssessment) AssessmentResponse {
	return AssessmentResponse{
		ID:           a.ID(),
		TenantID:     a.TenantID(),
		Reference:    a.Reference(),
		Text:         a.Text(),
		Level:        a.Level().String(),
		ModelName:    a.ModelName(),
		Subjectivity: a.Subjectivity().Float64(),
		Objectivity:  a.Objectivity().Float64(),
		AssessedAt:   a.AssessedAt(),
		CreatedAt:    a.CreatedAt(),
	}
}
