package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	// EventTypeTextAssessed is emitted when a text assessment finishes.
	EventTypeTextAssessed = "subjectivity.text.assessed"

	// EventTypeHighlySubjectiveDetected is emitted when the subjectivity
	// score reaches the highly subjective threshold.
	EventTypeHighlySubjectiveDetected = "subjectivity.highly_subjective.detected"

	aggregateType = "TextAssessment"
)

// DomainEvent is the interface all domain events implement.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	AggregateType() string
	OccurredAt() time.Time
}

// TextAssessed is published when a text has been scored.
type TextAssessed struct {
	ID           uuid.UUID `json:"event_id"`
	AssessmentID uuid.UUID `json:"assessment_id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Reference    string    `json:"reference,omitempty"`
	Subjectivity float64   `json:"subjectivity"`
	Objectivity  float64   `json:"objectivity"`
	Level        string    `json:"level"`
	ModelName    string    `json:"model_name"`
	AssessedAt   time.Time `json:"assessed_at"`
}

// NewTextAssessed creates a TextAssessed event.
func NewTextAssessed(
	assessmentID, tenantID uuid.UUID,
	reference string,
	subjectivity, objectivity float64,
	level, modelName string,
	assessedAt time.Time,
) TextAssessed {
	return TextAssessed{
		ID:           uuid.New(),
		AssessmentID: assessmentID,
		TenantID:     tenantID,
		Reference:    reference,
		Subjectivity: subjectivity,
		Objectivity:  objectivity,
		Level:        level,
		ModelName:    modelName,
		AssessedAt:   assessedAt,
	}
}

func (e TextAssessed) EventID() uuid.UUID     { return e.ID }
func (e TextAssessed) EventType() string      { return EventTypeTextAssessed }
func (e TextAssessed) AggregateID() uuid.UUID { return e.AssessmentID }
func (e TextAssessed) AggregateType() string  { return aggregateType }
func (e TextAssessed) OccurredAt() time.Time  { return e.AssessedAt }

// HighlySubjectiveDetected is published alongside TextAssessed for texts whose
// subjectivity score is at or above the highly subjective threshold.
type HighlySubjectiveDetected struct {
	ID           uuid.UUID `json:"event_id"`
	AssessmentID uuid.UUID `json:"assessment_id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Reference    string    `json:"reference,omitempty"`
	Subjectivity float64   `json:"subjectivity"`
	DetectedAt   time.Time `json:"detected_at"`
}

// NewHighlySubjectiveDetected creates a HighlySubjectiveDetected event.
func NewHighlySubjectiveDetected(
	assessmentID, tenantID uuid.UUID,
	reference string,
	subjectivity float64,
	detectedAt time.Time,
) HighlySubjectiveDetected {
	return HighlySubjectiveDetected{
		ID:           uuid.New(),
		AssessmentID: assessmentID,
		TenantID:     tenantID,
		Reference:    reference,
		Subjectivity: subjectivity,
		DetectedAt:   detectedAt,
	}
}

func (e HighlySubjectiveDetected) EventID() uuid.UUID     { return e.ID }
func (e HighlySubjectiveDetected) EventType() string      { return EventTypeHighlySubjectiveDetected }
func (e HighlySubjectiveDetected) AggregateID() uuid.UUID { return e.AssessmentID }
func (e HighlySubjectiveDetected) AggregateType() string  { return aggregateType }
func (e HighlySubjectiveDetected) OccurredAt() time.Time  { return e.DetectedAt }
