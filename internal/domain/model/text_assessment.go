package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nlgkit/subjectivity/internal/domain/event"
	"github.com/nlgkit/subjectivity/internal/domain/valueobject"
)

// MaxTextLength bounds the size of a text accepted for assessment, in bytes.
const MaxTextLength = 64 * 1024

// TextAssessment is the aggregate root for subjectivity assessments.
type TextAssessment struct {
	assessedAt   time.Time
	createdAt    time.Time
	updatedAt    time.Time
	text         string
	reference    string
	modelName    string
	level        valueobject.SubjectivityLevel
	subjectivity valueobject.Score
	objectivity  valueobject.Score
	domainEvents []event.DomainEvent
	version      int
	tenantID     uuid.UUID
	id           uuid.UUID
}

// NewTextAssessment creates a new assessment for a text.
// The assessment starts unscored; call Assess() to apply scores.
func NewTextAssessment(tenantID uuid.UUID, reference, text, modelName string) (*TextAssessment, error) {
	return NewTextAssessmentWithID(uuid.New(), tenantID, reference, text, modelName)
}

// NewTextAssessmentWithID is NewTextAssessment with a caller-chosen id, used
// when the same request may arrive more than once.
func NewTextAssessmentWithID(id, tenantID uuid.UUID, reference, text, modelName string) (*TextAssessment, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("assessment id is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	if len(text) > MaxTextLength {
		return nil, fmt.Errorf("text exceeds %d bytes", MaxTextLength)
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}

	now := time.Now().UTC()

	return &TextAssessment{
		id:        id,
		tenantID:  tenantID,
		reference: reference,
		text:      text,
		modelName: modelName,
		level:     valueobject.LevelObjective,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Assess applies subjectivity and objectivity percentages to the assessment,
// deriving the level and recording domain events.
func (a *TextAssessment) Assess(subjectivity, objectivity float64) error {
	subj, err := valueobject.NewScore(subjectivity)
	if err != nil {
		return fmt.Errorf("subjectivity: %w", err)
	}
	obj, err := valueobject.NewScore(objectivity)
	if err != nil {
		return fmt.Errorf("objectivity: %w", err)
	}

	a.subjectivity = subj
	a.objectivity = obj
	a.level = valueobject.SubjectivityLevelFromScore(subj)
	a.assessedAt = time.Now().UTC()
	a.updatedAt = a.assessedAt
	a.version++

	a.domainEvents = append(a.domainEvents, a.AssessedEvents()...)
	return nil
}

// AssessedEvents derives the events announcing the current scores without
// touching the pending event list. It returns nil for an unscored assessment.
// Event ids depend only on the assessment id, event type and version, so
// announcing the same version twice yields the same ids.
func (a *TextAssessment) AssessedEvents() []event.DomainEvent {
	if a.assessedAt.IsZero() {
		return nil
	}
	assessed := event.NewTextAssessed(
		a.id, a.tenantID, a.reference,
		a.subjectivity.Float64(), a.objectivity.Float64(),
		a.level.String(), a.modelName, a.assessedAt,
	)
	assessed.ID = a.eventID(assessed.EventType())
	events := []event.DomainEvent{assessed}

	if a.subjectivity.IsHighlySubjective() {
		detected := event.NewHighlySubjectiveDetected(
			a.id, a.tenantID, a.reference, a.subjectivity.Float64(), a.assessedAt,
		)
		detected.ID = a.eventID(detected.EventType())
		events = append(events, detected)
	}
	return events
}

func (a *TextAssessment) eventID(eventType string) uuid.UUID {
	return uuid.NewSHA1(a.id, []byte(fmt.Sprintf("%s/v%d", eventType, a.version)))
}

// Reconstruct rebuilds a TextAssessment from persisted data (no validation, no events).
func Reconstruct(
	id, tenantID uuid.UUID,
	reference, text, modelName string,
	subjectivity, objectivity valueobject.Score,
	level valueobject.SubjectivityLevel,
	assessedAt time.Time,
	version int,
	createdAt, updatedAt time.Time,
) *TextAssessment {
	return &TextAssessment{
		id:           id,
		tenantID:     tenantID,
		reference:    reference,
		text:         text,
		modelName:    modelName,
		subjectivity: subjectivity,
		objectivity:  objectivity,
		level:        level,
		assessedAt:   assessedAt,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		domainEvents: make([]event.DomainEvent, 0),
	}
}

func (a *TextAssessment) ID() uuid.UUID                        { return a.id }
func (a *TextAssessment) TenantID() uuid.UUID                  { return a.tenantID }
func (a *TextAssessment) Reference() string                    { return a.reference }
func (a *TextAssessment) Text() string                         { return a.text }
func (a *TextAssessment) ModelName() string                    { return a.modelName }
func (a *TextAssessment) Subjectivity() valueobject.Score      { return a.subjectivity }
func (a *TextAssessment) Objectivity() valueobject.Score       { return a.objectivity }
func (a *TextAssessment) Level() valueobject.SubjectivityLevel { return a.level }
func (a *TextAssessment) AssessedAt() time.Time                { return a.assessedAt }
func (a *TextAssessment) Version() int                         { return a.version }
func (a *TextAssessment) CreatedAt() time.Time                 { return a.createdAt }
func (a *TextAssessment) UpdatedAt() time.Time                 { return a.updatedAt }

// DomainEvents returns all accumulated domain events and clears them.
func (a *TextAssessment) DomainEvents() []event.DomainEvent {
	evts := a.domainEvents
	a.domainEvents = make([]event.DomainEvent, 0)
	return evts
}
