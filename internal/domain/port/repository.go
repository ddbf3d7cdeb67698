package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nlgkit/subjectivity/internal/domain/event"
	"github.com/nlgkit/subjectivity/internal/domain/model"
)

// Classifier is a pre-trained probabilistic classifier over raw text.
// Implementations must be safe for concurrent use once constructed.
type Classifier interface {
	// PredictProba returns one row of class probabilities per document.
	PredictProba(ctx context.Context, docs []string) ([][]float64, error)
}

// ClassifierLoader deserializes a Classifier from the file at path.
type ClassifierLoader interface {
	Load(ctx context.Context, path string) (Classifier, error)
}

// ClassifierLoaderFunc adapts a function to the ClassifierLoader interface.
type ClassifierLoaderFunc func(ctx context.Context, path string) (Classifier, error)

// Load calls f(ctx, path).
func (f ClassifierLoaderFunc) Load(ctx context.Context, path string) (Classifier, error) {
	return f(ctx, path)
}

// AssessmentRepository defines the persistence port for text assessments.
type AssessmentRepository interface {
	// Save persists a new or updated text assessment.
	Save(ctx context.Context, assessment *model.TextAssessment) error

	// FindByID retrieves an assessment by its unique identifier.
	// It returns nil, nil when no assessment matches.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.TextAssessment, error)

	// FindByTenant lists assessments of a tenant, newest first.
	FindByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*model.TextAssessment, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// AssessmentRecorder receives per-call scoring measurements.
type AssessmentRecorder interface {
	RecordAssessment(ctx context.Context, operation string, subjectivity float64, elapsed time.Duration, err error)
}
