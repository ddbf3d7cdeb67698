package usecase

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/nlgkit/subjectivity/internal/domain/port"
)

var (
	// ErrEmptyText is returned when a text is blank.
	ErrEmptyText = errors.New("text is required")
	// ErrTextTooLong is returned when a text exceeds model.MaxTextLength.
	ErrTextTooLong = errors.New("text too long")
	// ErrBatchTooLarge is returned when a batch exceeds the configured size.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrAssessmentNotFound is returned when no assessment matches the request.
	ErrAssessmentNotFound = errors.New("assessment not found")
)

const instrumentationName = "github.com/nlgkit/subjectivity/internal/application/usecase"

var tracer = otel.Tracer(instrumentationName)

type noopRecorder struct{}

func (noopRecorder) RecordAssessment(context.Context, string, float64, time.Duration, error) {}

func recorderOrNoop(r port.AssessmentRecorder) port.AssessmentRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
