package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nlgkit/subjectivity/internal/application/dto"
	"github.com/nlgkit/subjectivity/internal/domain/model"
	"github.com/nlgkit/subjectivity/internal/domain/port"
	"github.com/nlgkit/subjectivity/internal/domain/service"
	"github.com/nlgkit/subjectivity/internal/domain/valueobject"
)

// ScoreText is the stateless scoring use case. Nothing is persisted.
type ScoreText struct {
	scorer   service.TextScorer
	recorder port.AssessmentRecorder
}

// NewScoreText creates a new ScoreText use case. recorder may be nil.
func NewScoreText(scorer service.TextScorer, recorder port.AssessmentRecorder) *ScoreText {
	return &ScoreText{scorer: scorer, recorder: recorderOrNoop(recorder)}
}

// Execute scores a single text.
func (uc *ScoreText) Execute(ctx context.Context, req dto.ScoreRequest) (dto.ScoreResponse, error) {
	ctx, span := tracer.Start(ctx, "ScoreText")
	defer span.End()

	start := time.Now()
	subj, obj, err := scoreBoth(ctx, uc.scorer, req.Text)
	uc.recorder.RecordAssessment(ctx, "score", subj, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.ScoreResponse{}, err
	}

	score, err := valueobject.NewScore(subj)
	if err != nil {
		return dto.ScoreResponse{}, fmt.Errorf("invalid subjectivity: %w", err)
	}
	level := valueobject.SubjectivityLevelFromScore(score)
	span.SetAttributes(
		attribute.Float64("subjectivity", subj),
		attribute.String("level", level.String()),
	)

	return dto.ScoreResponse{
		Subjectivity: subj,
		Objectivity:  obj,
		Level:        level.String(),
		ModelName:    uc.scorer.ModelName(),
	}, nil
}

// validateText rejects blank texts and texts over model.MaxTextLength.
func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if len(text) > model.MaxTextLength {
		return fmt.Errorf("%w: %d bytes, max %d", ErrTextTooLong, len(text), model.MaxTextLength)
	}
	return nil
}

// scoreBoth validates text and runs both scoring operations.
func scoreBoth(ctx context.Context, scorer service.TextScorer, text string) (float64, float64, error) {
	if err := validateText(text); err != nil {
		return 0, 0, err
	}

	subj, err := scorer.AssessSubjectivity(ctx, text)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to assess subjectivity: %w", err)
	}
	obj, err := scorer.AssessObjectivity(ctx, text)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to assess objectivity: %w", err)
	}
	return subj, obj, nil
}
