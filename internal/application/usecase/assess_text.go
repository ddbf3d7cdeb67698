package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nlgkit/subjectivity/internal/application/dto"
	"github.com/nlgkit/subjectivity/internal/domain/event"
	"github.com/nlgkit/subjectivity/internal/domain/model"
	"github.com/nlgkit/subjectivity/internal/domain/port"
	"github.com/nlgkit/subjectivity/internal/domain/service"
)

// AssessText is the use case for scoring, persisting and announcing a text assessment.
type AssessText struct {
	repo      port.AssessmentRepository
	publisher port.EventPublisher
	scorer    service.TextScorer
	recorder  port.AssessmentRecorder
}

// NewAssessText creates a new AssessText use case.
func NewAssessText(
	repo port.AssessmentRepository,
	publisher port.EventPublisher,
	scorer service.TextScorer,
	recorder port.AssessmentRecorder,
) *AssessText {
	return &AssessText{
		repo:      repo,
		publisher: publisher,
		scorer:    scorer,
		recorder:  recorderOrNoop(recorder),
	}
}

// Execute scores the text, creates the assessment, persists it, and publishes events.
// When req.ID names an assessment the tenant already has, nothing is scored or
// saved again; its events are published once more and it is returned. A
// publish failure is reported after the assessment was saved, so callers that
// retry must pass an ID.
func (uc *AssessText) Execute(ctx context.Context, req dto.AssessTextRequest) (dto.AssessmentResponse, error) {
	ctx, span := tracer.Start(ctx, "AssessText")
	defer span.End()
	span.SetAttributes(attribute.String("tenant_id", req.TenantID.String()))

	resp, err := uc.execute(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return resp, err
}

func (uc *AssessText) execute(ctx context.Context, req dto.AssessTextRequest) (dto.AssessmentResponse, error) {
	if req.ID != uuid.Nil {
		existing, err := uc.repo.FindByID(ctx, req.TenantID, req.ID)
		if err != nil {
			return dto.AssessmentResponse{}, fmt.Errorf("failed to look up assessment %s: %w", req.ID, err)
		}
		if existing != nil {
			return uc.announce(ctx, existing, existing.AssessedEvents())
		}
	}

	// 1. Score the text.
	start := time.Now()
	subj, obj, err := scoreBoth(ctx, uc.scorer, req.Text)
	uc.recorder.RecordAssessment(ctx, "assess", subj, time.Since(start), err)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}

	// 2. Create the aggregate and apply the scores.
	id := req.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	assessment, err := model.NewTextAssessmentWithID(id, req.TenantID, req.Reference, req.Text, uc.scorer.ModelName())
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to create assessment: %w", err)
	}
	if err := assessment.Assess(subj, obj); err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to assess text: %w", err)
	}

	// 3. Persist.
	if err := uc.repo.Save(ctx, assessment); err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to save assessment: %w", err)
	}

	// 4. Publish domain events.
	return uc.announce(ctx, assessment, assessment.DomainEvents())
}

func (uc *AssessText) announce(ctx context.Context, a *model.TextAssessment, events []event.DomainEvent) (dto.AssessmentResponse, error) {
	if len(events) > 0 {
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			return dto.AssessmentResponse{}, fmt.Errorf("failed to publish events for %s: %w", a.ID(), err)
		}
	}
	return dto.FromModel(a), nil
}
