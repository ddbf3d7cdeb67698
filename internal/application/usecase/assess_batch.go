package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/nlgkit/subjectivity/internal/application/dto"
)

const (
	DefaultMaxBatchSize     = 100
	DefaultBatchConcurrency = 8
)

// BatchConfig bounds the AssessBatch use case.
type BatchConfig struct {
	MaxBatchSize int
	Concurrency  int
}

// AssessBatch assesses several texts concurrently through AssessText.
// Results keep the order of the request items.
type AssessBatch struct {
	single *AssessText
	cfg    BatchConfig
}

// NewAssessBatch creates a new AssessBatch use case. Zero config values take defaults.
func NewAssessBatch(single *AssessText, cfg BatchConfig) *AssessBatch {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultBatchConcurrency
	}
	return &AssessBatch{single: single, cfg: cfg}
}

// Execute assesses every item. Every text is validated before anything is
// scored, so an invalid item fails the batch with nothing stored.
//
// Scoring, storage and publish failures are not transactional: the first one
// cancels the items not yet started, but items that already finished stay
// stored and announced while the caller only receives the error. Retrying
// such a batch stores those items again.
func (uc *AssessBatch) Execute(ctx context.Context, req dto.AssessBatchRequest) ([]dto.AssessmentResponse, error) {
	if len(req.Items) == 0 {
		return []dto.AssessmentResponse{}, nil
	}
	if len(req.Items) > uc.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d items, max %d", ErrBatchTooLarge, len(req.Items), uc.cfg.MaxBatchSize)
	}
	for i, item := range req.Items {
		if err := validateText(item.Text); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}

	ctx, span := tracer.Start(ctx, "AssessBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("batch_size", len(req.Items)))

	results := make([]dto.AssessmentResponse, len(req.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.Concurrency)

	for i, item := range req.Items {
		g.Go(func() error {
			resp, err := uc.single.Execute(gctx, dto.AssessTextRequest{
				TenantID:  req.TenantID,
				Reference: item.Reference,
				Text:      item.Text,
			})
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			results[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return results, nil
}
