package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nlgkit/subjectivity/internal/application/dto"
	"github.com/nlgkit/subjectivity/internal/domain/port"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// GetAssessment loads one stored assessment of a tenant.
type GetAssessment struct {
	repo port.AssessmentRepository
}

// NewGetAssessment creates a new GetAssessment use case.
func NewGetAssessment(repo port.AssessmentRepository) *GetAssessment {
	return &GetAssessment{repo: repo}
}

// Execute returns ErrAssessmentNotFound for unknown ids and for ids owned by
// another tenant.
func (uc *GetAssessment) Execute(ctx context.Context, req dto.GetAssessmentRequest) (dto.AssessmentResponse, error) {
	ctx, span := tracer.Start(ctx, "GetAssessment")
	defer span.End()
	span.SetAttributes(
		attribute.String("tenant_id", req.TenantID.String()),
		attribute.String("assessment_id", req.AssessmentID.String()),
	)

	if req.AssessmentID == uuid.Nil {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: empty id", ErrAssessmentNotFound)
	}

	a, err := uc.repo.FindByID(ctx, req.TenantID, req.AssessmentID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to find assessment: %w", err)
	}
	if a == nil {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: %s", ErrAssessmentNotFound, req.AssessmentID)
	}
	return dto.FromModel(a), nil
}

// ListAssessments pages through a tenant's assessments, newest first.
type ListAssessments struct {
	repo port.AssessmentRepository
}

// NewListAssessments creates a new ListAssessments use case.
func NewListAssessments(repo port.AssessmentRepository) *ListAssessments {
	return &ListAssessments{repo: repo}
}

// Execute clamps the page: a non-positive limit means 50, anything above 500
// is cut to 500 and negative offsets start at 0.
func (uc *ListAssessments) Execute(ctx context.Context, req dto.ListAssessmentsRequest) ([]dto.AssessmentResponse, error) {
	ctx, span := tracer.Start(ctx, "ListAssessments")
	defer span.End()

	limit := req.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	offset := max(req.Offset, 0)
	span.SetAttributes(
		attribute.String("tenant_id", req.TenantID.String()),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	page, err := uc.repo.FindByTenant(ctx, req.TenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	out := make([]dto.AssessmentResponse, len(page))
	for i, a := range page {
		out[i] = dto.FromModel(a)
	}
	return out, nil
}
