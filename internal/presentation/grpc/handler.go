package grpc

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nlgkit/subjectivity/internal/application/dto"
	"github.com/nlgkit/subjectivity/internal/application/usecase"
	"github.com/nlgkit/subjectivity/internal/domain/service"
	"github.com/nlgkit/subjectivity/internal/infrastructure/ml"
	"github.com/nlgkit/subjectivity/pkg/auth"
)

// Compile-time assertion that SubjectivityServiceHandler implements SubjectivityServiceServer.
var _ SubjectivityServiceServer = (*SubjectivityServiceHandler)(nil)

// SubjectivityServiceHandler implements the gRPC SubjectivityServiceServer interface.
type SubjectivityServiceHandler struct {
	UnimplementedSubjectivityServiceServer
	scoreText       *usecase.ScoreText
	assessText      *usecase.AssessText
	assessBatch     *usecase.AssessBatch
	getAssessment   *usecase.GetAssessment
	listAssessments *usecase.ListAssessments
	logger          *slog.Logger
}

// NewSubjectivityServiceHandler creates a new gRPC handler.
func NewSubjectivityServiceHandler(
	scoreText *usecase.ScoreText,
	assessText *usecase.AssessText,
	assessBatch *usecase.AssessBatch,
	getAssessment *usecase.GetAssessment,
	listAssessments *usecase.ListAssessments,
	logger *slog.Logger,
) *SubjectivityServiceHandler {
	return &SubjectivityServiceHandler{
		scoreText:       scoreText,
		assessText:      assessText,
		assessBatch:     assessBatch,
		getAssessment:   getAssessment,
		listAssessments: listAssessments,
		logger:          logger,
	}
}

// Score handles a stateless scoring request.
func (h *SubjectivityServiceHandler) Score(ctx context.Context, req *ScoreRequest) (*ScoreResponse, error) {
	result, err := h.scoreText.Execute(ctx, dto.ScoreRequest{Text: req.Text})
	if err != nil {
		return nil, h.toStatus(ctx, "score", err)
	}

	return &ScoreResponse{
		Subjectivity: result.Subjectivity,
		Objectivity:  result.Objectivity,
		Level:        result.Level,
		ModelName:    result.ModelName,
	}, nil
}

// AssessText scores and stores a single text.
func (h *SubjectivityServiceHandler) AssessText(ctx context.Context, req *AssessTextRequest) (*AssessTextResponse, error) {
	tenantID, err := resolveTenant(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	result, err := h.assessText.Execute(ctx, dto.AssessTextRequest{
		TenantID:  tenantID,
		Reference: req.Reference,
		Text:      req.Text,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "assess text", err)
	}

	return &AssessTextResponse{Assessment: toAssessmentMsg(result)}, nil
}

// AssessBatch scores and stores several texts, preserving their order.
func (h *SubjectivityServiceHandler) AssessBatch(ctx context.Context, req *AssessBatchRequest) (*AssessBatchResponse, error) {
	tenantID, err := resolveTenant(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.BatchItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = dto.BatchItem{Reference: it.Reference, Text: it.Text}
	}

	results, err := h.assessBatch.Execute(ctx, dto.AssessBatchRequest{TenantID: tenantID, Items: items})
	if err != nil {
		return nil, h.toStatus(ctx, "assess batch", err)
	}

	resp := &AssessBatchResponse{Assessments: make([]*AssessmentMsg, 0, len(results))}
	for _, r := range results {
		resp.Assessments = append(resp.Assessments, toAssessmentMsg(r))
	}
	return resp, nil
}

// GetAssessment returns a stored assessment.
func (h *SubjectivityServiceHandler) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	tenantID, err := resolveTenant(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id: %v", err)
	}

	result, err := h.getAssessment.Execute(ctx, dto.GetAssessmentRequest{TenantID: tenantID, AssessmentID: id})
	if err != nil {
		return nil, h.toStatus(ctx, "get assessment", err)
	}

	return &GetAssessmentResponse{Assessment: toAssessmentMsg(result)}, nil
}

// ListAssessments pages through the caller's assessments.
func (h *SubjectivityServiceHandler) ListAssessments(ctx context.Context, req *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	tenantID, err := resolveTenant(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	results, err := h.listAssessments.Execute(ctx, dto.ListAssessmentsRequest{
		TenantID: tenantID,
		Limit:    int(req.Limit),
		Offset:   int(req.Offset),
	})
	if err != nil {
		return nil, h.toStatus(ctx, "list assessments", err)
	}

	resp := &ListAssessmentsResponse{Assessments: make([]*AssessmentMsg, 0, len(results))}
	for _, r := range results {
		resp.Assessments = append(resp.Assessments, toAssessmentMsg(r))
	}
	return resp, nil
}

// resolveTenant takes the tenant from the caller's token; without
// authentication it falls back to the request field, then to the nil tenant.
func resolveTenant(ctx context.Context, requested string) (uuid.UUID, error) {
	if claims, ok := auth.ClaimsFromContext(ctx); ok {
		return claims.TenantID, nil
	}
	if requested == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(requested)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid tenant_id: %v", err)
	}
	return id, nil
}

func toAssessmentMsg(r dto.AssessmentResponse) *AssessmentMsg {
	msg := &AssessmentMsg{
		ID:           r.ID.String(),
		TenantID:     r.TenantID.String(),
		Reference:    r.Reference,
		Subjectivity: r.Subjectivity,
		Objectivity:  r.Objectivity,
		Level:        r.Level,
		ModelName:    r.ModelName,
	}
	if !r.AssessedAt.IsZero() {
		msg.AssessedAt = r.AssessedAt.UTC().Format(time.RFC3339Nano)
	}
	return msg
}

// toStatus maps use case errors to gRPC status codes and logs server-side failures.
func (h *SubjectivityServiceHandler) toStatus(ctx context.Context, op string, err error) error {
	code := StatusCode(err)
	if code == codes.Internal || code == codes.Unavailable {
		h.logger.ErrorContext(ctx, "request failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
	}
	if code == codes.Internal {
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}

// StatusCode classifies an application error.
func StatusCode(err error) codes.Code {
	switch {
	case errors.Is(err, usecase.ErrEmptyText),
		errors.Is(err, usecase.ErrTextTooLong),
		errors.Is(err, usecase.ErrBatchTooLarge):
		return codes.InvalidArgument
	case errors.Is(err, usecase.ErrAssessmentNotFound):
		return codes.NotFound
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, ml.ErrIncompatibleModel),
		errors.Is(err, service.ErrNoClassifier):
		return codes.Unavailable
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}
