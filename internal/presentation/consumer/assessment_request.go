package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nlgkit/subjectivity/internal/application/dto"
	"github.com/nlgkit/subjectivity/internal/application/usecase"
	"github.com/nlgkit/subjectivity/pkg/kafka"
)

// requestNamespace scopes assessment ids derived from request messages.
var requestNamespace = uuid.MustParse("6f1c2a7e-3b0d-5e4a-9c51-7d2e8b40a913")

// AssessmentRequest is the payload of a message on the request topic.
// RequestID is an optional producer-chosen idempotency key.
type AssessmentRequest struct {
	RequestID string `json:"request_id,omitempty"`
	TenantID  string `json:"tenant_id"`
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// assessmentID derives a stable assessment id for a request, so a message
// handled again after a partial failure maps onto the assessment already
// stored for it. Without a request_id the message coordinates identify it.
func assessmentID(msg kafka.Message, req AssessmentRequest) uuid.UUID {
	if req.RequestID != "" {
		return uuid.NewSHA1(requestNamespace, []byte("request/"+req.RequestID))
	}
	return uuid.NewSHA1(requestNamespace, []byte(fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)))
}

// AssessmentRequestHandler turns request-topic messages into stored assessments.
type AssessmentRequestHandler struct {
	assessText *usecase.AssessText
	logger     *slog.Logger
}

// NewAssessmentRequestHandler creates a new request handler.
func NewAssessmentRequestHandler(assessText *usecase.AssessText, logger *slog.Logger) *AssessmentRequestHandler {
	return &AssessmentRequestHandler{assessText: assessText, logger: logger}
}

// Handle processes one message. Malformed or invalid requests are logged and
// acknowledged so they are not redelivered; everything else is returned to
// the consumer for another attempt. Attempts on the same message share one
// assessment id, so a retry after a failed publish stores nothing new.
func (h *AssessmentRequestHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var req AssessmentRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		h.drop(ctx, msg, "malformed request", err)
		return nil
	}

	tenantID := uuid.Nil
	if req.TenantID != "" {
		id, err := uuid.Parse(req.TenantID)
		if err != nil {
			h.drop(ctx, msg, "invalid tenant_id", err)
			return nil
		}
		tenantID = id
	}

	resp, err := h.assessText.Execute(ctx, dto.AssessTextRequest{
		ID:        assessmentID(msg, req),
		TenantID:  tenantID,
		Reference: req.Reference,
		Text:      req.Text,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyText) || errors.Is(err, usecase.ErrTextTooLong) {
			h.drop(ctx, msg, "rejected request", err)
			return nil
		}
		return fmt.Errorf("assess request %q: %w", req.Reference, err)
	}

	h.logger.InfoContext(ctx, "assessed text from request topic",
		slog.String("assessment_id", resp.ID.String()),
		slog.String("reference", resp.Reference),
		slog.String("level", resp.Level),
	)
	return nil
}

func (h *AssessmentRequestHandler) drop(ctx context.Context, msg kafka.Message, reason string, err error) {
	h.logger.WarnContext(ctx, reason,
		slog.String("key", string(msg.Key)),
		slog.String("error", err.Error()),
	)
}
