package rest

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/nlgkit/subjectivity/internal/application/dto"
	"github.com/nlgkit/subjectivity/internal/application/usecase"
	"github.com/nlgkit/subjectivity/internal/domain/model"
	"github.com/nlgkit/subjectivity/internal/domain/service"
	"github.com/nlgkit/subjectivity/internal/infrastructure/ml"
)

const serviceName = "subjectivity-service"

// maxBodyBytes leaves room for JSON escaping around the largest accepted text.
const maxBodyBytes = 2*model.MaxTextLength + 1024

// ScoreHandler serves stateless scoring over HTTP.
type ScoreHandler struct {
	scoreText *usecase.ScoreText
	logger    *slog.Logger
}

// NewScoreHandler creates a new scoring handler.
func NewScoreHandler(scoreText *usecase.ScoreText, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{scoreText: scoreText, logger: logger}
}

// RegisterRoutes registers the scoring endpoint on the provided ServeMux.
func (h *ScoreHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/score", h.Score)
}

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Score handles POST /v1/score.
func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req dto.ScoreRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
		case errors.Is(err, io.EOF):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "request body is required"})
		default:
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON: " + err.Error()})
		}
		return
	}

	resp, err := h.scoreText.Execute(r.Context(), req)
	if err != nil {
		code := httpStatus(err)
		msg := err.Error()
		if code == http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "score failed", slog.String("error", msg))
			msg = "internal error"
		}
		writeJSON(w, code, ErrorResponse{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrTextTooLong):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, ml.ErrIncompatibleModel),
		errors.Is(err, service.ErrNoClassifier):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
