package rest

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck returns nil when the named dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// HealthHandler serves the liveness and readiness checks.
type HealthHandler struct {
	logger  *slog.Logger
	started time.Time
	checks  map[string]ReadinessCheck
}

// NewHealthHandler returns a handler whose /readyz passes only when every
// check passes.
func NewHealthHandler(logger *slog.Logger, checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{logger: logger, started: time.Now(), checks: checks}
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the /readyz body. Checks maps each dependency to "ok"
// or its failure message.
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

// RegisterRoutes mounts both checks on mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz always reports healthy while the process serves HTTP.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

// Readyz runs all checks concurrently under a shared deadline.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.checks))
		failed  bool
		g       errgroup.Group
	)
	for name, check := range h.checks {
		g.Go(func() error {
			result := "ok"
			if err := check(ctx); err != nil {
				h.logger.WarnContext(ctx, "readiness check failed", "check", name, "error", err)
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			results[name] = result
			failed = failed || result != "ok"
			return nil
		})
	}
	_ = g.Wait()

	resp := ReadinessResponse{Status: "ready", Service: serviceName, Checks: results}
	code := http.StatusOK
	if failed {
		resp.Status, code = "not_ready", http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}
