package rest

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

// PublicPaths are served without authentication or rate limiting.
var PublicPaths = []string{"/healthz", "/readyz", "/metrics"}

// RouterConfig assembles the HTTP surface. Metrics, Auth and Limiter are optional.
type RouterConfig struct {
	Health  *HealthHandler
	Score   *ScoreHandler
	Metrics http.Handler
	Auth    func(http.Handler) http.Handler
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// NewRouter returns the handler for health checks, scoring and metrics. Requests pass
// through logging, then rate limiting, then authentication.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	cfg.Health.RegisterRoutes(mux)
	cfg.Score.RegisterRoutes(mux)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	var h http.Handler = mux
	if cfg.Auth != nil {
		h = cfg.Auth(h)
	}
	if cfg.Limiter != nil {
		h = RateLimit(cfg.Limiter)(h)
	}
	if cfg.Logger != nil {
		h = RequestLogging(cfg.Logger)(h)
	}
	return h
}
