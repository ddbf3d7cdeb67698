package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogConfig selects the handler used by InitLogger.
type LogConfig struct {
	Level   string // slog level name; "warning" is accepted as an alias of "warn"
	Format  string // "json" or "text"
	Service string
	Output  io.Writer
}

// InitLogger builds the process logger and installs it as the slog default.
// Records carry a "service" attribute when cfg.Service is set, and source
// locations at debug level.
func InitLogger(cfg LogConfig) *slog.Logger {
	level := parseLevel(cfg.Level)
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug}

	var h slog.Handler = slog.NewTextHandler(out, opts)
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	}
	if cfg.Service != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// parseLevel falls back to info for empty or unknown names.
func parseLevel(name string) slog.Level {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
