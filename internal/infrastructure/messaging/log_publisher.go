package messaging

import (
	"context"
	"log/slog"

	"github.com/nlgkit/subjectivity/internal/domain/event"
	"github.com/nlgkit/subjectivity/internal/domain/port"
	"github.com/nlgkit/subjectivity/pkg/events"
)

// LogPublisher implements port.EventPublisher by writing events to the log.
// It is used when no Kafka brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

var _ port.EventPublisher = (*LogPublisher)(nil)

// NewLogPublisher creates a new log-backed event publisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs each event envelope.
func (p *LogPublisher) Publish(ctx context.Context, domainEvents ...event.DomainEvent) error {
	for _, evt := range domainEvents {
		env, err := events.Wrap(evt)
		if err != nil {
			return err
		}

		p.logger.InfoContext(ctx, "domain event",
			slog.String("event_type", env.Type),
			slog.String("event_id", env.ID.String()),
			slog.String("aggregate_id", env.AggregateID.String()),
		)
		p.logger.DebugContext(ctx, "event payload",
			slog.String("event_type", env.Type),
			slog.String("payload", string(env.Data)),
		)
	}

	return nil
}
