package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nlgkit/subjectivity/internal/domain/event"
	"github.com/nlgkit/subjectivity/internal/domain/port"
	"github.com/nlgkit/subjectivity/pkg/events"
	pkgkafka "github.com/nlgkit/subjectivity/pkg/kafka"
)

// MessageProducer is satisfied by *pkgkafka.Producer.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Publisher writes domain events to a single topic as JSON envelopes keyed
// by assessment ID, so one assessment's events stay ordered on a partition.
type Publisher struct {
	producer MessageProducer
	logger   *slog.Logger
	topic    string
}

var _ port.EventPublisher = (*Publisher)(nil)

// NewPublisher returns a Publisher for topic.
func NewPublisher(producer MessageProducer, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{producer: producer, topic: topic, logger: logger.With("topic", topic)}
}

// Publish sends all events in one producer call. Nothing is sent when any
// event fails to encode.
func (p *Publisher) Publish(ctx context.Context, domainEvents ...event.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	batch := make([]pkgkafka.Message, len(domainEvents))
	for i, evt := range domainEvents {
		msg, err := encode(evt)
		if err != nil {
			return err
		}
		batch[i] = msg
		p.logger.DebugContext(ctx, "publishing event", "event_type", evt.EventType(), "bytes", len(msg.Value))
	}

	if err := p.producer.Publish(ctx, p.topic, batch...); err != nil {
		return fmt.Errorf("publish %d events: %w", len(batch), err)
	}
	return nil
}

func encode(evt event.DomainEvent) (pkgkafka.Message, error) {
	env, err := events.Wrap(evt)
	if err != nil {
		return pkgkafka.Message{}, err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return pkgkafka.Message{}, fmt.Errorf("encode %s envelope: %w", env.Type, err)
	}
	return pkgkafka.Message{
		Key:     []byte(env.AggregateID.String()),
		Value:   payload,
		Headers: env.Headers(),
	}, nil
}
