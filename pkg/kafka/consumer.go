package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

const (
	defaultHandlerAttempts = 5
	defaultRetryBackoff    = 200 * time.Millisecond
	maxRetryBackoff        = 30 * time.Second
	maxFetchBytes          = 10 << 20
)

// Handler processes one consumed message. A non-nil error asks the consumer
// to run the handler again.
type Handler func(ctx context.Context, msg Message) error

// Reader is the subset of *kafkago.Reader used by Consumer.
type Reader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer feeds a topic to a Handler one message at a time. A message is
// committed once the handler accepts it. A message that keeps failing is
// logged and skipped without a commit after HandlerAttempts tries.
type Consumer struct {
	reader   Reader
	handler  Handler
	logger   *slog.Logger
	topic    string
	group    string
	attempts int
	backoff  time.Duration
}

// NewConsumer opens a group reader on topic.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	readerCfg := kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: maxFetchBytes,
	}
	if cfg.TLS || cfg.SASLEnabled {
		mechanism, err := cfg.saslMechanism()
		if err != nil {
			return nil, err
		}
		readerCfg.Dialer = &kafkago.Dialer{TLS: cfg.tlsConfig(), SASLMechanism: mechanism}
	}

	c := NewConsumerWithReader(kafkago.NewReader(readerCfg), topic, cfg.ConsumerGroup, handler, logger)
	if cfg.HandlerAttempts > 0 {
		c.attempts = cfg.HandlerAttempts
	}
	if cfg.RetryBackoff > 0 {
		c.backoff = cfg.RetryBackoff
	}
	return c, nil
}

// NewConsumerWithReader builds a Consumer over r with default retry settings.
func NewConsumerWithReader(r Reader, topic, group string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:   r,
		handler:  handler,
		logger:   logger.With("topic", topic, "group", group),
		topic:    topic,
		group:    group,
		attempts: defaultHandlerAttempts,
		backoff:  defaultRetryBackoff,
	}
}

// Start consumes until ctx is cancelled, which is reported as a nil error.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer starting")

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("consumer stopped")
				return nil
			}
			return fmt.Errorf("fetch from %s: %w", c.topic, err)
		}

		log := c.logger.With("partition", m.Partition, "offset", m.Offset)
		if err := c.handle(ctx, fromKafkaMessage(m)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("message skipped after repeated handler failures", "attempts", c.attempts, "error", err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			log.Error("commit failed", "error", err)
		}
	}
}

// handle runs the handler with exponential backoff between attempts.
func (c *Consumer) handle(ctx context.Context, msg Message) error {
	delay := c.backoff
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = c.handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == c.attempts {
			break
		}
		c.logger.Warn("handler failed, retrying", "attempt", attempt, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, maxRetryBackoff)
	}
	return err
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("close kafka reader: %w", err)
	}
	return nil
}

func fromKafkaMessage(m kafkago.Message) Message {
	msg := Message{
		Key:       m.Key,
		Value:     m.Value,
		Headers:   make(map[string]string, len(m.Headers)),
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
