package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlgkit/subjectivity/internal/domain/event"
	"github.com/nlgkit/subjectivity/internal/infrastructure/kafka"
	"github.com/nlgkit/subjectivity/pkg/events"
	pkgkafka "github.com/nlgkit/subjectivity/pkg/kafka"
)

type mockProducer struct {
	topic    string
	messages []pkgkafka.Message
	err      error
}

func (m *mockProducer) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.topic = topic
	m.messages = append(m.messages, messages...)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPublisher_Publish(t *testing.T) {
	assessmentID := uuid.New()
	evt := event.NewTextAssessed(assessmentID, uuid.New(), "doc-1", 81.5, 81.5, "SUBJECTIVE", "m", time.Now())

	t.Run("wraps events in envelopes keyed by aggregate", func(t *testing.T) {
		producer := &mockProducer{}
		pub := kafka.NewPublisher(producer, "subjectivity.events", testLogger())

		require.NoError(t, pub.Publish(context.Background(), evt))
		assert.Equal(t, "subjectivity.events", producer.topic)
		require.Len(t, producer.messages, 1)

		msg := producer.messages[0]
		assert.Equal(t, assessmentID.String(), string(msg.Key))
		assert.Equal(t, event.EventTypeTextAssessed, msg.Headers["event_type"])

		var env events.Envelope
		require.NoError(t, json.Unmarshal(msg.Value, &env))
		var decoded event.TextAssessed
		require.NoError(t, env.Decode(&decoded))
		assert.Equal(t, 81.5, decoded.Subjectivity)
	})

	t.Run("no events is a no-op", func(t *testing.T) {
		producer := &mockProducer{err: errors.New("should not be called")}
		pub := kafka.NewPublisher(producer, "t", testLogger())
		assert.NoError(t, pub.Publish(context.Background()))
	})

	t.Run("producer failure is wrapped", func(t *testing.T) {
		cause := errors.New("leader not available")
		pub := kafka.NewPublisher(&mockProducer{err: cause}, "t", testLogger())
		assert.ErrorIs(t, pub.Publish(context.Background(), evt), cause)
	})
}
