//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlgkit/subjectivity/internal/domain/event"
	"github.com/nlgkit/subjectivity/internal/infrastructure/kafka"
	"github.com/nlgkit/subjectivity/pkg/events"
	pkgkafka "github.com/nlgkit/subjectivity/pkg/kafka"
	"github.com/nlgkit/subjectivity/pkg/testutil"
)

func TestPublisher_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := testutil.StartKafka(ctx, t)

	const topic = "subjectivity.events.it"
	broker.CreateTopics(t, topic)

	cfg := pkgkafka.Config{Brokers: broker.Brokers, ConsumerGroup: "subjectivity-it"}
	producer, err := pkgkafka.NewProducer(cfg)
	require.NoError(t, err)
	defer producer.Close()

	assessmentID := uuid.New()
	evt := event.NewTextAssessed(assessmentID, testutil.TestTenantID, "doc-it", 64.25, 64.25, "MIXED", "fixture", time.Now())
	require.NoError(t, kafka.NewPublisher(producer, topic, testLogger()).Publish(ctx, evt))

	received := make(chan pkgkafka.Message, 1)
	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()

	consumer, err := pkgkafka.NewConsumer(cfg, topic, func(_ context.Context, msg pkgkafka.Message) error {
		select {
		case received <- msg:
		default:
		}
		return nil
	}, testLogger())
	require.NoError(t, err)
	defer consumer.Close()

	done := make(chan error, 1)
	go func() { done <- consumer.Start(consumeCtx) }()

	var msg pkgkafka.Message
	select {
	case msg = <-received:
	case <-ctx.Done():
		t.Fatal("timed out waiting for the published event")
	}
	stop()
	require.NoError(t, <-done)

	assert.Equal(t, assessmentID.String(), string(msg.Key))
	assert.Equal(t, event.EventTypeTextAssessed, msg.Headers["event_type"])

	var env events.Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	var decoded event.TextAssessed
	require.NoError(t, env.Decode(&decoded))
	assert.Equal(t, "doc-it", decoded.Reference)
	assert.Equal(t, testutil.TestTenantID, decoded.TenantID)
}
