package kafka

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	topic   string
	written []kafkago.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func fakeProducer() (*Producer, map[string]*fakeWriter) {
	created := make(map[string]*fakeWriter)
	return newProducer(func(topic string) topicWriter {
		w := &fakeWriter{topic: topic}
		created[topic] = w
		return w
	}), created
}

func TestNewProducer_Config(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		_, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
		require.NoError(t, err)
	})

	t.Run("tls, scram and zstd", func(t *testing.T) {
		_, err := NewProducer(Config{
			Brokers:       []string{"kafka:9093"},
			TLS:           true,
			SASLEnabled:   true,
			SASLMechanism: "SCRAM-SHA-512",
			SASLUsername:  "svc",
			SASLPassword:  "pw",
			Compression:   "zstd",
		})
		require.NoError(t, err)
	})

	t.Run("unknown mechanism", func(t *testing.T) {
		_, err := NewProducer(Config{SASLEnabled: true, SASLMechanism: "GSSAPI"})
		assert.Error(t, err)
	})

	t.Run("unknown compression", func(t *testing.T) {
		_, err := NewProducer(Config{Compression: "brotli"})
		assert.Error(t, err)
	})
}

func TestProducer_Publish(t *testing.T) {
	p, writers := fakeProducer()

	err := p.Publish(context.Background(), "subjectivity.events", Message{
		Key:     []byte("agg-1"),
		Value:   []byte(`{}`),
		Headers: map[string]string{"event_type": "x", "aggregate_type": "y"},
	})
	require.NoError(t, err)

	w := writers["subjectivity.events"]
	require.Len(t, w.written, 1)
	assert.Equal(t, "agg-1", string(w.written[0].Key))
	require.Len(t, w.written[0].Headers, 2)
	assert.Equal(t, "aggregate_type", w.written[0].Headers[0].Key)
	assert.Equal(t, "event_type", w.written[0].Headers[1].Key)

	require.NoError(t, p.Publish(context.Background(), "subjectivity.events", Message{Value: []byte("2")}))
	assert.Len(t, writers, 1, "writer reused per topic")
}

func TestProducer_PublishNothingOpensNoWriter(t *testing.T) {
	p, writers := fakeProducer()
	require.NoError(t, p.Publish(context.Background(), "t"))
	assert.Empty(t, writers)
}

func TestProducer_WriteErrorNamesTopic(t *testing.T) {
	cause := errors.New("not leader for partition")
	p := newProducer(func(string) topicWriter { return &fakeWriter{err: cause} })

	err := p.Publish(context.Background(), "events", Message{Value: []byte("v")})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "events")
}

func TestProducer_Close(t *testing.T) {
	p, writers := fakeProducer()
	require.NoError(t, p.Publish(context.Background(), "a", Message{Value: []byte("v")}))
	require.NoError(t, p.Publish(context.Background(), "b", Message{Value: []byte("v")}))

	require.NoError(t, p.Close())
	assert.True(t, writers["a"].closed)
	assert.True(t, writers["b"].closed)

	err := p.Publish(context.Background(), "a", Message{Value: []byte("v")})
	assert.ErrorIs(t, err, ErrProducerClosed)
}
