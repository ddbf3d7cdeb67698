package kafka

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// ErrProducerClosed is returned by Publish after Close.
var ErrProducerClosed = errors.New("kafka: producer closed")

// Message represents a Kafka message. Topic, Partition and Offset are set on
// consumed messages and ignored when producing.
type Message struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
}

// topicWriter is the subset of *kafkago.Writer used by Producer.
type topicWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer publishes to any number of topics, lazily opening one writer per topic.
type Producer struct {
	newWriter func(topic string) topicWriter

	mu      sync.Mutex
	writers map[string]topicWriter
	closed  bool
}

// NewProducer creates a Producer. Writers hash on the message key so all
// events of one aggregate land on the same partition.
func NewProducer(cfg Config) (*Producer, error) {
	mechanism, err := cfg.saslMechanism()
	if err != nil {
		return nil, err
	}
	codec, err := cfg.compression()
	if err != nil {
		return nil, err
	}

	transport := &kafkago.Transport{
		TLS:  cfg.tlsConfig(),
		SASL: mechanism,
	}
	addr := kafkago.TCP(cfg.Brokers...)

	return newProducer(func(topic string) topicWriter {
		return &kafkago.Writer{
			Addr:         addr,
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafkago.RequireAll,
			Compression:  codec,
			Transport:    transport,
		}
	}), nil
}

func newProducer(newWriter func(topic string) topicWriter) *Producer {
	return &Producer{
		newWriter: newWriter,
		writers:   make(map[string]topicWriter),
	}
}

// Publish writes messages to topic in order.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	w, err := p.writer(topic)
	if err != nil {
		return err
	}

	out := make([]kafkago.Message, len(messages))
	for i, msg := range messages {
		out[i] = toKafkaMessage(msg)
	}

	if err := w.WriteMessages(ctx, out...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	return nil
}

// Close closes every writer. Later Publish calls fail with ErrProducerClosed.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	var errs []error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing writer for topic %s: %w", topic, err))
		}
	}
	clear(p.writers)
	return errors.Join(errs...)
}

func (p *Producer) writer(topic string) (topicWriter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrProducerClosed
	}
	w, ok := p.writers[topic]
	if !ok {
		w = p.newWriter(topic)
		p.writers[topic] = w
	}
	return w, nil
}

// toKafkaMessage converts headers in key order so the wire form is stable.
func toKafkaMessage(msg Message) kafkago.Message {
	km := kafkago.Message{Key: msg.Key, Value: msg.Value}
	if len(msg.Headers) == 0 {
		return km
	}

	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	km.Headers = make([]kafkago.Header, len(keys))
	for i, k := range keys {
		km.Headers[i] = kafkago.Header{Key: k, Value: []byte(msg.Headers[k])}
	}
	return km
}
