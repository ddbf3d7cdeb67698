package testutil

import (
	"context"
	"net"
	"strconv"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.6.1"

// Kafka is a single-node KRaft broker for integration tests.
type Kafka struct {
	Brokers []string
}

// StartKafka runs a Kafka container that is terminated when the test ends.
func StartKafka(ctx context.Context, t *testing.T) *Kafka {
	t.Helper()

	ctr, err := kafka.Run(ctx, kafkaImage, kafka.WithClusterID("subjectivity-it"))
	require.NoError(t, err, "start kafka container")
	terminateOnCleanup(t, "kafka", ctr)

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err, "kafka brokers")
	require.NotEmpty(t, brokers)

	return &Kafka{Brokers: brokers}
}

// CreateTopics creates single-partition topics through the cluster controller.
func (k *Kafka) CreateTopics(t *testing.T, topics ...string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", k.Brokers[0])
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrl.Close()

	configs := make([]kafkago.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	}
	require.NoError(t, ctrl.CreateTopics(configs...), "create topics %v", topics)
}
