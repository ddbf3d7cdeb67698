package messaging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlgkit/subjectivity/internal/domain/event"
	"github.com/nlgkit/subjectivity/internal/infrastructure/messaging"
)

func TestLogPublisher_Publish(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	pub := messaging.NewLogPublisher(logger)

	evt := event.NewHighlySubjectiveDetected(uuid.New(), uuid.New(), "", 96, time.Now())
	require.NoError(t, pub.Publish(context.Background(), evt))

	out := buf.String()
	assert.Contains(t, out, event.EventTypeHighlySubjectiveDetected)
	assert.Contains(t, out, `\"subjectivity\":96`)
}
