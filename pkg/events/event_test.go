package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlgkit/subjectivity/pkg/events"
)

type sampleEvent struct {
	ID    uuid.UUID `json:"event_id"`
	AggID uuid.UUID `json:"aggregate"`
	At    time.Time `json:"at"`
	Score float64   `json:"score"`
}

func (e sampleEvent) EventID() uuid.UUID     { return e.ID }
func (e sampleEvent) EventType() string      { return "sample.happened" }
func (e sampleEvent) AggregateID() uuid.UUID { return e.AggID }
func (e sampleEvent) AggregateType() string  { return "Sample" }
func (e sampleEvent) OccurredAt() time.Time  { return e.At }

func TestWrap(t *testing.T) {
	evt := sampleEvent{ID: uuid.New(), AggID: uuid.New(), At: time.Now(), Score: 42.5}

	env, err := events.Wrap(evt)
	require.NoError(t, err)

	assert.Equal(t, evt.ID, env.ID)
	assert.Equal(t, "sample.happened", env.Type)
	assert.Equal(t, evt.AggID, env.AggregateID)
	assert.Equal(t, time.UTC, env.OccurredAt.Location())
	assert.Equal(t, "sample.happened", env.Headers()["event_type"])

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var back events.Envelope
	require.NoError(t, json.Unmarshal(raw, &back))

	var decoded sampleEvent
	require.NoError(t, back.Decode(&decoded))
	assert.Equal(t, 42.5, decoded.Score)
}
