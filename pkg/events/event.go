package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the metadata every domain event exposes.
type Event interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	AggregateType() string
	OccurredAt() time.Time
}

// Envelope is the wire form of a domain event: metadata plus the
// JSON-encoded event as data.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Data          json.RawMessage `json:"data"`
}

// Wrap marshals evt into an Envelope.
func Wrap(evt Event) (Envelope, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
	}
	return Envelope{
		ID:            evt.EventID(),
		Type:          evt.EventType(),
		AggregateID:   evt.AggregateID(),
		AggregateType: evt.AggregateType(),
		OccurredAt:    evt.OccurredAt().UTC(),
		Data:          data,
	}, nil
}

// Headers returns the message headers used to route the envelope without
// decoding its body.
func (e Envelope) Headers() map[string]string {
	return map[string]string{
		"event_id":       e.ID.String(),
		"event_type":     e.Type,
		"aggregate_type": e.AggregateType,
		"content_type":   "application/json",
	}
}

// Decode unmarshals the envelope data into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s event: %w", e.Type, err)
	}
	return nil
}
