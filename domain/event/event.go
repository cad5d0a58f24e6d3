// Package event provides domain types and interfaces for session events.
package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event represents something that happened during an interaction session.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// SessionID is the ID of the session this event belongs to.
	SessionID string `json:"session_id"`

	// Type classifies the event.
	Type Type `json:"type"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Payload contains the event-specific data.
	Payload json.RawMessage `json:"payload"`

	// Version is the event schema version for forward compatibility.
	Version int `json:"version,omitempty"`
}

// New creates a new event with the given type and payload.
func New(sessionID string, eventType Type, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   data,
		Version:   1,
	}, nil
}

// UnmarshalPayload decodes the event payload into the given value.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}
