// Package event provides in-memory event publishing for session events.
// Nothing is persisted: conversation history never outlives the process.
package event

import (
	"context"
	"sync"

	"github.com/lindoshq/lindos-go/domain/event"
)

// MemoryStore is an in-memory event store grouping events by session.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string][]event.Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[string][]event.Event),
	}
}

// Append adds events to the store.
func (s *MemoryStore) Append(_ context.Context, events ...event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		s.events[e.SessionID] = append(s.events[e.SessionID], e)
	}
	return nil
}

// List returns the events recorded for a session, in append order.
func (s *MemoryStore) List(_ context.Context, sessionID string) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]event.Event, len(s.events[sessionID]))
	copy(out, s.events[sessionID])
	return out, nil
}

// Ensure MemoryStore implements event.Store
var _ event.Store = (*MemoryStore)(nil)
