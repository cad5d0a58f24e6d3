package event

import "context"

// Publisher publishes session events to the event store.
type Publisher interface {
	// Publish sends events to the event store.
	Publish(ctx context.Context, events ...Event) error

	// Close releases any resources held by the publisher.
	Close() error
}

// Store is a sink for session events.
type Store interface {
	// Append adds events to the store.
	Append(ctx context.Context, events ...Event) error

	// List returns the events recorded for a session, in append order.
	List(ctx context.Context, sessionID string) ([]Event, error)
}
