// Package responder defines the response-generation collaborator the engine
// delegates to once a message has passed validation.
package responder

import "context"

// Responder turns a validated message into a response. Implementations must
// be safe for concurrent use; the engine may invoke them from many sessions
// at once. An empty response with a nil error is treated as a processing
// failure by the engine.
type Responder interface {
	Respond(ctx context.Context, text string) (string, error)
}

// Func adapts a plain function to the Responder interface.
type Func func(ctx context.Context, text string) (string, error)

// Respond implements Responder.
func (f Func) Respond(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}
