package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/lindoshq/lindos-go/domain/session"
)

// TransitionPayload carries additional data with a transition event.
type TransitionPayload struct {
	ToState session.State
	Reason  string
}

// recordTransition records the state change on the session aggregate.
// In statekit, actions receive a pointer to the context. Since our context is
// *Context, actions receive **Context.
func recordTransition(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil || (*ctx).Session == nil {
		return
	}

	c := *ctx

	var toState session.State
	var reason string
	if payload, ok := event.Payload.(TransitionPayload); ok {
		toState = payload.ToState
		reason = payload.Reason
	} else {
		toState = stateFromEventType(event.Type)
	}

	c.Session.TransitionTo(toState, reason)
}

// stateFromEventType derives the target state from an event type.
func stateFromEventType(eventType statekit.EventType) session.State {
	switch eventType {
	case "SUBMIT":
		return session.StateValidating
	case "THINK":
		return session.StateThinking
	case "SETTLE":
		return session.StateSettled
	case "ERROR":
		return session.StateError
	case "DISMISS", "RESET":
		return session.StateIdle
	default:
		return session.State(eventType)
	}
}
