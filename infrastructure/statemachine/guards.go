package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/lindoshq/lindos-go/domain/session"
)

// guardCanTransition checks the transition against the session policy.
// Note: in statekit, guards receive the context by value. Since our context
// is *Context, the guard receives *Context directly.
func guardCanTransition(ctx *Context, event statekit.Event) bool {
	if ctx == nil || ctx.Session == nil || ctx.Transitions == nil {
		return false
	}

	fromState := ctx.Session.CurrentState

	var toState session.State
	if payload, ok := event.Payload.(TransitionPayload); ok {
		toState = payload.ToState
	} else {
		toState = stateFromEventType(event.Type)
	}

	return ctx.Transitions.CanTransition(fromState, toState)
}
