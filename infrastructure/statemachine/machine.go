// Package statemachine provides the statekit integration for the interaction
// session.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/lindoshq/lindos-go/domain/session"
)

// Context carries session state through the state machine.
type Context struct {
	Session     *session.Session
	Transitions *session.Transitions
}

// NewContext creates a new machine context.
func NewContext(sess *session.Session) *Context {
	return &Context{
		Session:     sess,
		Transitions: session.DefaultTransitions(),
	}
}

// State IDs as StateID type for statekit.
const (
	stateIdle       statekit.StateID = statekit.StateID(session.StateIdle)
	stateValidating statekit.StateID = statekit.StateID(session.StateValidating)
	stateThinking   statekit.StateID = statekit.StateID(session.StateThinking)
	stateSettled    statekit.StateID = statekit.StateID(session.StateSettled)
	stateError      statekit.StateID = statekit.StateID(session.StateError)
)

// NewSessionMachine creates the canonical interaction statechart. The chart
// is deliberately non-final everywhere: a chat session cycles until the
// process goes away.
func NewSessionMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("session").
		WithInitial(stateIdle).
		WithContext(&Context{}).
		// Register actions
		WithAction("recordTransition", recordTransition).
		// Register guards
		WithGuard("canTransition", guardCanTransition).
		// Define states
		State(stateIdle).
			On("SUBMIT").Target(stateValidating).Guard("canTransition").Do("recordTransition").
			Done().
		State(stateValidating).
			On("THINK").Target(stateThinking).Guard("canTransition").Do("recordTransition").
			On("ERROR").Target(stateError).Guard("canTransition").Do("recordTransition").
			On("DISMISS").Target(stateIdle).Guard("canTransition").Do("recordTransition").
			Done().
		State(stateThinking).
			On("SETTLE").Target(stateSettled).Guard("canTransition").Do("recordTransition").
			On("ERROR").Target(stateError).Guard("canTransition").Do("recordTransition").
			Done().
		State(stateSettled).
			On("SUBMIT").Target(stateValidating).Guard("canTransition").Do("recordTransition").
			On("RESET").Target(stateIdle).Guard("canTransition").Do("recordTransition").
			Done().
		State(stateError).
			On("DISMISS").Target(stateIdle).Guard("canTransition").Do("recordTransition").
			Done().
		Build()
}

// EventForTransition returns the event type that reaches the target state.
func EventForTransition(from, to session.State) statekit.EventType {
	switch to {
	case session.StateValidating:
		return "SUBMIT"
	case session.StateThinking:
		return "THINK"
	case session.StateSettled:
		return "SETTLE"
	case session.StateError:
		return "ERROR"
	case session.StateIdle:
		if from == session.StateSettled {
			return "RESET"
		}
		return "DISMISS"
	default:
		return statekit.EventType(to)
	}
}

// StateFromMachine converts the machine state ID to a domain State.
func StateFromMachine(stateID statekit.StateID) session.State {
	return session.State(stateID)
}
