package statemachine

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/lindoshq/lindos-go/domain/session"
)

// Interpreter wraps the statekit interpreter with session-specific
// functionality. It is not safe for concurrent use; the dispatcher drives it
// from a single goroutine.
type Interpreter struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewInterpreter creates a new interpreter for the session state machine.
func NewInterpreter(machine *statekit.MachineConfig[*Context], ctx *Context) *Interpreter {
	interp := statekit.NewInterpreter(machine)
	// Update the context reference in the machine
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	return &Interpreter{
		interp: interp,
		ctx:    ctx,
	}
}

// Start initializes the interpreter and enters the initial state.
func (i *Interpreter) Start() {
	i.interp.Start()
	state := i.interp.State()
	i.ctx.Session.CurrentState = session.State(state.Value)
}

// Stop stops the interpreter.
func (i *Interpreter) Stop() {
	i.interp.Stop()
}

// State returns the current state.
func (i *Interpreter) State() session.State {
	state := i.interp.State()
	return session.State(state.Value)
}

// Transition attempts to transition to the target state.
func (i *Interpreter) Transition(to session.State, reason string) error {
	if !i.CanTransition(to) {
		return fmt.Errorf("transition from %s to %s not allowed", i.ctx.Session.CurrentState, to)
	}

	from := i.ctx.Session.CurrentState
	event := statekit.Event{
		Type: EventForTransition(from, to),
		Payload: TransitionPayload{
			ToState: to,
			Reason:  reason,
		},
	}

	// Send the event (doesn't return error, uses panic for invalid events)
	i.interp.Send(event)

	newState := i.interp.State()
	i.ctx.Session.CurrentState = session.State(newState.Value)

	return nil
}

// CanTransition checks if a transition to the target state is possible.
func (i *Interpreter) CanTransition(to session.State) bool {
	return i.ctx.Transitions.CanTransition(i.ctx.Session.CurrentState, to)
}

// Matches checks if the current state matches the given state ID.
func (i *Interpreter) Matches(stateID string) bool {
	return i.interp.Matches(statekit.StateID(stateID))
}

// Context returns the interpreter context.
func (i *Interpreter) Context() *Context {
	return i.ctx
}
