package session

// Transitions is the allowed-transition policy for interaction sessions.
type Transitions struct {
	allowed map[State][]State
}

// DefaultTransitions returns the canonical interaction state graph:
//
//	idle       → validating
//	validating → thinking | error | idle
//	thinking   → settled | error
//	settled    → validating | idle
//	error      → idle
func DefaultTransitions() *Transitions {
	return &Transitions{
		allowed: map[State][]State{
			StateIdle:       {StateValidating},
			StateValidating: {StateThinking, StateError, StateIdle},
			StateThinking:   {StateSettled, StateError},
			StateSettled:    {StateValidating, StateIdle},
			StateError:      {StateIdle},
		},
	}
}

// CanTransition returns true if moving from one state to another is allowed.
func (t *Transitions) CanTransition(from, to State) bool {
	for _, s := range t.allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedFrom returns the states reachable from the given state.
func (t *Transitions) AllowedFrom(from State) []State {
	out := make([]State, len(t.allowed[from]))
	copy(out, t.allowed[from])
	return out
}
