// Package session provides the interaction-side domain model: the state a
// chat session moves through while a message is validated and processed.
package session

// State represents where an interaction session currently is. States are
// identified by stable strings.
type State string

// Canonical interaction states.
const (
	StateIdle       State = "idle"       // Awaiting input
	StateValidating State = "validating" // Structural pre-check running
	StateThinking   State = "thinking"   // Engine call in flight
	StateSettled    State = "settled"    // Response displayed
	StateError      State = "error"      // Failure message displayed
)

// IsTerminalForSubmit returns true if a new submission may start from this
// state.
func (s State) IsTerminalForSubmit() bool {
	return s == StateIdle || s == StateSettled
}

// AllowsSend returns true if the session may accept a new submission.
// Sending is gated off for the whole duration of validating and thinking.
func (s State) AllowsSend() bool {
	return s == StateIdle || s == StateSettled || s == StateError
}

// IsBusy returns true while a check or an engine call is outstanding.
func (s State) IsBusy() bool {
	return s == StateValidating || s == StateThinking
}

// IsValid returns true if the state is a recognized canonical state.
func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateValidating, StateThinking, StateSettled, StateError:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// AllStates returns all canonical states.
func AllStates() []State {
	return []State{
		StateIdle,
		StateValidating,
		StateThinking,
		StateSettled,
		StateError,
	}
}
