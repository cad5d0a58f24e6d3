package session

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPrompt is the neutral content shown when nothing has been settled.
const DefaultPrompt = "Ask me anything"

// Transition records one state change for later inspection.
type Transition struct {
	From   State
	To     State
	Reason string
	At     time.Time
}

// Session is the aggregate root for a single interaction session. It is
// mutated only by the dispatcher's loop goroutine; everyone else reads
// copies via Snapshot.
//
// State changes go through TransitionTo (driven by the state machine); the
// remaining methods mutate display content without transitioning.
type Session struct {
	ID           string
	CurrentState State
	Display      string // text currently shown (settled response or prompt)
	LastError    string // user-facing error text while in the error state
	AppliedSeq   uint64 // sequence of the last applied engine completion
	DraftSeq     uint64 // sequence of the last applied draft validation
	DraftCode    int32  // outcome code of the last applied draft validation
	StartTime    time.Time
	History      []Transition
}

// New creates a session in the idle state with a fresh identity.
func New() *Session {
	return &Session{
		ID:           uuid.NewString(),
		CurrentState: StateIdle,
		Display:      DefaultPrompt,
		StartTime:    time.Now(),
	}
}

// TransitionTo moves the session to a new state and records the step.
func (s *Session) TransitionTo(to State, reason string) {
	s.History = append(s.History, Transition{
		From:   s.CurrentState,
		To:     to,
		Reason: reason,
		At:     time.Now(),
	})
	s.CurrentState = to
}

// Settle records a successful response. The accompanying state change is the
// machine's business.
func (s *Session) Settle(text string, seq uint64) {
	s.Display = text
	s.LastError = ""
	s.AppliedSeq = seq
}

// ShowError records a failure message. The previously settled display
// content is kept so dismissing restores it.
func (s *Session) ShowError(msg string) {
	s.LastError = msg
}

// ClearError removes a displayed error.
func (s *Session) ClearError() {
	s.LastError = ""
}

// Reset restores the default prompt and clears any error.
func (s *Session) Reset() {
	s.Display = DefaultPrompt
	s.LastError = ""
}

// RecordDraft stores the outcome of a debounced draft validation.
func (s *Session) RecordDraft(seq uint64, code int32) {
	s.DraftSeq = seq
	s.DraftCode = code
}

// CanSend reports whether a new submission is currently accepted.
func (s *Session) CanSend() bool {
	return s.CurrentState.AllowsSend()
}

// Snapshot is a read-only copy of the observable session state.
type Snapshot struct {
	ID         string
	State      State
	Display    string
	LastError  string
	CanSend    bool
	AppliedSeq uint64
	DraftSeq   uint64
	DraftCode  int32
}

// Snapshot returns a copy safe to hand to other goroutines.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:         s.ID,
		State:      s.CurrentState,
		Display:    s.Display,
		LastError:  s.LastError,
		CanSend:    s.CanSend(),
		AppliedSeq: s.AppliedSeq,
		DraftSeq:   s.DraftSeq,
		DraftCode:  s.DraftCode,
	}
}
