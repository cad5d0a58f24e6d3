package event

import "github.com/lindoshq/lindos-go/domain/session"

// Type classifies session events.
type Type string

// Event types for the interaction session.
const (
	// Submission lifecycle
	TypeSubmitted Type = "message.submitted"
	TypeSettled   Type = "message.settled"
	TypeRejected  Type = "message.rejected"

	// State machine
	TypeStateChanged Type = "session.state_changed"

	// Draft validation
	TypeDraftChecked Type = "draft.checked"

	// Error display
	TypeErrorShown     Type = "error.shown"
	TypeErrorDismissed Type = "error.dismissed"
)

// SubmittedPayload contains data for message.submitted events. Message
// content is never carried, only its length.
type SubmittedPayload struct {
	Seq    uint64 `json:"seq"`
	Length int    `json:"length"`
}

// SettledPayload contains data for message.settled events.
type SettledPayload struct {
	Seq    uint64 `json:"seq"`
	Length int    `json:"length"` // response length, not content
}

// RejectedPayload contains data for message.rejected events.
type RejectedPayload struct {
	Seq  uint64 `json:"seq,omitempty"`
	Code int32  `json:"code"`
}

// StateChangedPayload contains data for session.state_changed events.
type StateChangedPayload struct {
	From session.State `json:"from"`
	To   session.State `json:"to"`
}

// DraftCheckedPayload contains data for draft.checked events.
type DraftCheckedPayload struct {
	Seq  uint64 `json:"seq"`
	Code int32  `json:"code"`
}
