package message

import (
	"errors"
	"fmt"
)

// Kind classifies a processing failure. Codes are stable across the boundary
// and must never be renumbered.
type Kind int32

// Canonical kinds with their wire codes.
const (
	KindNone              Kind = 0 // success sentinel
	KindNullInput         Kind = 1 // caller supplied no message reference
	KindInvalidEncoding   Kind = 2 // message bytes are not valid UTF-8
	KindEmptyMessage      Kind = 3 // message is empty or all whitespace
	KindProcessingFailure Kind = 4 // responder accepted the message but failed
)

// Domain errors for the message lifecycle.
var (
	// ErrReleased indicates an envelope was used after release.
	ErrReleased = errors.New("envelope already released")

	// ErrNoResponse indicates the responder produced no output for valid input.
	ErrNoResponse = errors.New("responder produced no response")
)

// Code returns the stable wire code for the kind.
func (k Kind) Code() int32 {
	return int32(k)
}

// IsKnown returns true if the kind is one of the canonical kinds.
func (k Kind) IsKnown() bool {
	return k >= KindNone && k <= KindProcessingFailure
}

// OK returns true for the success sentinel.
func (k Kind) OK() bool {
	return k == KindNone
}

// String returns the stable identifier for the kind. Unknown codes keep
// their numeric value so they round-trip losslessly.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNullInput:
		return "null_input"
	case KindInvalidEncoding:
		return "invalid_encoding"
	case KindEmptyMessage:
		return "empty_message"
	case KindProcessingFailure:
		return "processing_failure"
	default:
		return fmt.Sprintf("unknown(%d)", int32(k))
	}
}

// Message returns a short, non-technical, user-facing description.
// It is never empty; unrecognized codes embed the code for diagnosability.
func (k Kind) Message() string {
	switch k {
	case KindNone:
		return "OK"
	case KindNullInput:
		return "No message provided"
	case KindInvalidEncoding:
		return "Message contains invalid characters"
	case KindEmptyMessage:
		return "Message cannot be empty"
	case KindProcessingFailure:
		return "Failed to process message"
	default:
		return fmt.Sprintf("Unknown error (code %d)", int32(k))
	}
}

// KindFromCode converts a wire code back into a Kind. Codes outside the
// canonical table are preserved as-is for forward compatibility.
func KindFromCode(code int32) Kind {
	return Kind(code)
}

// KnownKinds returns the canonical kinds in wire-code order.
func KnownKinds() []Kind {
	return []Kind{
		KindNone,
		KindNullInput,
		KindInvalidEncoding,
		KindEmptyMessage,
		KindProcessingFailure,
	}
}
