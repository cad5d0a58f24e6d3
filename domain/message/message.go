// Package message provides the core domain model for the lindos message
// boundary: the failure taxonomy, the validation stage, and the ownership-safe
// result envelope.
package message

import (
	"strings"
	"unicode/utf8"
)

// Message is a single piece of untrusted caller text. Messages have no
// identity and are never retained beyond the call that carries them.
type Message struct {
	raw []byte
}

// New wraps raw caller bytes. A nil slice models an absent reference.
func New(raw []byte) Message {
	return Message{raw: raw}
}

// Bytes returns the raw bytes of the message.
func (m Message) Bytes() []byte {
	return m.raw
}

// Text returns the message as a string. Only meaningful after validation
// reported valid UTF-8.
func (m Message) Text() string {
	return string(m.raw)
}

// IsAbsent returns true when the caller supplied no message reference at all.
func (m Message) IsAbsent() bool {
	return m.raw == nil
}

// Trimmed returns the message text with leading and trailing whitespace
// removed. The whitespace definition is unicode.IsSpace (space, tab, newline,
// carriage return, and Unicode space separators) and is the single definition
// shared by the consumer pre-check and the engine-side check.
func (m Message) Trimmed() string {
	return strings.TrimSpace(string(m.raw))
}

// Validate classifies a message against the structural rules, first match
// wins: absent reference, invalid UTF-8, empty after trimming. Pure and safe
// to call arbitrarily often and concurrently.
func Validate(raw []byte) Kind {
	m := New(raw)
	switch {
	case m.IsAbsent():
		return KindNullInput
	case !utf8.Valid(m.raw):
		return KindInvalidEncoding
	case m.Trimmed() == "":
		return KindEmptyMessage
	default:
		return KindNone
	}
}
