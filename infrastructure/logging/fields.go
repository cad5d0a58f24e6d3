package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/lindoshq/lindos-go/domain/message"
	"github.com/lindoshq/lindos-go/domain/session"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Common field constructors for boundary logging.

// SessionID adds a session ID field.
func SessionID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("session_id", id)
	}
}

// FromState adds a from_state field for transitions.
func FromState(s session.State) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("from_state", string(s))
	}
}

// ToState adds a to_state field for transitions.
func ToState(s session.State) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("to_state", string(s))
	}
}

// Outcome adds the failure classification of a processing call.
func Outcome(k message.Kind) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("outcome", k.String())
	}
}

// InputLength adds the input length in bytes. Message content is never
// logged, only its length.
func InputLength(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("input_len", n)
	}
}

// Seq adds a completion sequence number field.
func Seq(seq uint64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("seq", int64(seq))
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Enabled adds an enabled flag field.
func Enabled(enabled bool) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Bool("enabled", enabled)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}
