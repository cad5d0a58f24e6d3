package responder

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// DefaultMaxChars is the default character budget for a single message.
const DefaultMaxChars = 1000

// DefaultPrefix is the reply prefix used by the echo responder.
const DefaultPrefix = "You said: "

// ErrTooLong indicates the message exceeded the responder's character budget.
var ErrTooLong = errors.New("message too long")

// Echo is the built-in deterministic responder: it prefixes the input and
// hands it back. It exists so the boundary, dispatcher, and state machine can
// be exercised end to end without a real language model behind them.
type Echo struct {
	prefix   string
	maxChars int
}

// EchoOption configures the echo responder.
type EchoOption func(*Echo)

// WithPrefix overrides the reply prefix.
func WithPrefix(prefix string) EchoOption {
	return func(e *Echo) {
		e.prefix = prefix
	}
}

// WithMaxChars overrides the character budget. Zero or negative disables
// the limit.
func WithMaxChars(n int) EchoOption {
	return func(e *Echo) {
		e.maxChars = n
	}
}

// NewEcho creates an echo responder with the default prefix and budget.
func NewEcho(opts ...EchoOption) *Echo {
	e := &Echo{
		prefix:   DefaultPrefix,
		maxChars: DefaultMaxChars,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Respond implements Responder.
func (e *Echo) Respond(_ context.Context, text string) (string, error) {
	if e.maxChars > 0 && utf8.RuneCountInString(text) > e.maxChars {
		return "", fmt.Errorf("%w: %d chars exceeds budget of %d",
			ErrTooLong, utf8.RuneCountInString(text), e.maxChars)
	}
	return e.prefix + text, nil
}

// MaxChars returns the configured character budget.
func (e *Echo) MaxChars() int {
	return e.maxChars
}
