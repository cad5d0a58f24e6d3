package application

import (
	"errors"

	"github.com/lindoshq/lindos-go/domain/message"
)

// Application-level errors for the dispatcher.
var (
	// ErrBusy indicates a submission arrived while one was outstanding.
	ErrBusy = errors.New("session is busy")

	// ErrClosed indicates the dispatcher has been closed.
	ErrClosed = errors.New("dispatcher closed")

	// ErrSuperseded indicates a completion was dropped for a newer one.
	ErrSuperseded = errors.New("result superseded by a newer submission")
)

// Rejection is the error returned when a message fails validation or
// processing. It carries the taxonomy kind for the caller.
type Rejection struct {
	Kind message.Kind
}

// Error implements error with the user-facing message for the kind.
func (r *Rejection) Error() string {
	return r.Kind.Message()
}

// Code returns the stable wire code of the failure.
func (r *Rejection) Code() int32 {
	return r.Kind.Code()
}

// AsRejection extracts a Rejection from an error chain.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

var _ error = (*Rejection)(nil)
