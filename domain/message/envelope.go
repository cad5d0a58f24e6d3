package message

import "sync/atomic"

// Envelope is the ownership-safe container carrying either a successful
// payload or a classified failure across the boundary.
//
// The engine is the sole owner of the payload until Release transfers
// responsibility. Exactly one Release call must be made per envelope, on both
// the success and failure path; the scoped form in the application layer
// guarantees this on every exit path. Accessing the payload after release, or
// releasing twice, is a caller programming error and panics rather than being
// silently tolerated.
type Envelope struct {
	kind     Kind
	payload  string
	diag     string
	released atomic.Bool
	onFree   func()
}

// NewSuccess creates a success envelope. onFree runs exactly once on Release
// and lets the allocator maintain its live count.
func NewSuccess(payload string, onFree func()) *Envelope {
	return &Envelope{kind: KindNone, payload: payload, onFree: onFree}
}

// NewFailure creates a failure envelope. The diagnostic text is for logging
// only and is never parsed by callers.
func NewFailure(kind Kind, diag string, onFree func()) *Envelope {
	return &Envelope{kind: kind, diag: diag, onFree: onFree}
}

// OK reports whether the envelope carries a successful payload.
func (e *Envelope) OK() bool {
	e.check()
	return e.kind.OK()
}

// Kind returns the failure classification (KindNone on success).
func (e *Envelope) Kind() Kind {
	e.check()
	return e.kind
}

// Payload returns the response text. Empty on the failure path.
func (e *Envelope) Payload() string {
	e.check()
	return e.payload
}

// Diagnostic returns the implementation-specific failure explanation, if any.
func (e *Envelope) Diagnostic() string {
	e.check()
	return e.diag
}

// Release frees the envelope. It must be called exactly once; a second call
// is a protocol violation and panics.
func (e *Envelope) Release() {
	if e.released.Swap(true) {
		panic("message: envelope released twice")
	}
	e.payload = ""
	e.diag = ""
	if e.onFree != nil {
		e.onFree()
		e.onFree = nil
	}
}

// Released reports whether Release has been called.
func (e *Envelope) Released() bool {
	return e.released.Load()
}

func (e *Envelope) check() {
	if e.released.Load() {
		panic("message: use of envelope after release")
	}
}
