// Package boundary exposes the engine through a flat, ownership-explicit
// surface shaped for embedding: plain byte payloads in, opaque handles out,
// with an explicit release call per handle. Everything a caller receives is
// owned by the boundary until released, misuse panics rather than corrupting
// state, and the live-handle count is observable for leak checks.
package boundary

import (
	"context"
	"sync"

	"github.com/lindoshq/lindos-go/application"
	"github.com/lindoshq/lindos-go/infrastructure/logging"
)

// Result is the outcome of processing one message. Data is valid until the
// result is released back to the boundary.
type Result struct {
	Success   bool
	ErrorCode int32
	Data      []byte

	free func()
}

// OwnedString is boundary-owned text, valid until released.
type OwnedString struct {
	Data []byte
}

// String returns the text. Callers needing it past release must copy.
func (s *OwnedString) String() string {
	return string(s.Data)
}

// Boundary is the embedding surface over one engine. Safe for concurrent use.
type Boundary struct {
	engine *application.Engine

	mu      sync.Mutex
	results map[*Result]struct{}
	strings map[*OwnedString]struct{}
}

// New creates a boundary over the given engine.
func New(engine *application.Engine) *Boundary {
	return &Boundary{
		engine:  engine,
		results: make(map[*Result]struct{}),
		strings: make(map[*OwnedString]struct{}),
	}
}

// NewDefault creates a boundary over a default engine.
func NewDefault() *Boundary {
	return New(application.NewDefaultEngine())
}

// SetDebugEnabled toggles verbose boundary diagnostics. Idempotent and safe
// to call from any goroutine at any time.
func (b *Boundary) SetDebugEnabled(enabled bool) {
	logging.SetDebug(enabled)
}

// ValidateMessage classifies raw bytes without processing them. Zero means
// the message would be accepted; any other value is a stable error code that
// ErrorMessageForCode can explain. Allocates nothing and takes no ownership.
func (b *Boundary) ValidateMessage(raw []byte) int32 {
	return b.engine.Validate(raw).Code()
}

// ProcessMessage validates and processes raw bytes. The returned result is
// owned by the boundary: the caller must hand it back via ReleaseResult
// exactly once. Never returns nil, and never returns a successful result
// with empty data.
func (b *Boundary) ProcessMessage(raw []byte) *Result {
	env := b.engine.Process(context.Background(), raw)

	res := &Result{
		Success:   env.OK(),
		ErrorCode: env.Kind().Code(),
		free:      env.Release,
	}
	if env.OK() {
		res.Data = []byte(env.Payload())
	}

	b.mu.Lock()
	b.results[res] = struct{}{}
	b.mu.Unlock()
	return res
}

// ReleaseResult returns a result to the boundary. Releasing nil is a no-op;
// releasing a result twice, or one this boundary never issued, panics.
func (b *Boundary) ReleaseResult(res *Result) {
	if res == nil {
		return
	}

	b.mu.Lock()
	_, ok := b.results[res]
	if ok {
		delete(b.results, res)
	}
	b.mu.Unlock()

	if !ok {
		panic("boundary: release of unknown or already-released result")
	}

	res.Data = nil
	res.free()
	res.free = nil
}

// ErrorMessageForCode returns human-readable text for any error code,
// including codes this version does not recognize. The result is never nil
// and never empty; the caller must release it via ReleaseString exactly once.
func (b *Boundary) ErrorMessageForCode(code int32) *OwnedString {
	s := &OwnedString{Data: []byte(b.engine.ErrorMessage(code))}

	b.mu.Lock()
	b.strings[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// ReleaseString returns an owned string to the boundary. Releasing nil is a
// no-op; releasing a string twice, or one this boundary never issued, panics.
func (b *Boundary) ReleaseString(s *OwnedString) {
	if s == nil {
		return
	}

	b.mu.Lock()
	_, ok := b.strings[s]
	if ok {
		delete(b.strings, s)
	}
	b.mu.Unlock()

	if !ok {
		panic("boundary: release of unknown or already-released string")
	}

	s.Data = nil
}

// Live returns the number of handles issued and not yet released. A caller
// honoring the ownership protocol sees zero after releasing everything.
func (b *Boundary) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.results) + len(b.strings)
}
