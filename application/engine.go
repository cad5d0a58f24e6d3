// Package application provides the processing engine and the call dispatcher
// that drive the lindos message boundary.
package application

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/lindoshq/lindos-go/domain/message"
	"github.com/lindoshq/lindos-go/domain/responder"
	"github.com/lindoshq/lindos-go/infrastructure/logging"
	"github.com/lindoshq/lindos-go/infrastructure/observability"
	"github.com/lindoshq/lindos-go/infrastructure/resilience"
)

// Engine validates untrusted caller text and turns it into result envelopes.
// It is the sole owner of every envelope it hands out until the caller
// releases it. Safe for concurrent use by any number of callers.
type Engine struct {
	responder responder.Responder
	executor  *resilience.Executor
	metrics   *observability.Metrics
	maxChars  int
	live      atomic.Int64
}

// EngineConfig contains configuration for the engine.
type EngineConfig struct {
	// Responder generates responses for valid messages. Defaults to the
	// built-in echo responder.
	Responder responder.Responder

	// Executor wraps responder invocations. Defaults to a resilient
	// executor with default settings.
	Executor *resilience.Executor

	// Metrics receives boundary measurements. Nil disables recording.
	Metrics *observability.Metrics

	// MaxChars is the character budget enforced by the validation
	// pre-check, matched by the default responder. Zero or negative
	// disables the pre-check limit.
	MaxChars int
}

// NewEngine creates a new engine with the given configuration.
func NewEngine(config EngineConfig) *Engine {
	e := &Engine{
		responder: config.Responder,
		executor:  config.Executor,
		metrics:   config.Metrics,
		maxChars:  config.MaxChars,
	}

	if e.maxChars == 0 {
		e.maxChars = responder.DefaultMaxChars
	}
	if e.responder == nil {
		e.responder = responder.NewEcho(responder.WithMaxChars(e.maxChars))
	}
	if e.executor == nil {
		e.executor = resilience.NewDefaultExecutor()
	}

	return e
}

// NewDefaultEngine creates an engine with default configuration.
func NewDefaultEngine() *Engine {
	return NewEngine(EngineConfig{})
}

// Validate classifies a message without processing it. The structural rules
// are exactly the ones Process applies before invoking the responder, so the
// pre-check and the engine-side check can never disagree. An over-budget
// message reports a processing failure, which is what Process would return
// for it.
func (e *Engine) Validate(raw []byte) message.Kind {
	if kind := message.Validate(raw); !kind.OK() {
		return kind
	}
	if e.maxChars > 0 && utf8.RuneCount(raw) > e.maxChars {
		return message.KindProcessingFailure
	}
	return message.KindNone
}

// Process validates the message and produces a result envelope. The caller
// must release the envelope exactly once; WithResult does this automatically.
// The check here is Validate itself, so the pre-check and the engine path
// cannot disagree for any input, and validation failures (including the
// character budget) never reach the responder.
func (e *Engine) Process(ctx context.Context, raw []byte) *message.Envelope {
	start := time.Now()

	if kind := e.Validate(raw); !kind.OK() {
		e.metrics.RecordValidationFailure(ctx, kind)
		return e.finish(ctx, start, len(raw), message.NewFailure(kind, "", e.acquire(ctx)))
	}

	text := message.New(raw).Text()
	reply, err := e.invoke(ctx, text)
	if err != nil {
		env := message.NewFailure(message.KindProcessingFailure, err.Error(), e.acquire(ctx))
		return e.finish(ctx, start, len(raw), env)
	}
	if reply == "" {
		env := message.NewFailure(message.KindProcessingFailure, message.ErrNoResponse.Error(), e.acquire(ctx))
		return e.finish(ctx, start, len(raw), env)
	}

	return e.finish(ctx, start, len(raw), message.NewSuccess(reply, e.acquire(ctx)))
}

// WithResult is the scoped-acquisition form of Process: the envelope is
// released on every exit path, including panics raised by fn.
func (e *Engine) WithResult(ctx context.Context, raw []byte, fn func(*message.Envelope) error) error {
	env := e.Process(ctx, raw)
	defer env.Release()
	return fn(env)
}

// ErrorMessage returns the human-readable text for any error code, including
// unrecognized ones. The result is never empty.
func (e *Engine) ErrorMessage(code int32) string {
	return message.KindFromCode(code).Message()
}

// LiveEnvelopes returns the number of envelopes acquired from this engine
// and not yet released. Returns to zero when callers honor the protocol.
func (e *Engine) LiveEnvelopes() int64 {
	return e.live.Load()
}

// invoke runs the responder through the resilient executor, converting a
// responder panic into an ordinary error rather than tearing the process
// down on malformed collaborator behavior.
func (e *Engine) invoke(ctx context.Context, text string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply = ""
			err = fmt.Errorf("responder panic: %v", r)
		}
	}()
	return e.executor.Invoke(ctx, e.responder, text)
}

// acquire registers a new live envelope and returns its release hook.
func (e *Engine) acquire(ctx context.Context) func() {
	e.live.Add(1)
	e.metrics.EnvelopeAcquired(ctx)
	return func() {
		e.live.Add(-1)
		e.metrics.EnvelopeReleased(context.Background())
	}
}

// finish records diagnostics and metrics for a completed call. The debug
// record carries the input length, never its content.
func (e *Engine) finish(ctx context.Context, start time.Time, inputLen int, env *message.Envelope) *message.Envelope {
	e.metrics.RecordProcessed(ctx, env.Kind())

	if logging.DebugEnabled() {
		logging.Debug().
			Add(logging.Component("engine")).
			Add(logging.InputLength(inputLen)).
			Add(logging.Outcome(env.Kind())).
			Add(logging.Duration(time.Since(start))).
			Msg("message processed")
	}

	return env
}
