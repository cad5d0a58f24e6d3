package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lindoshq/lindos-go/domain/event"
	"github.com/lindoshq/lindos-go/domain/message"
	"github.com/lindoshq/lindos-go/domain/session"
	"github.com/lindoshq/lindos-go/infrastructure/logging"
	"github.com/lindoshq/lindos-go/infrastructure/statemachine"
)

// Default dispatcher timings.
const (
	DefaultDebounce     = 300 * time.Millisecond
	DefaultErrorTimeout = 5 * time.Second
)

// SubmitResult is the outcome of a submission delivered to a waiting caller.
type SubmitResult struct {
	Text string
	Err  error
}

// Dispatcher drives the interaction state machine around the engine. A
// single loop goroutine is the interaction thread: it is the only writer of
// the session and the state machine, it never blocks on the engine, and
// engine completions are handed back to it as messages carrying sequence
// numbers so stale results can never clobber newer ones.
type Dispatcher struct {
	engine *Engine
	interp *statemachine.Interpreter
	sess   *session.Session
	events event.Publisher

	debounce time.Duration
	errTTL   time.Duration

	// validateFn is the draft/pre-check function; swapped in tests.
	validateFn func([]byte) message.Kind

	ctx      context.Context
	msgs     chan any
	done     chan struct{}
	loopDone chan struct{}
	calls    sync.WaitGroup
	started  atomic.Bool
	stopOnce sync.Once

	seq atomic.Uint64

	mu   sync.RWMutex
	snap session.Snapshot

	// loop-owned state
	errGen     uint64
	draftGen   uint64
	draftText  string
	draftTimer *time.Timer
}

// DispatcherOption configures the dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDebounce sets the quiet window for live draft validation.
func WithDebounce(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.debounce = d
	}
}

// WithErrorTimeout sets how long an error stays visible before
// auto-dismissing.
func WithErrorTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.errTTL = d
	}
}

// WithPublisher attaches an event publisher for session events.
func WithPublisher(p event.Publisher) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.events = p
	}
}

// NewDispatcher creates a dispatcher for a fresh session.
func NewDispatcher(engine *Engine, opts ...DispatcherOption) (*Dispatcher, error) {
	sess := session.New()
	machineCtx := statemachine.NewContext(sess)

	machine, err := statemachine.NewSessionMachine()
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		engine:     engine,
		interp:     statemachine.NewInterpreter(machine, machineCtx),
		sess:       sess,
		debounce:   DefaultDebounce,
		errTTL:     DefaultErrorTimeout,
		validateFn: engine.Validate,
		msgs:       make(chan any, 16),
		done:       make(chan struct{}),
		loopDone:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Start launches the interaction loop. The context is used for engine calls
// launched on behalf of submissions.
func (d *Dispatcher) Start(ctx context.Context) {
	if d.started.Swap(true) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.ctx = ctx

	d.interp.Start()
	d.sync()

	logging.Info().
		Add(logging.Component("dispatcher")).
		Add(logging.SessionID(d.sess.ID)).
		Msg("session started")

	go d.loop()
}

// Close stops the loop and waits for in-flight engine calls to finish.
// Envelopes from calls that complete after close are still released: a
// completion racing Close may land in the message buffer after the loop has
// exited, so the buffer is drained once every producer has stopped.
func (d *Dispatcher) Close() {
	d.stopOnce.Do(func() {
		close(d.done)
	})
	if d.started.Load() {
		<-d.loopDone
	}
	d.calls.Wait()
	d.drain()
}

// drain releases envelopes stranded in the message buffer. Only called after
// the loop has exited and all call goroutines have finished, so nothing sends
// concurrently.
func (d *Dispatcher) drain() {
	for {
		select {
		case m := <-d.msgs:
			if c, ok := m.(completionMsg); ok {
				c.env.Release()
				if c.reply != nil {
					c.reply <- SubmitResult{Err: ErrClosed}
				}
			}
		default:
			return
		}
	}
}

// Snapshot returns a copy of the observable session state. Safe from any
// goroutine.
func (d *Dispatcher) Snapshot() session.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// SessionID returns the identity of the session this dispatcher drives.
func (d *Dispatcher) SessionID() string {
	return d.sess.ID
}

// Submit hands a message to the session without waiting for the outcome.
// The state machine trajectory is observable through Snapshot and events.
func (d *Dispatcher) Submit(text string) {
	d.post(submitMsg{text: text})
}

// SubmitWait submits a message and blocks the caller (never the interaction
// loop) until the session settles or errors.
func (d *Dispatcher) SubmitWait(ctx context.Context, text string) (string, error) {
	reply := make(chan SubmitResult, 1)
	if !d.post(submitMsg{text: text, reply: reply}) {
		return "", ErrClosed
	}

	select {
	case res := <-reply:
		return res.Text, res.Err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-d.done:
		return "", ErrClosed
	}
}

// EditDraft reports the current draft text for debounced live validation.
// Rapid edits within the quiet window collapse into a single check against
// the latest text.
func (d *Dispatcher) EditDraft(text string) {
	d.post(draftMsg{text: text})
}

// Clear dismisses a displayed error explicitly.
func (d *Dispatcher) Clear() {
	d.post(clearMsg{})
}

// Reset returns a settled session to idle with the default prompt.
func (d *Dispatcher) Reset() {
	d.post(resetMsg{})
}

// Loop messages. Only the loop goroutine touches the session, the
// interpreter, and the loop-owned fields.

type submitMsg struct {
	text  string
	reply chan SubmitResult
}

type completionMsg struct {
	seq   uint64
	env   *message.Envelope
	reply chan SubmitResult
}

type draftMsg struct{ text string }

type draftFireMsg struct{ gen uint64 }

type draftResultMsg struct {
	seq  uint64
	kind message.Kind
}

type clearMsg struct{}

type resetMsg struct{}

type errTimerMsg struct{ gen uint64 }

// post delivers a message to the loop unless the dispatcher is closed.
func (d *Dispatcher) post(m any) bool {
	select {
	case d.msgs <- m:
		return true
	case <-d.done:
		if c, ok := m.(completionMsg); ok {
			c.env.Release()
		}
		return false
	}
}

func (d *Dispatcher) loop() {
	defer close(d.loopDone)
	for {
		select {
		case <-d.done:
			return
		case m := <-d.msgs:
			d.handle(m)
			d.sync()
		}
	}
}

func (d *Dispatcher) handle(m any) {
	switch m := m.(type) {
	case submitMsg:
		d.handleSubmit(m)
	case completionMsg:
		d.handleCompletion(m)
	case draftMsg:
		d.handleDraft(m)
	case draftFireMsg:
		d.handleDraftFire(m)
	case draftResultMsg:
		d.handleDraftResult(m)
	case clearMsg:
		d.dismissError("cleared")
	case resetMsg:
		d.handleReset()
	case errTimerMsg:
		if m.gen == d.errGen {
			d.dismissError("timeout")
		}
	}
}

func (d *Dispatcher) handleSubmit(m submitMsg) {
	if !d.sess.CanSend() {
		if m.reply != nil {
			m.reply <- SubmitResult{Err: ErrBusy}
		}
		return
	}

	// A new submission from the error state dismisses the error first;
	// the machine has no error → validating edge.
	if d.sess.CurrentState == session.StateError {
		d.dismissError("superseded by new submission")
	}

	seq := d.seq.Add(1)
	raw := []byte(m.text)

	d.transition(session.StateValidating, "submit")
	d.publish(event.TypeSubmitted, event.SubmittedPayload{Seq: seq, Length: len(raw)})

	if kind := d.validateFn(raw); !kind.OK() {
		d.rejectSubmit(seq, kind, m.reply)
		return
	}

	d.transition(session.StateThinking, "validation passed")

	d.calls.Add(1)
	go func() {
		defer d.calls.Done()
		env := d.engine.Process(d.ctx, raw)
		d.post(completionMsg{seq: seq, env: env, reply: m.reply})
	}()
}

func (d *Dispatcher) handleCompletion(m completionMsg) {
	// Completion order governs: anything at or below the last applied
	// sequence is stale and dropped, not buffered.
	if m.seq <= d.sess.AppliedSeq {
		m.env.Release()
		logging.Debug().
			Add(logging.Component("dispatcher")).
			Add(logging.Seq(m.seq)).
			Msg("stale completion dropped")
		if m.reply != nil {
			m.reply <- SubmitResult{Err: ErrSuperseded}
		}
		return
	}

	if d.sess.CurrentState != session.StateThinking {
		m.env.Release()
		if m.reply != nil {
			m.reply <- SubmitResult{Err: ErrSuperseded}
		}
		return
	}

	if m.env.OK() {
		text := m.env.Payload()
		m.env.Release()

		d.transition(session.StateSettled, "response received")
		d.sess.Settle(text, m.seq)
		d.publish(event.TypeSettled, event.SettledPayload{Seq: m.seq, Length: len(text)})

		if m.reply != nil {
			m.reply <- SubmitResult{Text: text}
		}
		return
	}

	kind := m.env.Kind()
	diag := m.env.Diagnostic()
	m.env.Release()

	if diag != "" && logging.DebugEnabled() {
		logging.Debug().
			Add(logging.Component("dispatcher")).
			Add(logging.Outcome(kind)).
			Add(logging.Seq(m.seq)).
			Msg(diag)
	}

	d.sess.AppliedSeq = m.seq
	d.showError(kind)
	d.publish(event.TypeRejected, event.RejectedPayload{Seq: m.seq, Code: kind.Code()})

	if m.reply != nil {
		m.reply <- SubmitResult{Err: &Rejection{Kind: kind}}
	}
}

// rejectSubmit handles a failed pre-check: the engine is never invoked.
func (d *Dispatcher) rejectSubmit(seq uint64, kind message.Kind, reply chan SubmitResult) {
	d.sess.AppliedSeq = seq
	d.showError(kind)
	d.publish(event.TypeRejected, event.RejectedPayload{Seq: seq, Code: kind.Code()})

	if reply != nil {
		reply <- SubmitResult{Err: &Rejection{Kind: kind}}
	}
}

func (d *Dispatcher) handleDraft(m draftMsg) {
	d.draftGen++
	d.draftText = m.text
	gen := d.draftGen

	if d.draftTimer != nil {
		d.draftTimer.Stop()
	}
	if d.debounce <= 0 {
		d.fireDraft(gen)
		return
	}
	d.draftTimer = time.AfterFunc(d.debounce, func() {
		d.post(draftFireMsg{gen: gen})
	})
}

func (d *Dispatcher) handleDraftFire(m draftFireMsg) {
	if m.gen != d.draftGen {
		return // superseded by a newer edit
	}
	d.fireDraft(m.gen)
}

func (d *Dispatcher) fireDraft(gen uint64) {
	seq := d.seq.Add(1)
	text := d.draftText

	d.calls.Add(1)
	go func() {
		defer d.calls.Done()
		kind := d.validateFn([]byte(text))
		d.post(draftResultMsg{seq: seq, kind: kind})
	}()
}

func (d *Dispatcher) handleDraftResult(m draftResultMsg) {
	if m.seq <= d.sess.DraftSeq {
		return // stale check outrun by a newer one
	}
	d.sess.RecordDraft(m.seq, m.kind.Code())
	d.publish(event.TypeDraftChecked, event.DraftCheckedPayload{Seq: m.seq, Code: m.kind.Code()})
}

func (d *Dispatcher) handleReset() {
	if d.sess.CurrentState != session.StateSettled {
		return
	}
	d.transition(session.StateIdle, "reset")
	d.sess.Reset()
}

// showError enters the error state and arms the auto-dismiss timer.
func (d *Dispatcher) showError(kind message.Kind) {
	msg := kind.Message()
	d.transition(session.StateError, msg)
	d.sess.ShowError(msg)
	d.publish(event.TypeErrorShown, event.RejectedPayload{Code: kind.Code()})

	d.errGen++
	gen := d.errGen
	time.AfterFunc(d.errTTL, func() {
		d.post(errTimerMsg{gen: gen})
	})
}

// dismissError leaves the error state, restoring the previous content.
func (d *Dispatcher) dismissError(reason string) {
	if d.sess.CurrentState != session.StateError {
		return
	}
	d.errGen++ // invalidate any armed timer
	d.transition(session.StateIdle, reason)
	d.sess.ClearError()
	d.publish(event.TypeErrorDismissed, nil)
}

// transition drives the state machine and publishes the change.
func (d *Dispatcher) transition(to session.State, reason string) {
	from := d.sess.CurrentState
	if err := d.interp.Transition(to, reason); err != nil {
		logging.Error().
			Add(logging.Component("dispatcher")).
			Add(logging.FromState(from)).
			Add(logging.ToState(to)).
			Add(logging.ErrorField(err)).
			Msg("transition rejected")
		return
	}
	d.publish(event.TypeStateChanged, event.StateChangedPayload{From: from, To: to})
	d.sync()
}

// publish emits a session event if a publisher is attached.
func (d *Dispatcher) publish(t event.Type, payload any) {
	if d.events == nil {
		return
	}
	e, err := event.New(d.sess.ID, t, payload)
	if err != nil {
		return
	}
	if err := d.events.Publish(context.Background(), e); err != nil {
		logging.Warn().
			Add(logging.Component("dispatcher")).
			Add(logging.ErrorField(err)).
			Msg("event publish failed")
	}
}

// sync refreshes the shared snapshot.
func (d *Dispatcher) sync() {
	snap := d.sess.Snapshot()
	d.mu.Lock()
	d.snap = snap
	d.mu.Unlock()
}
