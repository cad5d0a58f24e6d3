package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lindoshq/lindos-go/domain/event"
	"github.com/lindoshq/lindos-go/domain/message"
	"github.com/lindoshq/lindos-go/domain/responder"
	"github.com/lindoshq/lindos-go/domain/session"
	infraevent "github.com/lindoshq/lindos-go/infrastructure/event"
)

// waitFor polls cond until it holds or the deadline expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, desc string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func newTestDispatcher(t *testing.T, eng *Engine, opts ...DispatcherOption) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(eng, opts...)
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestDispatcher_SubmitSettles(t *testing.T) {
	d := newTestDispatcher(t, NewDefaultEngine())
	d.Start(context.Background())

	if got := d.Snapshot(); got.State != session.StateIdle || !got.CanSend {
		t.Fatalf("initial snapshot = %+v, want idle and sendable", got)
	}

	text, err := d.SubmitWait(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("SubmitWait() error = %v", err)
	}
	if text != "You said: Hello" {
		t.Errorf("response = %q, want %q", text, "You said: Hello")
	}

	snap := d.Snapshot()
	if snap.State != session.StateSettled {
		t.Errorf("State = %s, want %s", snap.State, session.StateSettled)
	}
	if snap.Display != "You said: Hello" {
		t.Errorf("Display = %q, want the settled response", snap.Display)
	}
	if !snap.CanSend {
		t.Error("CanSend = false after settling, want true")
	}
}

func TestDispatcher_ThinkingBlocksNewSubmissions(t *testing.T) {
	release := make(chan struct{})
	eng := NewEngine(EngineConfig{
		Responder: responder.Func(func(ctx context.Context, text string) (string, error) {
			<-release
			return "done: " + text, nil
		}),
	})
	d := newTestDispatcher(t, eng)
	d.Start(context.Background())

	result := make(chan SubmitResult, 1)
	go func() {
		text, err := d.SubmitWait(context.Background(), "first")
		result <- SubmitResult{Text: text, Err: err}
	}()

	waitFor(t, time.Second, func() bool {
		return d.Snapshot().State == session.StateThinking
	}, "thinking state")

	if d.Snapshot().CanSend {
		t.Error("CanSend = true while thinking, want false")
	}
	if _, err := d.SubmitWait(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent submit error = %v, want ErrBusy", err)
	}

	close(release)
	res := <-result
	if res.Err != nil {
		t.Fatalf("first submission failed: %v", res.Err)
	}
	if res.Text != "done: first" {
		t.Errorf("response = %q, want %q", res.Text, "done: first")
	}
}

func TestDispatcher_EmptySubmitRejectsWithoutEngine(t *testing.T) {
	invoked := false
	eng := NewEngine(EngineConfig{
		Responder: responder.Func(func(_ context.Context, text string) (string, error) {
			invoked = true
			return text, nil
		}),
	})
	d := newTestDispatcher(t, eng)
	d.Start(context.Background())

	_, err := d.SubmitWait(context.Background(), "   ")
	rej, ok := AsRejection(err)
	if !ok {
		t.Fatalf("SubmitWait() error = %v, want a rejection", err)
	}
	if rej.Kind != message.KindEmptyMessage {
		t.Errorf("Kind = %s, want %s", rej.Kind, message.KindEmptyMessage)
	}
	if invoked {
		t.Error("responder invoked for an empty submission")
	}

	snap := d.Snapshot()
	if snap.State != session.StateError {
		t.Errorf("State = %s, want %s", snap.State, session.StateError)
	}
	if snap.LastError == "" {
		t.Error("LastError is empty in the error state")
	}
}

func TestDispatcher_ErrorAutoDismisses(t *testing.T) {
	d := newTestDispatcher(t, NewDefaultEngine(), WithErrorTimeout(20*time.Millisecond))
	d.Start(context.Background())

	_, _ = d.SubmitWait(context.Background(), "")
	if d.Snapshot().State != session.StateError {
		t.Fatalf("State = %s, want %s", d.Snapshot().State, session.StateError)
	}

	waitFor(t, time.Second, func() bool {
		snap := d.Snapshot()
		return snap.State == session.StateIdle && snap.LastError == ""
	}, "error auto-dismissal")
}

func TestDispatcher_ClearDismissesError(t *testing.T) {
	// A long timeout keeps the timer out of the picture.
	d := newTestDispatcher(t, NewDefaultEngine(), WithErrorTimeout(time.Hour))
	d.Start(context.Background())

	_, _ = d.SubmitWait(context.Background(), "")
	d.Clear()

	waitFor(t, time.Second, func() bool {
		snap := d.Snapshot()
		return snap.State == session.StateIdle && snap.LastError == ""
	}, "explicit error dismissal")
}

func TestDispatcher_NewSubmissionSupersedesError(t *testing.T) {
	d := newTestDispatcher(t, NewDefaultEngine(), WithErrorTimeout(time.Hour))
	d.Start(context.Background())

	_, _ = d.SubmitWait(context.Background(), "")
	if d.Snapshot().State != session.StateError {
		t.Fatal("expected error state after empty submission")
	}

	text, err := d.SubmitWait(context.Background(), "recovered")
	if err != nil {
		t.Fatalf("SubmitWait() after error = %v", err)
	}
	if text != "You said: recovered" {
		t.Errorf("response = %q, want %q", text, "You said: recovered")
	}

	snap := d.Snapshot()
	if snap.State != session.StateSettled || snap.LastError != "" {
		t.Errorf("snapshot = %+v, want settled with no error", snap)
	}
}

func TestDispatcher_ResetRestoresPrompt(t *testing.T) {
	d := newTestDispatcher(t, NewDefaultEngine())
	d.Start(context.Background())

	if _, err := d.SubmitWait(context.Background(), "Hello"); err != nil {
		t.Fatalf("SubmitWait() error = %v", err)
	}
	d.Reset()

	waitFor(t, time.Second, func() bool {
		snap := d.Snapshot()
		return snap.State == session.StateIdle && snap.Display == session.DefaultPrompt
	}, "reset to the default prompt")
}

func TestDispatcher_StaleCompletionDropped(t *testing.T) {
	eng := NewDefaultEngine()
	d := newTestDispatcher(t, eng)
	d.Start(context.Background())

	if _, err := d.SubmitWait(context.Background(), "current"); err != nil {
		t.Fatalf("SubmitWait() error = %v", err)
	}
	applied := d.Snapshot().AppliedSeq

	// A completion carrying an already-applied sequence must be released
	// and must not disturb the settled session.
	env := eng.Process(context.Background(), []byte("stale"))
	reply := make(chan SubmitResult, 1)
	d.post(completionMsg{seq: applied, env: env, reply: reply})

	res := <-reply
	if !errors.Is(res.Err, ErrSuperseded) {
		t.Errorf("stale completion error = %v, want ErrSuperseded", res.Err)
	}
	waitFor(t, time.Second, func() bool { return env.Released() }, "stale envelope release")

	snap := d.Snapshot()
	if snap.Display != "You said: current" {
		t.Errorf("Display = %q, stale completion must not change it", snap.Display)
	}
	if got := eng.LiveEnvelopes(); got != 0 {
		t.Errorf("LiveEnvelopes = %d, want 0", got)
	}
}

func TestDispatcher_CompletionOutsideThinkingDropped(t *testing.T) {
	eng := NewDefaultEngine()
	d := newTestDispatcher(t, eng)
	d.Start(context.Background())

	// Idle session, never submitted: a completion with a fresh sequence
	// still has nothing to apply to.
	env := eng.Process(context.Background(), []byte("orphan"))
	d.post(completionMsg{seq: 99, env: env})

	waitFor(t, time.Second, func() bool { return env.Released() }, "orphan envelope release")
	if got := d.Snapshot().State; got != session.StateIdle {
		t.Errorf("State = %s, want %s", got, session.StateIdle)
	}
}

func TestDispatcher_DraftDebounceCollapsesEdits(t *testing.T) {
	checked := make(chan string, 16)
	d := newTestDispatcher(t, NewDefaultEngine(), WithDebounce(30*time.Millisecond))
	d.validateFn = func(raw []byte) message.Kind {
		checked <- string(raw)
		return message.Validate(raw)
	}
	d.Start(context.Background())

	for _, text := range []string{"H", "He", "Hel", "Hell", "Hello"} {
		d.EditDraft(text)
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case got := <-checked:
		if got != "Hello" {
			t.Errorf("validated draft = %q, want only the final text %q", got, "Hello")
		}
	case <-time.After(time.Second):
		t.Fatal("debounced validation never fired")
	}

	select {
	case got := <-checked:
		t.Errorf("extra validation of %q; rapid edits must collapse to one check", got)
	case <-time.After(100 * time.Millisecond):
	}

	waitFor(t, time.Second, func() bool {
		snap := d.Snapshot()
		return snap.DraftSeq > 0 && snap.DraftCode == message.KindNone.Code()
	}, "draft outcome recorded")
}

func TestDispatcher_SlowDraftCheckNeverClobbersNewer(t *testing.T) {
	slowStarted := make(chan struct{})
	slowRelease := make(chan struct{})

	d := newTestDispatcher(t, NewDefaultEngine(), WithDebounce(0))
	d.validateFn = func(raw []byte) message.Kind {
		if string(raw) == "slow" {
			close(slowStarted)
			<-slowRelease
			return message.KindEmptyMessage
		}
		return message.KindNone
	}
	d.Start(context.Background())

	// First check hangs in flight; a newer edit completes ahead of it.
	d.EditDraft("slow")
	<-slowStarted
	d.EditDraft("fast")

	waitFor(t, time.Second, func() bool {
		return d.Snapshot().DraftSeq == 2
	}, "newer draft outcome applied")

	close(slowRelease)
	time.Sleep(20 * time.Millisecond)

	snap := d.Snapshot()
	if snap.DraftSeq != 2 {
		t.Errorf("DraftSeq = %d, stale check must not overwrite seq 2", snap.DraftSeq)
	}
	if snap.DraftCode != message.KindNone.Code() {
		t.Errorf("DraftCode = %d, want %d from the newer check", snap.DraftCode, message.KindNone.Code())
	}
}

func TestDispatcher_PublishesSessionEvents(t *testing.T) {
	store := infraevent.NewMemoryStore()
	d := newTestDispatcher(t, NewDefaultEngine(), WithPublisher(infraevent.NewPublisher(store)))
	d.Start(context.Background())

	if _, err := d.SubmitWait(context.Background(), "Hello"); err != nil {
		t.Fatalf("SubmitWait() error = %v", err)
	}

	events, err := store.List(context.Background(), d.SessionID())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	seen := make(map[event.Type]int)
	for _, e := range events {
		seen[e.Type]++
	}
	for _, want := range []event.Type{event.TypeSubmitted, event.TypeStateChanged, event.TypeSettled} {
		if seen[want] == 0 {
			t.Errorf("no %s event recorded; got %v", want, seen)
		}
	}
	// idle -> validating -> thinking -> settled
	if seen[event.TypeStateChanged] != 3 {
		t.Errorf("StateChanged count = %d, want 3", seen[event.TypeStateChanged])
	}

	var sub event.SubmittedPayload
	for _, e := range events {
		if e.Type == event.TypeSubmitted {
			if err := e.UnmarshalPayload(&sub); err != nil {
				t.Fatalf("UnmarshalPayload() error = %v", err)
			}
			if sub.Length != len("Hello") {
				t.Errorf("submitted Length = %d, want %d", sub.Length, len("Hello"))
			}
		}
	}
}

func TestDispatcher_CloseReleasesInFlightCompletion(t *testing.T) {
	// A completion can race Close and land in the message buffer after the
	// loop has exited; Close must still release its envelope. The gate holds
	// the responder until Close has begun, so the completion always arrives
	// with the loop gone; several rounds cover both arms of the delivery
	// race.
	for i := 0; i < 20; i++ {
		gate := make(chan struct{})
		eng := NewEngine(EngineConfig{
			Responder: responder.Func(func(_ context.Context, text string) (string, error) {
				<-gate
				return "late: " + text, nil
			}),
		})
		d, err := NewDispatcher(eng)
		if err != nil {
			t.Fatalf("NewDispatcher() error = %v", err)
		}
		d.Start(context.Background())

		d.Submit("racer")
		waitFor(t, time.Second, func() bool {
			return d.Snapshot().State == session.StateThinking
		}, "thinking state")

		closed := make(chan struct{})
		go func() {
			d.Close()
			close(closed)
		}()
		waitFor(t, time.Second, func() bool {
			select {
			case <-d.done:
				return true
			default:
				return false
			}
		}, "close initiated")

		close(gate)
		<-closed

		if got := eng.LiveEnvelopes(); got != 0 {
			t.Fatalf("LiveEnvelopes = %d after Close, envelope leaked", got)
		}
	}
}

func TestDispatcher_CloseAnswersWaitingCaller(t *testing.T) {
	gate := make(chan struct{})
	eng := NewEngine(EngineConfig{
		Responder: responder.Func(func(_ context.Context, text string) (string, error) {
			<-gate
			return text, nil
		}),
	})
	d, err := NewDispatcher(eng)
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	d.Start(context.Background())

	result := make(chan error, 1)
	go func() {
		_, err := d.SubmitWait(context.Background(), "abandoned")
		result <- err
	}()
	waitFor(t, time.Second, func() bool {
		return d.Snapshot().State == session.StateThinking
	}, "thinking state")

	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()
	waitFor(t, time.Second, func() bool {
		select {
		case <-d.done:
			return true
		default:
			return false
		}
	}, "close initiated")

	close(gate)
	<-closed

	if err := <-result; !errors.Is(err, ErrClosed) {
		t.Errorf("SubmitWait() during Close = %v, want ErrClosed", err)
	}
	if got := eng.LiveEnvelopes(); got != 0 {
		t.Errorf("LiveEnvelopes = %d after Close, want 0", got)
	}
}

func TestDispatcher_CloseRejectsSubmissions(t *testing.T) {
	d, err := NewDispatcher(NewDefaultEngine())
	if err != nil {
		t.Fatalf("NewDispatcher() error = %v", err)
	}
	d.Start(context.Background())
	d.Close()

	if _, err := d.SubmitWait(context.Background(), "late"); !errors.Is(err, ErrClosed) {
		t.Errorf("SubmitWait() after Close = %v, want ErrClosed", err)
	}
}
