package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lindoshq/lindos-go/domain/message"
	"github.com/lindoshq/lindos-go/domain/responder"
	"github.com/lindoshq/lindos-go/infrastructure/logging"
)

func TestEngine_ValidateAndProcessAgree(t *testing.T) {
	ctx := context.Background()

	// The budget-ignorant engine matters: the budget must be enforced by the
	// shared validation path, not by a cooperating responder.
	engines := map[string]*Engine{
		"default echo": NewDefaultEngine(),
		"budget-ignorant responder": NewEngine(EngineConfig{
			MaxChars: responder.DefaultMaxChars,
			Responder: responder.Func(func(_ context.Context, text string) (string, error) {
				return text, nil
			}),
		}),
	}

	tests := []struct {
		name string
		raw  []byte
	}{
		{"nil", nil},
		{"invalid utf8", []byte{0xff, 0xfe}},
		{"empty", []byte("")},
		{"whitespace", []byte("   \n\t")},
		{"valid", []byte("Hello")},
		{"over budget", []byte(strings.Repeat("a", responder.DefaultMaxChars+1))},
	}

	for engName, eng := range engines {
		for _, tt := range tests {
			t.Run(engName+"/"+tt.name, func(t *testing.T) {
				preCheck := eng.Validate(tt.raw)

				env := eng.Process(ctx, tt.raw)
				defer env.Release()

				if preCheck != env.Kind() {
					t.Errorf("Validate = %s but Process = %s; pre-check and engine must agree",
						preCheck, env.Kind())
				}
			})
		}
	}
}

func TestEngine_BudgetEnforcedBeforeResponder(t *testing.T) {
	invoked := false
	eng := NewEngine(EngineConfig{
		MaxChars: 10,
		Responder: responder.Func(func(_ context.Context, text string) (string, error) {
			invoked = true
			return text, nil
		}),
	})

	raw := []byte(strings.Repeat("x", 11))
	if got := eng.Validate(raw); got != message.KindProcessingFailure {
		t.Errorf("Validate = %s, want %s", got, message.KindProcessingFailure)
	}

	env := eng.Process(context.Background(), raw)
	defer env.Release()

	if env.Kind() != message.KindProcessingFailure {
		t.Errorf("Process = %s, want %s", env.Kind(), message.KindProcessingFailure)
	}
	if invoked {
		t.Error("responder invoked for over-budget input")
	}
}

func TestEngine_ProcessSuccess(t *testing.T) {
	eng := NewDefaultEngine()

	env := eng.Process(context.Background(), []byte("Hello"))
	defer env.Release()

	if !env.OK() {
		t.Fatalf("Process(valid) failed with %s", env.Kind())
	}
	if env.Payload() != "You said: Hello" {
		t.Errorf("Payload() = %q, want %q", env.Payload(), "You said: Hello")
	}
}

func TestEngine_ProcessNeverSucceedsEmpty(t *testing.T) {
	// A responder that yields no response must surface as a processing
	// failure, never as an empty success.
	eng := NewEngine(EngineConfig{
		Responder: responder.Func(func(_ context.Context, _ string) (string, error) {
			return "", nil
		}),
	})

	env := eng.Process(context.Background(), []byte("hi"))
	defer env.Release()

	if env.OK() {
		t.Fatal("Process returned success with empty payload")
	}
	if env.Kind() != message.KindProcessingFailure {
		t.Errorf("Kind() = %s, want %s", env.Kind(), message.KindProcessingFailure)
	}
}

func TestEngine_ProcessResponderError(t *testing.T) {
	eng := NewEngine(EngineConfig{
		Responder: responder.Func(func(_ context.Context, _ string) (string, error) {
			return "", errors.New("model fell over")
		}),
	})

	env := eng.Process(context.Background(), []byte("hi"))
	defer env.Release()

	if env.Kind() != message.KindProcessingFailure {
		t.Errorf("Kind() = %s, want %s", env.Kind(), message.KindProcessingFailure)
	}
	if env.Diagnostic() == "" {
		t.Error("Diagnostic() is empty, want the responder failure for logging")
	}
}

func TestEngine_ProcessResponderPanic(t *testing.T) {
	eng := NewEngine(EngineConfig{
		Responder: responder.Func(func(_ context.Context, _ string) (string, error) {
			panic("collaborator exploded")
		}),
	})

	env := eng.Process(context.Background(), []byte("hi"))
	defer env.Release()

	if env.Kind() != message.KindProcessingFailure {
		t.Errorf("Kind() = %s, want %s; a responder panic must not escape", env.Kind(), message.KindProcessingFailure)
	}
}

func TestEngine_ValidationFailureSkipsResponder(t *testing.T) {
	called := false
	eng := NewEngine(EngineConfig{
		Responder: responder.Func(func(_ context.Context, text string) (string, error) {
			called = true
			return text, nil
		}),
	})

	for _, raw := range [][]byte{nil, []byte(""), []byte("  "), {0xff}} {
		env := eng.Process(context.Background(), raw)
		env.Release()
	}

	if called {
		t.Error("responder invoked for invalid input")
	}
}

func TestEngine_LiveEnvelopeAccounting(t *testing.T) {
	eng := NewDefaultEngine()
	ctx := context.Background()

	if eng.LiveEnvelopes() != 0 {
		t.Fatalf("baseline LiveEnvelopes = %d, want 0", eng.LiveEnvelopes())
	}

	const n = 50
	envs := make([]*message.Envelope, 0, n)
	for i := 0; i < n; i++ {
		envs = append(envs, eng.Process(ctx, []byte("hello")))
	}
	if got := eng.LiveEnvelopes(); got != n {
		t.Errorf("LiveEnvelopes = %d with %d outstanding, want %d", got, n, n)
	}

	for _, env := range envs {
		env.Release()
	}
	if got := eng.LiveEnvelopes(); got != 0 {
		t.Errorf("LiveEnvelopes = %d after releasing all, want 0 (leak)", got)
	}
}

func TestEngine_WithResultReleasesOnPanic(t *testing.T) {
	eng := NewDefaultEngine()

	func() {
		defer func() { _ = recover() }()
		_ = eng.WithResult(context.Background(), []byte("hi"), func(_ *message.Envelope) error {
			panic("consumer failure")
		})
	}()

	if got := eng.LiveEnvelopes(); got != 0 {
		t.Errorf("LiveEnvelopes = %d after panicking consumer, want 0", got)
	}
}

func TestEngine_WithResultReleasesOnError(t *testing.T) {
	eng := NewDefaultEngine()

	wantErr := errors.New("consumer declined")
	err := eng.WithResult(context.Background(), []byte("hi"), func(env *message.Envelope) error {
		if !env.OK() {
			t.Errorf("unexpected failure envelope: %s", env.Kind())
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("WithResult() error = %v, want %v", err, wantErr)
	}

	if got := eng.LiveEnvelopes(); got != 0 {
		t.Errorf("LiveEnvelopes = %d, want 0", got)
	}
}

func TestEngine_ErrorMessage(t *testing.T) {
	eng := NewDefaultEngine()

	tests := []struct {
		code     int32
		contains string
	}{
		{1, "No message provided"},
		{2, "invalid characters"},
		{3, "empty"},
		{4, "Failed to process"},
		{9999, "9999"},
	}

	for _, tt := range tests {
		got := eng.ErrorMessage(tt.code)
		if got == "" {
			t.Errorf("ErrorMessage(%d) is empty", tt.code)
		}
		if !strings.Contains(got, tt.contains) {
			t.Errorf("ErrorMessage(%d) = %q, want substring %q", tt.code, got, tt.contains)
		}
	}
}

func TestEngine_DebugToggleDoesNotChangeResults(t *testing.T) {
	eng := NewDefaultEngine()
	ctx := context.Background()

	run := func() (message.Kind, string) {
		env := eng.Process(ctx, []byte("same input"))
		defer env.Release()
		return env.Kind(), env.Payload()
	}

	logging.SetDebug(true)
	kindOn, textOn := run()
	logging.SetDebug(false)
	kindOff, textOff := run()

	if kindOn != kindOff || textOn != textOff {
		t.Errorf("debug toggle changed results: (%s, %q) vs (%s, %q)",
			kindOn, textOn, kindOff, textOff)
	}
}

func TestEngine_ConcurrentProcess(t *testing.T) {
	eng := NewDefaultEngine()
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				env := eng.Process(ctx, []byte("concurrent message"))
				if !env.OK() {
					t.Errorf("Process failed: %s", env.Kind())
				}
				env.Release()
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if got := eng.LiveEnvelopes(); got != 0 {
		t.Errorf("LiveEnvelopes = %d after concurrent churn, want 0", got)
	}
}
