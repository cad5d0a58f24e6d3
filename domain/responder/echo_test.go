package responder

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestEcho_Respond(t *testing.T) {
	e := NewEcho()

	got, err := e.Respond(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if got != "You said: hi" {
		t.Errorf("Respond() = %q, want %q", got, "You said: hi")
	}
}

func TestEcho_RespondTooLong(t *testing.T) {
	e := NewEcho()

	// Exactly at the budget is fine.
	at := strings.Repeat("a", DefaultMaxChars)
	if _, err := e.Respond(context.Background(), at); err != nil {
		t.Errorf("Respond(%d chars) error = %v, want nil", DefaultMaxChars, err)
	}

	// One over fails.
	over := strings.Repeat("a", DefaultMaxChars+1)
	_, err := e.Respond(context.Background(), over)
	if !errors.Is(err, ErrTooLong) {
		t.Errorf("Respond(%d chars) error = %v, want ErrTooLong", DefaultMaxChars+1, err)
	}
}

func TestEcho_BudgetCountsRunesNotBytes(t *testing.T) {
	e := NewEcho(WithMaxChars(3))

	// Three multibyte runes fit a three-rune budget.
	if _, err := e.Respond(context.Background(), "世界話"); err != nil {
		t.Errorf("Respond(3 runes) error = %v, want nil", err)
	}
	if _, err := e.Respond(context.Background(), "世界話す"); !errors.Is(err, ErrTooLong) {
		t.Errorf("Respond(4 runes) error = %v, want ErrTooLong", err)
	}
}

func TestEcho_Options(t *testing.T) {
	e := NewEcho(WithPrefix("echo> "), WithMaxChars(0))

	long := strings.Repeat("a", DefaultMaxChars*2)
	got, err := e.Respond(context.Background(), long)
	if err != nil {
		t.Fatalf("Respond() error = %v with limit disabled", err)
	}
	if !strings.HasPrefix(got, "echo> ") {
		t.Errorf("Respond() = %q, want custom prefix", got[:10])
	}
}

func TestFunc_Adapts(t *testing.T) {
	r := Func(func(_ context.Context, text string) (string, error) {
		return "fn:" + text, nil
	})

	got, err := r.Respond(context.Background(), "x")
	if err != nil || got != "fn:x" {
		t.Errorf("Respond() = %q, %v", got, err)
	}
}
