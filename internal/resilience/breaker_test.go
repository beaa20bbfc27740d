package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Strob0t/TaskRelay/internal/domain"
)

var errTest = errors.New("service unavailable")

func failCall(context.Context) error { return errTest }
func okCall(context.Context) error { return nil }

func TestClosedStateAllowsCalls(t *testing.T) {
	b := NewBreaker("wrike", 3, time.Second)
	called := false
	err := b.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !called {
		t.Fatal("expected fn to be called")
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed, got %s", b.State())
	}
}

func TestOpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker("webex", 3, time.Second)
	ctx := context.Background()

	for range 3 {
		_ = b.Execute(ctx, failCall)
	}

	err := b.Execute(ctx, okCall)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %s", b.State())
	}
}

func TestTransitionsToHalfOpenAfterTimeout(t *testing.T) {
	now := time.Now()
	b := NewBreaker("wrike", 2, time.Second)
	b.now = func() time.Time { return now }
	ctx := context.Background()

	for range 2 {
		_ = b.Execute(ctx, failCall)
	}

	if err := b.Execute(ctx, okCall); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	now = now.Add(2 * time.Second)
	if b.State() != StateHalfOpen {
		t.Fatalf("expected half-open after timeout, got %s", b.State())
	}

	called := false
	err := b.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error in half-open, got %v", err)
	}
	if !called {
		t.Fatal("expected fn to be called in half-open")
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed after half-open success, got %s", b.State())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker("wrike", 2, time.Second)
	b.now = func() time.Time { return now }
	ctx := context.Background()

	for range 2 {
		_ = b.Execute(ctx, failCall)
	}
	now = now.Add(2 * time.Second)

	_ = b.Execute(ctx, failCall)
	if b.State() != StateOpen {
		t.Fatalf("expected open after half-open failure, got %s", b.State())
	}
	if err := b.Execute(ctx, okCall); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen after reopen, got %v", err)
	}
}

func TestHalfOpenAllowsSingleProbe(t *testing.T) {
	now := time.Now()
	b := NewBreaker("webex", 1, time.Second)
	b.now = func() time.Time { return now }
	ctx := context.Background()

	_ = b.Execute(ctx, failCall)
	now = now.Add(2 * time.Second)

	release := make(chan struct{})
	done := make(chan error, 1)
	started := make(chan struct{})
	go func() {
		done <- b.Execute(ctx, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	if err := b.Execute(ctx, okCall); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second call rejected while probing, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed after probe, got %s", b.State())
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker("wrike", 3, time.Second)
	ctx := context.Background()

	_ = b.Execute(ctx, failCall)
	_ = b.Execute(ctx, failCall)
	_ = b.Execute(ctx, okCall)
	_ = b.Execute(ctx, failCall)
	_ = b.Execute(ctx, failCall)

	if err := b.Execute(ctx, okCall); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestFailureFilter(t *testing.T) {
	b := NewBreaker("wrike", 1, time.Second, WithFailureFilter(func(err error) bool {
		return !errors.Is(err, domain.ErrNotFound)
	}))
	ctx := context.Background()

	notFound := fmt.Errorf("task T1: %w", domain.ErrNotFound)
	for range 3 {
		if err := b.Execute(ctx, func(context.Context) error { return notFound }); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound passed through, got %v", err)
		}
	}
	if b.State() != StateClosed {
		t.Fatalf("filtered errors must not trip the breaker, got %s", b.State())
	}
}

func TestCanceledDoesNotTrip(t *testing.T) {
	b := NewBreaker("webex", 1, time.Second)
	_ = b.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	if b.State() != StateClosed {
		t.Fatalf("expected closed after cancellation, got %s", b.State())
	}
}

func TestStateChangeCallback(t *testing.T) {
	var transitions []string
	b := NewBreaker("webex", 1, time.Second, WithStateChange(func(name string, from, to State) {
		transitions = append(transitions, fmt.Sprintf("%s:%s->%s", name, from, to))
	}))

	_ = b.Execute(context.Background(), failCall)

	if len(transitions) != 1 || transitions[0] != "webex:closed->open" {
		t.Fatalf("unexpected transitions %v", transitions)
	}
	if b.Name() != "webex" {
		t.Errorf("unexpected name %q", b.Name())
	}
}
