// Package resilience provides reliability patterns for outbound API calls.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the circuit breaker is open and rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the externally visible breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Breaker fails fast after maxFailures consecutive failures. After timeout
// a single probe call is let through; its result closes or reopens the
// circuit. Calls are never retried.
type Breaker struct {
	name        string
	mu          sync.Mutex
	state       State
	failures    int
	probing     bool
	maxFailures int
	timeout     time.Duration
	openedAt    time.Time
	isFailure   func(error) bool
	onChange    func(name string, from, to State)
	now         func() time.Time // for testing
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureFilter sets the predicate deciding which errors count toward
// tripping. Errors it rejects are returned but leave the breaker untouched.
func WithFailureFilter(fn func(error) bool) Option {
	return func(b *Breaker) { b.isFailure = fn }
}

// WithStateChange registers a callback invoked on every transition. It runs
// with the breaker lock held and must not call back into the breaker.
func WithStateChange(fn func(name string, from, to State)) Option {
	return func(b *Breaker) { b.onChange = fn }
}

// NewBreaker creates a named circuit breaker.
func NewBreaker(name string, maxFailures int, timeout time.Duration, opts ...Option) *Breaker {
	b := &Breaker{
		name:        name,
		state:       StateClosed,
		maxFailures: max(maxFailures, 1),
		timeout:     timeout,
		isFailure:   defaultIsFailure,
		now:         time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// defaultIsFailure ignores caller cancellation.
func defaultIsFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// Name returns the breaker name.
func (b *Breaker) Name() string { return b.name }

// State reports the current state, promoting open to half-open once the
// timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.timeout {
		return StateHalfOpen
	}
	return b.state
}

// Execute runs fn unless the circuit is open.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	probe, ok := b.allowRequest()
	if !ok {
		return ErrCircuitOpen
	}

	err := fn(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if probe {
		b.probing = false
	}

	switch {
	case err == nil:
		b.onSuccess()
	case b.isFailure(err):
		b.onFailure()
	}
	return err
}

func (b *Breaker) allowRequest() (probe, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return false, true
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.timeout {
			return false, false
		}
		b.transition(StateHalfOpen)
		b.probing = true
		return true, true
	case StateHalfOpen:
		if b.probing {
			return false, false
		}
		b.probing = true
		return true, true
	}
	return false, false
}

// onFailure must be called with b.mu held.
func (b *Breaker) onFailure() {
	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.maxFailures {
		b.openedAt = b.now()
		b.transition(StateOpen)
	}
}

// onSuccess must be called with b.mu held.
func (b *Breaker) onSuccess() {
	b.failures = 0
	b.transition(StateClosed)
}

// transition must be called with b.mu held.
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}
