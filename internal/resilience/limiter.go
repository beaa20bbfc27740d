package resilience

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter caps concurrent calls to an upstream API.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter creates a Limiter allowing at most limit concurrent calls.
// A limit below 1 yields a nil Limiter, which does not limit.
func NewLimiter(limit int) *Limiter {
	if limit < 1 {
		return nil
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(limit))}
}

// Run acquires a slot, runs fn, and releases the slot. It returns ctx.Err()
// if ctx ends while waiting.
func (l *Limiter) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if l == nil {
		return fn(ctx)
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)
	return fn(ctx)
}
