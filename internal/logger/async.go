package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Closer flushes and stops a logger's handler.
type Closer interface {
	Close()
}

type nopCloser struct{}

func (nopCloser) Close() {}

// queued pairs a record with the handler chain that must write it, so
// records logged through With/WithGroup children keep their attributes.
type queued struct {
	h   slog.Handler
	ctx context.Context
	rec slog.Record
}

// asyncQueue is shared by an AsyncHandler and all of its children.
type asyncQueue struct {
	ch      chan queued
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Int64
}

// AsyncHandler hands records to a fixed set of writer goroutines through
// a bounded buffer. A full buffer drops the record and counts it.
type AsyncHandler struct {
	inner slog.Handler
	q     *asyncQueue
}

// NewAsyncHandler creates an AsyncHandler with the given buffer size and worker count.
func NewAsyncHandler(inner slog.Handler, bufSize, workers int) *AsyncHandler {
	q := &asyncQueue{ch: make(chan queued, bufSize)}
	for range max(workers, 1) {
		q.wg.Add(1)
		go q.drain()
	}
	return &AsyncHandler{inner: inner, q: q}
}

func (q *asyncQueue) drain() {
	defer q.wg.Done()
	for item := range q.ch {
		_ = item.h.Handle(item.ctx, item.rec)
	}
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record. The context is detached from cancellation
// but keeps its values, so request ids still reach the writer.
func (h *AsyncHandler) Handle(ctx context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	item := queued{h: h.inner, ctx: context.WithoutCancel(ctx), rec: rec.Clone()}
	select {
	case h.q.ch <- item:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a child sharing the same queue.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithAttrs(attrs), q: h.q}
}

// WithGroup returns a child sharing the same queue.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithGroup(name), q: h.q}
}

// DroppedCount returns the number of records dropped on a full buffer.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.q.dropped.Load()
}

// Close stops accepting records and waits for the buffer to drain.
// It is safe to call more than once. Logging after Close panics.
func (h *AsyncHandler) Close() {
	h.q.once.Do(func() {
		close(h.q.ch)
		h.q.wg.Wait()
	})
}
