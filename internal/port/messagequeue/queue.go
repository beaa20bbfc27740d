// Package messagequeue defines the outbound message queue port.
package messagequeue

import "context"

// Publisher sends messages to subjects. Publishing is fire-and-forget:
// a failed publish never changes a relay's result.
type Publisher interface {
	// Publish sends data to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Drain flushes pending messages and closes the connection.
	Drain() error

	// IsConnected reports whether the queue is currently connected.
	IsConnected() bool
}

// DefaultSubjectPrefix is prepended to outcome subjects.
const DefaultSubjectPrefix = "taskrelay.relay"

// HeaderRequestID carries the originating request id on published messages.
const HeaderRequestID = "X-Request-ID"

// OutcomeSubject returns "<prefix>.<kind>".
func OutcomeSubject(prefix, kind string) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + "." + kind
}
