// Package notifier defines the message delivery port.
package notifier

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a notifier has no credentials.
var ErrNotConfigured = errors.New("notifier: not configured")

// Notification is one markdown message addressed to a room.
type Notification struct {
	RoomID   string `json:"roomId"`
	Markdown string `json:"markdown"`
}

// Notifier delivers notifications. Send makes exactly one attempt.
type Notifier interface {
	// Name returns the unique identifier for this notifier (e.g. "webex").
	Name() string

	// Send delivers a notification.
	Send(ctx context.Context, n Notification) error
}
