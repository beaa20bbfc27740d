// Package relay describes the result of relaying one webhook event.
package relay

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies an outcome.
type Kind string

const (
	KindSent    Kind = "sent"
	KindIgnored Kind = "ignored"
	KindFailed  Kind = "failed"
)

// Outcome records what happened to one inbound event. It is broadcast to
// live-feed clients and published to the message queue, never stored.
type Outcome struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	TaskID    string    `json:"task_id"`
	EventType string    `json:"event_type"`
	FolderID  string    `json:"folder_id,omitempty"`
	RoomID    string    `json:"room_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// NewOutcome stamps a fresh outcome id and time.
func NewOutcome(kind Kind, taskID, eventType string) Outcome {
	return Outcome{
		ID:        uuid.NewString(),
		Kind:      kind,
		TaskID:    taskID,
		EventType: eventType,
		At:        time.Now().UTC(),
	}
}
