// Package webhook defines the inbound Wrike webhook event model.
package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultEventType is assumed when a notification omits its eventType.
const DefaultEventType = "TaskUpdated"

// HeaderHookSecret carries the verification token during webhook registration.
const HeaderHookSecret = "X-Hook-Secret"

var (
	// ErrNotList is returned when the payload is not a JSON array.
	ErrNotList = errors.New("payload is not a list of events")
	// ErrEmpty is returned when the payload is an empty array.
	ErrEmpty = errors.New("payload contains no events")
	// ErrMissingTaskID is returned when the first event carries no task id.
	ErrMissingTaskID = errors.New("taskId is required")
)

// Event is a single Wrike webhook notification.
type Event struct {
	TaskID          string `json:"taskId"`
	EventType       string `json:"eventType"`
	WebhookID       string `json:"webhookId,omitempty"`
	EventAuthorID   string `json:"eventAuthorId,omitempty"`
	LastUpdatedDate string `json:"lastUpdatedDate,omitempty"`
}

// ParseFirst decodes a webhook body and returns its first event with
// defaults applied. Remaining events in the list are not inspected.
func ParseFirst(body []byte) (Event, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return Event{}, ErrNotList
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrNotList, err)
	}
	if len(raw) == 0 {
		return Event{}, ErrEmpty
	}

	var ev Event
	if err := json.Unmarshal(raw[0], &ev); err != nil {
		return Event{}, fmt.Errorf("parse event: %w", err)
	}
	if ev.EventType == "" {
		ev.EventType = DefaultEventType
	}
	if ev.TaskID == "" {
		return ev, ErrMissingTaskID
	}
	return ev, nil
}
