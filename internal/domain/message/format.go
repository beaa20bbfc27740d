// Package message renders Wrike task notifications as Webex markdown.
package message

import (
	"fmt"
	"strings"

	"github.com/Strob0t/TaskRelay/internal/domain/room"
	"github.com/Strob0t/TaskRelay/internal/domain/task"
)

const (
	// NoneLabel is rendered for optional fields without a value.
	NoneLabel = "(None)"
	// UnassignedLabel is rendered when a task has no assignees.
	UnassignedLabel = "(Unassigned)"

	defaultTaskType = "Task"
	unknownStatus   = "(Unknown)"
)

var priorityLabels = map[string]string{
	"High":   "🔴 High",
	"Medium": "🟠 Medium",
	"Low":    "🟢 Low",
}

// Fields names the custom-field ids rendered in the message.
type Fields struct {
	TaskType   string
	Priority   string
	Technology string
	Customer   string
}

// Options configures rendering. The zero value renders no custom fields.
type Options struct {
	Fields          Fields
	CustomerFolders map[string]struct{}
	PermalinkBase   string
}

// Input is everything needed to render one notification.
type Input struct {
	Task      *task.Task
	EventType string
	Entry     room.Entry
	Assignees []string
}

// PriorityLabel maps a priority value through the fixed marker table.
// Unknown values are returned unchanged; an empty value renders NoneLabel.
func PriorityLabel(value string) string {
	if value == "" {
		return NoneLabel
	}
	if label, ok := priorityLabels[value]; ok {
		return label
	}
	return value
}

// Format builds the markdown body for in.
func Format(in Input, opts Options) string {
	t := in.Task
	if t == nil {
		t = &task.Task{}
	}

	status := t.Status
	if status == "" {
		status = unknownStatus
	}

	assignees := UnassignedLabel
	if len(in.Assignees) > 0 {
		assignees = strings.Join(in.Assignees, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📢 **Update for %s**\n", in.Entry.ProjectLabel())
	fmt.Fprintf(&b, "💬 Room: %s\n\n", in.Entry.RoomLabel())
	fmt.Fprintf(&b, "📝 **%s: %s**\n", t.FieldValue(opts.Fields.TaskType, defaultTaskType), t.Title)
	fmt.Fprintf(&b, "• Event: %s\n", in.EventType)
	fmt.Fprintf(&b, "• Status: %s\n", status)
	fmt.Fprintf(&b, "• Priority: %s\n", PriorityLabel(t.FieldValue(opts.Fields.Priority, "")))
	fmt.Fprintf(&b, "• Assignees: %s\n", assignees)
	fmt.Fprintf(&b, "• Technology: %s\n", t.FieldValue(opts.Fields.Technology, NoneLabel))

	if t.InAnyFolder(opts.CustomerFolders) {
		if customer := t.FieldValue(opts.Fields.Customer, ""); customer != "" {
			fmt.Fprintf(&b, "• Customer: %s\n", customer)
		}
	}

	fmt.Fprintf(&b, "\n🔗 [Open in Wrike](%s)", t.Link(opts.PermalinkBase))
	return b.String()
}
