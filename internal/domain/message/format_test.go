package message

import (
	"strings"
	"testing"

	"github.com/Strob0t/TaskRelay/internal/domain/room"
	"github.com/Strob0t/TaskRelay/internal/domain/task"
)

var testFields = Fields{
	TaskType:   "CF-TYPE",
	Priority:   "CF-PRIO",
	Technology: "CF-TECH",
	Customer:   "CF-CUST",
}

func newTask(fields ...task.CustomField) *task.Task {
	return &task.Task{
		ID:           "IEAB1",
		Title:        "Replace core switch",
		Status:       "Active",
		ParentIDs:    []string{"F-OPS", "F-CUST"},
		CustomFields: fields,
	}
}

func TestPriorityLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"High", "🔴 High"},
		{"Medium", "🟠 Medium"},
		{"Low", "🟢 Low"},
		{"Urgent", "Urgent"},
		{"", "(None)"},
	}
	for _, tt := range tests {
		if got := PriorityLabel(tt.in); got != tt.want {
			t.Errorf("PriorityLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPriority(t *testing.T) {
	opts := Options{Fields: testFields}

	medium := Format(Input{Task: newTask(task.CustomField{ID: "CF-PRIO", Value: "Medium"})}, opts)
	if !strings.Contains(medium, "• Priority: 🟠 Medium\n") {
		t.Errorf("expected medium marker, got:\n%s", medium)
	}

	urgent := Format(Input{Task: newTask(task.CustomField{ID: "CF-PRIO", Value: "Urgent"})}, opts)
	if !strings.Contains(urgent, "• Priority: Urgent\n") {
		t.Errorf("expected literal Urgent, got:\n%s", urgent)
	}

	none := Format(Input{Task: newTask()}, opts)
	if !strings.Contains(none, "• Priority: (None)\n") {
		t.Errorf("expected (None), got:\n%s", none)
	}
}

func TestFormatAssignees(t *testing.T) {
	out := Format(Input{Task: newTask()}, Options{})
	if !strings.Contains(out, "• Assignees: (Unassigned)\n") {
		t.Errorf("expected unassigned placeholder, got:\n%s", out)
	}

	out = Format(Input{Task: newTask(), Assignees: []string{"Ada Lovelace", "Alan Turing"}}, Options{})
	if !strings.Contains(out, "• Assignees: Ada Lovelace, Alan Turing\n") {
		t.Errorf("expected joined names, got:\n%s", out)
	}
}

func TestFormatCustomerGate(t *testing.T) {
	tk := newTask(task.CustomField{ID: "CF-CUST", Value: "Acme Corp"})

	enabled := Options{Fields: testFields, CustomerFolders: map[string]struct{}{"F-CUST": {}}}
	if out := Format(Input{Task: tk}, enabled); !strings.Contains(out, "• Customer: Acme Corp\n") {
		t.Errorf("expected customer line, got:\n%s", out)
	}

	disabled := Options{Fields: testFields, CustomerFolders: map[string]struct{}{"F-ELSEWHERE": {}}}
	if out := Format(Input{Task: tk}, disabled); strings.Contains(out, "Customer") {
		t.Errorf("customer line must be omitted, got:\n%s", out)
	}

	noValue := Format(Input{Task: newTask()}, enabled)
	if strings.Contains(noValue, "Customer") {
		t.Errorf("customer line must be omitted without a value, got:\n%s", noValue)
	}
}

func TestFormatLayout(t *testing.T) {
	tk := newTask(
		task.CustomField{ID: "CF-TYPE", Value: "Bug"},
		task.CustomField{ID: "CF-TECH", Value: "Networking"},
	)
	out := Format(Input{
		Task:      tk,
		EventType: "TaskStatusChanged",
		Entry:     room.Entry{RoomID: "r1", RoomDescription: "NOC", ProjectDescription: "Datacenter"},
		Assignees: []string{"Ada Lovelace"},
	}, Options{Fields: testFields, PermalinkBase: "https://www.wrike.com/open.htm?id="})

	want := "📢 **Update for Datacenter**\n" +
		"💬 Room: NOC\n\n" +
		"📝 **Bug: Replace core switch**\n" +
		"• Event: TaskStatusChanged\n" +
		"• Status: Active\n" +
		"• Priority: (None)\n" +
		"• Assignees: Ada Lovelace\n" +
		"• Technology: Networking\n" +
		"\n🔗 [Open in Wrike](https://www.wrike.com/open.htm?id=IEAB1)"
	if out != want {
		t.Fatalf("unexpected message:\n%s\n--- want ---\n%s", out, want)
	}
}

func TestFormatDefaults(t *testing.T) {
	tk := &task.Task{ID: "X1", Permalink: "https://www.wrike.com/open.htm?id=99"}
	out := Format(Input{Task: tk, EventType: "TaskCreated"}, Options{})

	for _, want := range []string{
		"Update for Unnamed Project",
		"Room: Unnamed Room",
		"**Task: **",
		"• Status: (Unknown)",
		"• Technology: (None)",
		"(https://www.wrike.com/open.htm?id=99)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}
