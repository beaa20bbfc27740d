package relay

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewOutcome(t *testing.T) {
	a := NewOutcome(KindSent, "T1", "TaskCreated")
	b := NewOutcome(KindSent, "T1", "TaskCreated")

	if _, err := uuid.Parse(a.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", a.ID)
	}
	if a.ID == b.ID {
		t.Error("expected distinct ids per outcome")
	}
	if a.Kind != KindSent || a.TaskID != "T1" || a.EventType != "TaskCreated" {
		t.Errorf("unexpected outcome %+v", a)
	}
	if a.At.IsZero() {
		t.Error("expected timestamp")
	}
}
