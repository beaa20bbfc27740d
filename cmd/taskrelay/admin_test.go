package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Strob0t/TaskRelay/internal/adapter/wrike"
	"github.com/Strob0t/TaskRelay/internal/domain/room"
)

func TestIsAdminCommand(t *testing.T) {
	for _, name := range []string{"rooms", "render", "register-webhook", "list-webhooks", "help"} {
		if !isAdminCommand(name) {
			t.Errorf("expected %q to be an admin command", name)
		}
	}
	for _, name := range []string{"serve", "--port", ""} {
		if isAdminCommand(name) {
			t.Errorf("did not expect %q to be an admin command", name)
		}
	}
}

func TestRunAdminUnknown(t *testing.T) {
	if err := runAdmin([]string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestRenderRequiresTask(t *testing.T) {
	err := runAdminRender(nil)
	if err == nil || !strings.Contains(err.Error(), "--task is required") {
		t.Fatalf("expected --task error, got %v", err)
	}
}

func TestRegisterWebhookRequiresURL(t *testing.T) {
	err := runAdminRegisterWebhook([]string{"--folder", "F1"})
	if err == nil || !strings.Contains(err.Error(), "--hook-url is required") {
		t.Fatalf("expected --hook-url error, got %v", err)
	}
}

func TestPrintRooms(t *testing.T) {
	tbl, err := room.NewTable(map[string]room.Entry{
		"F2": {RoomID: "R2"},
		"F1": {RoomID: "R1", RoomDescription: "Dev", ProjectDescription: "Apollo"},
	})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := printRooms(&buf, tbl); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[1], "F1") || !strings.Contains(lines[1], "Apollo") {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "Unnamed Room") {
		t.Errorf("expected placeholder label in %q", lines[2])
	}
}

func TestPrintWebhooks(t *testing.T) {
	var buf bytes.Buffer
	err := printWebhooks(&buf, []wrike.Webhook{
		{ID: "W1", HookURL: "https://relay/wrike-webhook", Status: "Active"},
		{ID: "W2", FolderID: "F1", HookURL: "https://relay/wrike-webhook", Status: "Suspended"},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "(account)") || !strings.Contains(out, "Suspended") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestIsUpstreamFault(t *testing.T) {
	if isUpstreamFault(wrike.ErrNoToken) {
		t.Error("missing token must not trip the breaker")
	}
	if !isUpstreamFault(errors.New("wrike API 500: boom")) {
		t.Error("generic errors count as faults")
	}
}
