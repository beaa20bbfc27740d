package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/Strob0t/TaskRelay/internal/domain/relay"
	"github.com/Strob0t/TaskRelay/internal/port/broadcast"
)

// Compile-time interface check.
var _ broadcast.Broadcaster = (*Hub)(nil)

func TestNewHub(t *testing.T) {
	hub := NewHub()
	if hub.ConnectionCount() != 0 {
		t.Fatalf("expected 0 connections, got %d", hub.ConnectionCount())
	}
}

func TestHubBroadcastNoConnections(t *testing.T) {
	hub := NewHub()
	hub.Broadcast(context.Background(), Message{
		Type:    "test",
		Payload: []byte(`{"key":"value"}`),
	})
}

func TestHubBroadcastEventMarshalError(t *testing.T) {
	hub := NewHub()
	// A channel cannot be marshaled to JSON; logs, does not panic.
	hub.BroadcastEvent(context.Background(), "bad", make(chan int))
}

func TestHubRemoveNonexistent(t *testing.T) {
	hub := NewHub()
	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.remove(&conn{cancel: cancel})
}

func waitForConns(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ConnectionCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections, got %d", n, hub.ConnectionCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubDeliversOutcome(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = client.CloseNow() }()
	waitForConns(t, hub, 1)

	out := relay.NewOutcome(relay.KindSent, "T1", "TaskCreated")
	out.RoomID = "room-1"
	hub.BroadcastEvent(ctx, broadcast.EventRelaySent, out)

	_, data, err := client.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != broadcast.EventRelaySent {
		t.Errorf("expected %s, got %s", broadcast.EventRelaySent, msg.Type)
	}
	var got relay.Outcome
	if err := json.Unmarshal(msg.Payload, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != out.ID || got.RoomID != "room-1" {
		t.Errorf("unexpected payload %+v", got)
	}

	_ = client.Close(websocket.StatusNormalClosure, "")
	waitForConns(t, hub, 0)
}

func TestHubClose(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = client.CloseNow() }()
	waitForConns(t, hub, 1)

	hub.Close()
	if hub.ConnectionCount() != 0 {
		t.Fatalf("expected no connections after Close, got %d", hub.ConnectionCount())
	}
}
