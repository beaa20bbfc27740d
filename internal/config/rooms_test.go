package config

import (
	"strings"
	"testing"
)

func TestParseRoomJSON(t *testing.T) {
	entries, err := ParseRoomJSON([]byte(`{
		"F1": {"roomId": "r1", "roomDescription": "Dev", "projectDescription": "Alpha"},
		"F2": "r2"
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if e := entries["F1"]; e.RoomID != "r1" || e.RoomDescription != "Dev" || e.ProjectDescription != "Alpha" {
		t.Errorf("unexpected F1 entry %+v", e)
	}
	if e := entries["F2"]; e.RoomID != "r2" {
		t.Errorf("bare string should be room id, got %+v", e)
	}
}

func TestParseRoomJSONInvalid(t *testing.T) {
	for _, in := range []string{`[]`, `not json`, `{"F1": 42}`} {
		if _, err := ParseRoomJSON([]byte(in)); err == nil {
			t.Errorf("expected error for %s", in)
		}
	}
}

func TestParseRoomList(t *testing.T) {
	entries, err := ParseRoomList("F1:r1, F2:r2:Ops Room:Apollo;F3:r3:Only Room\nF4:r4")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if e := entries["F2"]; e.RoomID != "r2" || e.RoomDescription != "Ops Room" || e.ProjectDescription != "Apollo" {
		t.Errorf("unexpected F2 entry %+v", e)
	}
	if e := entries["F3"]; e.RoomDescription != "Only Room" || e.ProjectDescription != "" {
		t.Errorf("unexpected F3 entry %+v", e)
	}
	if e := entries["F4"]; e.RoomID != "r4" {
		t.Errorf("unexpected F4 entry %+v", e)
	}
}

func TestParseRoomListMalformed(t *testing.T) {
	_, err := ParseRoomList("F1:r1,F2")
	if err == nil || !strings.Contains(err.Error(), "F2") {
		t.Fatalf("expected error naming F2, got %v", err)
	}
}

func TestLoadRoomsPrecedence(t *testing.T) {
	cfg := Defaults()
	cfg.Routing.MappingJSON = `{"FJ":"rj"}`
	cfg.Routing.MappingList = "FL:rl"

	if err := loadRooms(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.RoomSource != RoomSourceEnvJSON {
		t.Fatalf("expected env-json to win, got %q", cfg.RoomSource)
	}
	if _, ok := cfg.Rooms.Get("FL"); ok {
		t.Error("list entries must not be merged")
	}
}

func TestLoadRoomsRejectsEmptyRoomID(t *testing.T) {
	cfg := Defaults()
	cfg.Routing.MappingJSON = `{"F1": {"roomDescription": "no id"}}`
	if err := loadRooms(&cfg); err == nil {
		t.Fatal("expected error for entry without room id")
	}
}
