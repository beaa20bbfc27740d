package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Strob0t/TaskRelay/internal/domain/room"
)

// Room map source names reported in Config.RoomSource.
const (
	RoomSourceEnvJSON = "env-json"
	RoomSourceEnvList = "env-list"
	RoomSourceFile    = "file"
	RoomSourceYAML    = "yaml"
)

// loadRooms builds cfg.Rooms from the first configured source in order:
// embedded JSON env, colon-delimited env list, JSON file, YAML rooms block.
func loadRooms(cfg *Config) error {
	var (
		entries map[string]room.Entry
		source  string
		err     error
	)

	switch {
	case strings.TrimSpace(cfg.Routing.MappingJSON) != "":
		source = RoomSourceEnvJSON
		entries, err = ParseRoomJSON([]byte(cfg.Routing.MappingJSON))
	case strings.TrimSpace(cfg.Routing.MappingList) != "":
		source = RoomSourceEnvList
		entries, err = ParseRoomList(cfg.Routing.MappingList)
	case cfg.Routing.MappingFile != "":
		source = RoomSourceFile
		entries, err = readRoomFile(cfg.Routing.MappingFile)
	case len(cfg.Routing.Rooms) > 0:
		source = RoomSourceYAML
		entries = cfg.Routing.Rooms
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	tbl, err := room.NewTable(entries)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	cfg.Rooms = tbl
	cfg.RoomSource = source
	return nil
}

func readRoomFile(path string) (map[string]room.Entry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied mapping path
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	entries, err := ParseRoomJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

// ParseRoomJSON decodes a JSON object keyed by folder id. Each value is
// either an entry object or a bare room id string.
func ParseRoomJSON(data []byte) (map[string]room.Entry, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("room map must be a JSON object: %w", err)
	}

	entries := make(map[string]room.Entry, len(raw))
	for folderID, v := range raw {
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '"' {
			var roomID string
			if err := json.Unmarshal(v, &roomID); err != nil {
				return nil, fmt.Errorf("folder %s: %w", folderID, err)
			}
			entries[folderID] = room.Entry{RoomID: roomID}
			continue
		}
		var e room.Entry
		if err := json.Unmarshal(v, &e); err != nil {
			return nil, fmt.Errorf("folder %s: %w", folderID, err)
		}
		entries[folderID] = e
	}
	return entries, nil
}

// ParseRoomList decodes "folder:room[:roomDesc[:projectDesc]]" entries
// separated by commas, semicolons or newlines.
func ParseRoomList(s string) (map[string]room.Entry, error) {
	items := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})

	entries := make(map[string]room.Entry, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, ":", 4)
		if len(parts) < 2 {
			return nil, fmt.Errorf("entry %q: expected folder:room", item)
		}
		e := room.Entry{RoomID: strings.TrimSpace(parts[1])}
		if len(parts) > 2 {
			e.RoomDescription = strings.TrimSpace(parts[2])
		}
		if len(parts) > 3 {
			e.ProjectDescription = strings.TrimSpace(parts[3])
		}
		entries[strings.TrimSpace(parts[0])] = e
	}
	return entries, nil
}
