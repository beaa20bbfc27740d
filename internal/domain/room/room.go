// Package room maps Wrike folders to Webex rooms.
package room

import (
	"fmt"
	"sort"

	"github.com/Strob0t/TaskRelay/internal/domain"
)

const (
	defaultRoomDescription    = "Unnamed Room"
	defaultProjectDescription = "Unnamed Project"
)

// Entry is the destination configured for one folder.
type Entry struct {
	RoomID             string `json:"roomId" yaml:"room_id"`
	RoomDescription    string `json:"roomDescription,omitempty" yaml:"room_description"`
	ProjectDescription string `json:"projectDescription,omitempty" yaml:"project_description"`
}

// RoomLabel returns the room description or its placeholder.
func (e Entry) RoomLabel() string {
	if e.RoomDescription == "" {
		return defaultRoomDescription
	}
	return e.RoomDescription
}

// ProjectLabel returns the project description or its placeholder.
func (e Entry) ProjectLabel() string {
	if e.ProjectDescription == "" {
		return defaultProjectDescription
	}
	return e.ProjectDescription
}

// Table is an immutable folder-id to Entry lookup.
type Table struct {
	entries map[string]Entry
}

// NewTable copies entries into a Table. Every entry needs a room id.
func NewTable(entries map[string]Entry) (Table, error) {
	t := Table{entries: make(map[string]Entry, len(entries))}
	for folderID, e := range entries {
		if folderID == "" {
			return Table{}, fmt.Errorf("%w: empty folder id in room map", domain.ErrValidation)
		}
		if e.RoomID == "" {
			return Table{}, fmt.Errorf("%w: folder %s has no room id", domain.ErrValidation, folderID)
		}
		t.entries[folderID] = e
	}
	return t, nil
}

// Resolve returns the entry for the first folder in parentIDs that has one.
func (t Table) Resolve(parentIDs []string) (entry Entry, folderID string, ok bool) {
	for _, id := range parentIDs {
		if e, found := t.entries[id]; found {
			return e, id, true
		}
	}
	return Entry{}, "", false
}

// Len returns the number of mapped folders.
func (t Table) Len() int { return len(t.entries) }

// FolderIDs returns the mapped folder ids in sorted order.
func (t Table) FolderIDs() []string {
	ids := make([]string, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns the entry for a single folder id.
func (t Table) Get(folderID string) (Entry, bool) {
	e, ok := t.entries[folderID]
	return e, ok
}
