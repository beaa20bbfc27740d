// Package task defines the Wrike task entity as seen by the relay.
package task

import "strings"

// CustomField is one custom-field value attached to a task.
type CustomField struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Task is the subset of a Wrike task record the relay renders.
type Task struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Status         string        `json:"status"`
	ParentIDs      []string      `json:"parentIds"`
	CustomFields   []CustomField `json:"customFields"`
	ResponsibleIDs []string      `json:"responsibleIds"`
	Permalink      string        `json:"permalink"`
}

// FieldValue returns the value of the custom field with the given id, or
// fallback when the id is empty, absent or carries an empty value.
func (t *Task) FieldValue(fieldID, fallback string) string {
	if fieldID == "" {
		return fallback
	}
	for _, f := range t.CustomFields {
		if f.ID == fieldID {
			if f.Value == "" {
				return fallback
			}
			return f.Value
		}
	}
	return fallback
}

// Link returns the task permalink, building one from base and the task id
// when the record carries none.
func (t *Task) Link(base string) string {
	if t.Permalink != "" {
		return t.Permalink
	}
	return strings.TrimSpace(base) + t.ID
}

// InAnyFolder reports whether any of the task's parent folders is in set.
func (t *Task) InAnyFolder(set map[string]struct{}) bool {
	for _, id := range t.ParentIDs {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
