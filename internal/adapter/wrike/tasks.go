package wrike

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Strob0t/TaskRelay/internal/domain"
	"github.com/Strob0t/TaskRelay/internal/domain/task"
)

// Task fetches one task by id.
func (c *Client) Task(ctx context.Context, id string) (*task.Task, error) {
	body, err := c.call(ctx, "get_task", http.MethodGet, "/tasks/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("wrike get task: %w", err)
	}

	tasks, err := decode[task.Task](body)
	if err != nil {
		return nil, fmt.Errorf("wrike get task: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("wrike get task %s: %w", id, domain.ErrNotFound)
	}
	return &tasks[0], nil
}

// contact mirrors the fields of a Wrike contact record the relay reads.
type contact struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (ct contact) displayName() string {
	name := strings.TrimSpace(ct.FirstName + " " + ct.LastName)
	if name == "" {
		return ct.ID
	}
	return name
}

// ContactNames resolves contact ids to display names in request order.
// Ids the API does not return are rendered as the bare id. An empty list
// makes no request.
func (c *Client) ContactNames(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.PathEscape(id)
	}
	body, err := c.call(ctx, "get_contacts", http.MethodGet, "/contacts/"+strings.Join(escaped, ","), nil)
	if err != nil {
		return nil, fmt.Errorf("wrike get contacts: %w", err)
	}

	contacts, err := decode[contact](body)
	if err != nil {
		return nil, fmt.Errorf("wrike get contacts: %w", err)
	}

	byID := make(map[string]string, len(contacts))
	for _, ct := range contacts {
		byID[ct.ID] = ct.displayName()
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		if n, ok := byID[id]; ok {
			names[i] = n
		} else {
			names[i] = id
		}
	}
	return names, nil
}
