// Package taskprovider defines the port for reading tasks and contacts
// from the task-management system.
package taskprovider

import (
	"context"

	"github.com/Strob0t/TaskRelay/internal/domain/task"
)

// Provider fetches task records and contact display names.
type Provider interface {
	// Task returns the task with the given id.
	Task(ctx context.Context, id string) (*task.Task, error)

	// ContactNames returns one display name per id, in request order.
	ContactNames(ctx context.Context, ids []string) ([]string, error)
}
