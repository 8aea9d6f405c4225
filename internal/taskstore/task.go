package taskstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// ErrNotFound is returned by Get for unknown or expired task ids.
var ErrNotFound = errors.New("task not found")

// Task is the recorded state of one tool invocation.
type Task struct {
	ID        string                 `json:"task_id"`
	Tool      string                 `json:"tool"`
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Result    json.RawMessage        `json:"result,omitempty"`
	Error     map[string]interface{} `json:"error,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Done reports whether the task reached a terminal state.
func (t *Task) Done() bool {
	return t.Status == StatusCompleted || t.Status == StatusError
}

// Store maps task ids to task state. Implementations must be safe for
// concurrent use.
type Store interface {
	Save(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	Close() error
}
