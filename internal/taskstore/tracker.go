package taskstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrorMapper renders an error as a key/value record, as
// analysis.Error.ToMap does.
type ErrorMapper interface {
	ToMap() map[string]interface{}
}

// Tracker records the lifecycle of tasks in a Store. The engine never
// reads it; callers report into it before and after each operation.
type Tracker struct {
	store Store
	now   func() time.Time
}

// NewTracker wraps store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Begin creates a new task in the processing state and returns its id.
func (t *Tracker) Begin(ctx context.Context, tool string) (string, error) {
	now := t.now().UTC()
	task := &Task{
		ID:        uuid.New().String(),
		Tool:      tool,
		Status:    StatusProcessing,
		Message:   "processing",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.store.Save(ctx, task); err != nil {
		return "", err
	}
	return task.ID, nil
}

// Complete marks the task completed and stores result as JSON.
func (t *Tracker) Complete(ctx context.Context, id string, result interface{}) error {
	task, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode task result: %w", err)
	}
	task.Status = StatusCompleted
	task.Message = "completed"
	task.Result = data
	task.UpdatedAt = t.now().UTC()
	return t.store.Save(ctx, task)
}

// Fail marks the task failed. Errors implementing ErrorMapper keep their
// structured form.
func (t *Tracker) Fail(ctx context.Context, id string, cause error) error {
	task, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	task.Status = StatusError
	task.Message = cause.Error()
	var m ErrorMapper
	if errors.As(cause, &m) {
		task.Error = m.ToMap()
	} else {
		task.Error = map[string]interface{}{"message": cause.Error()}
	}
	task.UpdatedAt = t.now().UTC()
	return t.store.Save(ctx, task)
}

// Get returns the current state of a task.
func (t *Tracker) Get(ctx context.Context, id string) (*Task, error) {
	return t.store.Get(ctx, id)
}
