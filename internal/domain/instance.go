package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskInstance-specific validation errors
var (
	ErrInstanceIDEmpty     = errors.New("task instance ID cannot be empty")
	ErrInstanceTaskIDEmpty = errors.New("task instance task ID cannot be empty")
	ErrInstanceDueDateZero = errors.New("task instance due date cannot be zero")
)

// TaskInstance represents one occurrence of a recurring task: a single
// due-date/status record for one cycle of the series. Instances are created
// by the generator, or seeded when recurrence is enabled, and deleted only
// when recurrence is flattened back off.
//
// Invariant: at most one instance exists per (task, due date).
type TaskInstance struct {
	ID          uuid.UUID  `json:"id"`
	TaskID      uuid.UUID  `json:"task_id"`
	DueDate     time.Time  `json:"due_date"`
	Status      TaskStatus `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTaskInstance creates a new occurrence of the given task, due on the
// given date with status In Progress. Returns an error if validation fails.
func NewTaskInstance(taskID uuid.UUID, dueDate time.Time) (*TaskInstance, error) {
	now := time.Now().UTC()
	instance := &TaskInstance{
		ID:        uuid.New(),
		TaskID:    taskID,
		DueDate:   dueDate,
		Status:    TaskStatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := instance.Validate(); err != nil {
		return nil, err
	}

	return instance, nil
}

// Validate checks if the TaskInstance has valid data.
// Returns an error if any field fails validation.
func (i *TaskInstance) Validate() error {
	if i.ID == uuid.Nil {
		return ErrInstanceIDEmpty
	}

	if i.TaskID == uuid.Nil {
		return ErrInstanceTaskIDEmpty
	}

	if i.DueDate.IsZero() {
		return ErrInstanceDueDateZero
	}

	if !isValidInstanceStatus(i.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// SetStatus applies the given status to the instance, setting the completion
// timestamp when completing and clearing it otherwise.
func (i *TaskInstance) SetStatus(status TaskStatus, now time.Time) error {
	if !isValidInstanceStatus(status) {
		return ErrInvalidTaskStatus
	}

	i.Status = status
	if status == TaskStatusComplete {
		completedAt := now.UTC()
		i.CompletedAt = &completedAt
	} else {
		i.CompletedAt = nil
	}
	i.UpdatedAt = now.UTC()
	return nil
}

// isValidInstanceStatus checks the narrower status set an occurrence may
// carry. Instances never hold Not Started or Recurring.
func isValidInstanceStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusInProgress, TaskStatusBlocked, TaskStatusComplete:
		return true
	}
	return false
}
