package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values. The literals match the values stored by the
// persistence layer, so they appear verbatim in API payloads and SQL rows.
const (
	TaskStatusNotStarted TaskStatus = "Not Started"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusBlocked    TaskStatus = "Blocked"
	TaskStatusComplete   TaskStatus = "Complete"
	TaskStatusRecurring  TaskStatus = "Recurring"
)

// Task-specific validation errors
var (
	ErrTaskIDEmpty        = errors.New("task ID cannot be empty")
	ErrTaskProjectIDEmpty = errors.New("task project ID cannot be empty")
	ErrTaskNameEmpty      = errors.New("task name cannot be empty")
	ErrTaskDueDateZero    = errors.New("task due date cannot be zero")
)

// Task represents a unit of work within a project. A non-recurring task
// carries its own status and completion timestamp. When IsRecurring is true
// the task acts as the template of a recurring series: Status is pinned to
// TaskStatusRecurring and the authoritative status/due date live on the
// latest TaskInstance.
//
// Invariant: IsRecurring == true iff Status == TaskStatusRecurring iff a
// RecurrenceRule exists for this task.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	DueDate     time.Time  `json:"due_date"`
	Status      TaskStatus `json:"status"`
	Priority    int        `json:"priority"`
	IsRecurring bool       `json:"is_recurring"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task in the given project with the supplied fields.
// It generates a new UUID for the task ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewTask(
	projectID uuid.UUID,
	name string,
	description *string,
	dueDate time.Time,
	status TaskStatus,
	priority int,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		DueDate:     dueDate,
		Status:      status,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.ProjectID == uuid.Nil {
		return ErrTaskProjectIDEmpty
	}

	if t.Name == "" {
		return ErrTaskNameEmpty
	}

	if t.DueDate.IsZero() {
		return ErrTaskDueDateZero
	}

	if !IsValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// IsValidTaskStatus checks if the given status is a valid TaskStatus.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusBlocked,
		TaskStatusComplete, TaskStatusRecurring:
		return true
	}
	return false
}
