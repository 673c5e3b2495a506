// Package service implements the application's business operations on top of
// the store interfaces.
package service

import (
	"errors"
	"fmt"

	"github.com/grahamCodes/project-manager-app/internal/store"
)

// Common sentinel errors for TaskService
var (
	// ErrTaskNotFound indicates that the task does not exist, is deleted, or
	// is not visible to the caller. The three cases are deliberately
	// indistinguishable.
	ErrTaskNotFound = errors.New("task not found")

	// ErrProjectNotFound indicates that the project does not exist or is not
	// visible to the caller.
	ErrProjectNotFound = errors.New("project not found")

	// ErrNoInstance indicates a status toggle on a recurring task that has no
	// instance yet. The toggle never creates instances, so this is a conflict
	// the caller must resolve through a full update.
	ErrNoInstance = errors.New("no task instance found for recurring task")
)

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "update_task", "toggle_status")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
// It maps store-level sentinels to their service-level counterparts and
// returns service sentinels unwrapped so callers can match on errors.Is.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, ErrProjectNotFound), errors.Is(err, store.ErrProjectNotFound):
		return ErrProjectNotFound
	case errors.Is(err, ErrNoInstance):
		return ErrNoInstance
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
