package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the derived state of a project.
type ProjectStatus string

// Possible project status values. Projects never carry Recurring.
const (
	ProjectStatusNotStarted ProjectStatus = "Not Started"
	ProjectStatusInProgress ProjectStatus = "In Progress"
	ProjectStatusBlocked    ProjectStatus = "Blocked"
	ProjectStatusComplete   ProjectStatus = "Complete"
)

// Project-specific validation errors
var (
	ErrProjectIDEmpty     = errors.New("project ID cannot be empty")
	ErrProjectUserIDEmpty = errors.New("project user ID cannot be empty")
	ErrProjectNameEmpty   = errors.New("project name cannot be empty")
	ErrProjectDateOrder   = errors.New("project start date must not be after end date")
)

// Project groups tasks for a user. Its status is derived from the statuses of
// its non-deleted tasks via CalculateProjectStatus and is never set directly
// by recurrence logic.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Color       string        `json:"color"`
	Status      ProjectStatus `json:"status"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	SortOrder   int           `json:"sort_order"`
	DeletedAt   *time.Time    `json:"deleted_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Validate checks if the Project has valid data.
// Returns an error if any field fails validation.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrProjectIDEmpty
	}

	if p.UserID == uuid.Nil {
		return ErrProjectUserIDEmpty
	}

	if p.Name == "" {
		return ErrProjectNameEmpty
	}

	if p.StartDate.After(p.EndDate) {
		return ErrProjectDateOrder
	}

	if !isValidProjectStatus(p.Status) {
		return ErrInvalidProjectStatus
	}

	return nil
}

// isValidProjectStatus checks if the given status is a valid ProjectStatus.
func isValidProjectStatus(status ProjectStatus) bool {
	switch status {
	case ProjectStatusNotStarted, ProjectStatusInProgress,
		ProjectStatusBlocked, ProjectStatusComplete:
		return true
	}
	return false
}

// CalculateProjectStatus derives a project's status from the statuses of its
// non-deleted member tasks:
//
//   - every task Complete (and at least one task) → Complete
//   - any task In Progress → In Progress
//   - project was Complete but just lost that condition without gaining an
//     In Progress task (e.g. all Blocked) → In Progress
//   - otherwise → unchanged
//
// An empty task list never yields Complete.
func CalculateProjectStatus(taskStatuses []TaskStatus, current ProjectStatus) ProjectStatus {
	if len(taskStatuses) > 0 {
		allComplete := true
		for _, s := range taskStatuses {
			if s != TaskStatusComplete {
				allComplete = false
				break
			}
		}
		if allComplete {
			return ProjectStatusComplete
		}
	}

	for _, s := range taskStatuses {
		if s == TaskStatusInProgress {
			return ProjectStatusInProgress
		}
	}

	if current == ProjectStatusComplete {
		return ProjectStatusInProgress
	}

	return current
}
