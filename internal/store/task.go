package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/grahamCodes/project-manager-app/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, task *domain.Task) error

	// GetForUser retrieves a non-deleted task by ID, scoped to the projects
	// owned by the given user. Returns ErrTaskNotFound when the task does not
	// exist, is soft-deleted, or belongs to another user's project; callers
	// cannot distinguish the three.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)

	// ListForUser retrieves the user's non-deleted tasks ordered by due date
	// ascending then creation time descending. limit <= 0 means no limit.
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Task, error)

	// Update saves changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// ListRecurringByTimezone retrieves all non-deleted recurring tasks that
	// have a recurrence rule and whose owning user's configured timezone
	// equals the given label. This is the generator's selection query.
	ListRecurringByTimezone(ctx context.Context, timezone string) ([]*domain.Task, error)

	// ListStatusesByProject retrieves the statuses of all non-deleted tasks
	// under the given project, for project status aggregation.
	ListStatusesByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TaskStatus, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	WithTx(tx *sql.Tx) TaskStore
}
