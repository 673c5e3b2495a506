package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/grahamCodes/project-manager-app/internal/domain"
)

// InstanceStore defines the interface for task occurrence persistence.
type InstanceStore interface {
	// Create saves a new task instance to the store.
	// Returns ErrInstanceExists when an instance already exists for the same
	// task and due date; the unique constraint is the durable guard against
	// concurrent double-creation.
	Create(ctx context.Context, instance *domain.TaskInstance) error

	// GetLatestByTaskID retrieves the task's most recent instance, ordered by
	// due date descending. Returns ErrInstanceNotFound when the task has no
	// instances.
	GetLatestByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.TaskInstance, error)

	// ExistsForDueDate reports whether an instance exists for the task and
	// due date. This is an optimization to avoid needless failed writes; the
	// unique constraint remains the real safety net.
	ExistsForDueDate(ctx context.Context, taskID uuid.UUID, dueDate time.Time) (bool, error)

	// Update saves changes to an existing instance.
	// Returns ErrInstanceNotFound if the instance does not exist.
	Update(ctx context.Context, instance *domain.TaskInstance) error

	// Delete removes an instance by ID.
	// Returns ErrInstanceNotFound if the instance does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new InstanceStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) InstanceStore
}
