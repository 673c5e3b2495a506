package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/grahamCodes/project-manager-app/internal/domain"
)

// ProjectStore defines the interface for project data persistence.
type ProjectStore interface {
	// GetByID retrieves a non-deleted project by ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// GetForUser retrieves a non-deleted project by ID, scoped to its owner.
	// Returns ErrProjectNotFound when the project does not exist or belongs
	// to another user.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Project, error)

	// UpdateStatus persists a newly derived project status.
	// Returns ErrProjectNotFound if the project does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) error

	// WithTx returns a new ProjectStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProjectStore
}
