package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/grahamCodes/project-manager-app/internal/domain"
	"github.com/grahamCodes/project-manager-app/internal/platform/logger"
	"github.com/grahamCodes/project-manager-app/internal/store"
)

// projectColumns is the column list shared by all project SELECT queries.
const projectColumns = `id, user_id, name, description, color, status,
	start_date, end_date, sort_order, deleted_at, created_at, updated_at`

// PostgresProjectStore implements the store.ProjectStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProjectStore creates a new PostgreSQL implementation of the ProjectStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProjectStore(db store.DBTX, logger *slog.Logger) *PostgresProjectStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

// Ensure PostgresProjectStore implements store.ProjectStore interface
var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// WithTx implements store.ProjectStore.WithTx
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetByID implements store.ProjectStore.GetByID
func (s *PostgresProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1 AND deleted_at IS NULL
	`
	return s.getOne(ctx, query, id)
}

// GetForUser implements store.ProjectStore.GetForUser
func (s *PostgresProjectStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`
	return s.getOne(ctx, query, id, userID)
}

// UpdateStatus implements store.ProjectStore.UpdateStatus
func (s *PostgresProjectStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE projects
		SET status = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update project status",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "project"); err != nil {
		return store.ErrProjectNotFound
	}

	log.Debug("project status updated",
		slog.String("project_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// getOne runs a single-row project query in projectColumns order.
func (s *PostgresProjectStore) getOne(ctx context.Context, query string, args ...any) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var project domain.Project
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Description,
		&project.Color,
		&project.Status,
		&project.StartDate,
		&project.EndDate,
		&project.SortOrder,
		&project.DeletedAt,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		log.Error("failed to get project",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &project, nil
}
