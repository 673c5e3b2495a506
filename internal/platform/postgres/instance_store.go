package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/grahamCodes/project-manager-app/internal/domain"
	"github.com/grahamCodes/project-manager-app/internal/platform/logger"
	"github.com/grahamCodes/project-manager-app/internal/store"
)

// PostgresInstanceStore implements the store.InstanceStore interface
// using a PostgreSQL database as the storage backend.
type PostgresInstanceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInstanceStore creates a new PostgreSQL implementation of the InstanceStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresInstanceStore(db store.DBTX, logger *slog.Logger) *PostgresInstanceStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInstanceStore{
		db:     db,
		logger: logger.With(slog.String("component", "instance_store")),
	}
}

// Ensure PostgresInstanceStore implements store.InstanceStore interface
var _ store.InstanceStore = (*PostgresInstanceStore)(nil)

// WithTx implements store.InstanceStore.WithTx
func (s *PostgresInstanceStore) WithTx(tx *sql.Tx) store.InstanceStore {
	return &PostgresInstanceStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.InstanceStore.Create
// The UNIQUE(task_id, due_date) constraint is the durable guard against
// concurrent double-creation; a violation surfaces as store.ErrInstanceExists.
func (s *PostgresInstanceStore) Create(ctx context.Context, instance *domain.TaskInstance) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := instance.Validate(); err != nil {
		log.Warn("instance validation failed during create",
			slog.String("error", err.Error()),
			slog.String("instance_id", instance.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO task_instances (id, task_id, due_date, status, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		instance.ID,
		instance.TaskID,
		instance.DueDate,
		instance.Status,
		instance.CompletedAt,
		instance.CreatedAt,
		instance.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrInstanceExists
		}
		log.Error("failed to create task instance",
			slog.String("error", err.Error()),
			slog.String("task_id", instance.TaskID.String()))
		return MapError(err)
	}

	log.Debug("task instance created",
		slog.String("instance_id", instance.ID.String()),
		slog.String("task_id", instance.TaskID.String()),
		slog.Time("due_date", instance.DueDate))
	return nil
}

// GetLatestByTaskID implements store.InstanceStore.GetLatestByTaskID
func (s *PostgresInstanceStore) GetLatestByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.TaskInstance, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, due_date, status, completed_at, created_at, updated_at
		FROM task_instances
		WHERE task_id = $1
		ORDER BY due_date DESC
		LIMIT 1
	`
	var instance domain.TaskInstance
	err := s.db.QueryRowContext(ctx, query, taskID).Scan(
		&instance.ID,
		&instance.TaskID,
		&instance.DueDate,
		&instance.Status,
		&instance.CompletedAt,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInstanceNotFound
		}
		log.Error("failed to get latest task instance",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}

	return &instance, nil
}

// ExistsForDueDate implements store.InstanceStore.ExistsForDueDate
func (s *PostgresInstanceStore) ExistsForDueDate(ctx context.Context, taskID uuid.UUID, dueDate time.Time) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM task_instances WHERE task_id = $1 AND due_date = $2
		)
	`
	var exists bool
	err := s.db.QueryRowContext(ctx, query, taskID, dueDate).Scan(&exists)
	if err != nil {
		log.Error("failed to check task instance existence",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.Time("due_date", dueDate))
		return false, MapError(err)
	}

	return exists, nil
}

// Update implements store.InstanceStore.Update
func (s *PostgresInstanceStore) Update(ctx context.Context, instance *domain.TaskInstance) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := instance.Validate(); err != nil {
		log.Warn("instance validation failed during update",
			slog.String("error", err.Error()),
			slog.String("instance_id", instance.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	instance.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE task_instances
		SET due_date = $1, status = $2, completed_at = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		instance.DueDate,
		instance.Status,
		instance.CompletedAt,
		instance.UpdatedAt,
		instance.ID,
	)
	if err != nil {
		log.Error("failed to update task instance",
			slog.String("error", err.Error()),
			slog.String("instance_id", instance.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task instance"); err != nil {
		return store.ErrInstanceNotFound
	}

	return nil
}

// Delete implements store.InstanceStore.Delete
func (s *PostgresInstanceStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM task_instances WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete task instance",
			slog.String("error", err.Error()),
			slog.String("instance_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task instance"); err != nil {
		return store.ErrInstanceNotFound
	}

	return nil
}
