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

// taskColumns is the column list shared by all task SELECT queries.
const taskColumns = `t.id, t.project_id, t.name, t.description, t.due_date, t.status,
	t.priority, t.is_recurring, t.completed_at, t.deleted_at, t.created_at, t.updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (id, project_id, name, description, due_date, status,
			priority, is_recurring, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.ProjectID,
		task.Name,
		task.Description,
		task.DueDate,
		task.Status,
		task.Priority,
		task.IsRecurring,
		task.CompletedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("project_id", task.ProjectID.String()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("project_id", task.ProjectID.String()))
	return nil
}

// GetForUser implements store.TaskStore.GetForUser
// Missing, soft-deleted and not-owned tasks are all reported as
// store.ErrTaskNotFound.
func (s *PostgresTaskStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.id = $1 AND t.deleted_at IS NULL AND p.user_id = $2
	`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// ListForUser implements store.TaskStore.ListForUser
func (s *PostgresTaskStore) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.deleted_at IS NULL AND p.user_id = $1
		ORDER BY t.due_date ASC, t.created_at DESC
		OFFSET $2
	`
	args := []any{userID, offset}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks for user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET name = $1, description = $2, due_date = $3, status = $4,
			priority = $5, is_recurring = $6, completed_at = $7, updated_at = $8
		WHERE id = $9 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query,
		task.Name,
		task.Description,
		task.DueDate,
		task.Status,
		task.Priority,
		task.IsRecurring,
		task.CompletedAt,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}

	return nil
}

// ListRecurringByTimezone implements store.TaskStore.ListRecurringByTimezone
// It selects the generator's work set: non-deleted recurring tasks with a
// rule, owned by users whose configured timezone equals the label.
func (s *PostgresTaskStore) ListRecurringByTimezone(ctx context.Context, timezone string) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		JOIN users u ON u.id = p.user_id
		JOIN recurrence_rules r ON r.task_id = t.id
		WHERE t.is_recurring = TRUE AND t.deleted_at IS NULL AND u.timezone = $1
		ORDER BY t.created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, timezone)
	if err != nil {
		log.Error("failed to list recurring tasks by timezone",
			slog.String("error", err.Error()),
			slog.String("timezone", timezone))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// ListStatusesByProject implements store.TaskStore.ListStatusesByProject
func (s *PostgresTaskStore) ListStatusesByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TaskStatus, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT status FROM tasks
		WHERE project_id = $1 AND deleted_at IS NULL
	`
	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		log.Error("failed to list task statuses by project",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var statuses []domain.TaskStatus
	for rows.Next() {
		var status domain.TaskStatus
		if err := rows.Scan(&status); err != nil {
			return nil, fmt.Errorf("failed to scan task status: %w", err)
		}
		statuses = append(statuses, status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task status rows: %w", err)
	}

	return statuses, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row in taskColumns order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Name,
		&task.Description,
		&task.DueDate,
		&task.Status,
		&task.Priority,
		&task.IsRecurring,
		&task.CompletedAt,
		&task.DeletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// collectTasks drains a task result set in taskColumns order.
func collectTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}
