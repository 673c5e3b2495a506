package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/grahamCodes/project-manager-app/internal/domain"
	"github.com/grahamCodes/project-manager-app/internal/platform/logger"
	"github.com/grahamCodes/project-manager-app/internal/store"
)

// PostgresRuleStore implements the store.RuleStore interface
// using a PostgreSQL database as the storage backend.
//
// The weekday and month-day selector sets are persisted as JSONB arrays;
// they are authored metadata read back verbatim, never queried against.
type PostgresRuleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRuleStore creates a new PostgreSQL implementation of the RuleStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresRuleStore(db store.DBTX, logger *slog.Logger) *PostgresRuleStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRuleStore{
		db:     db,
		logger: logger.With(slog.String("component", "rule_store")),
	}
}

// Ensure PostgresRuleStore implements store.RuleStore interface
var _ store.RuleStore = (*PostgresRuleStore)(nil)

// WithTx implements store.RuleStore.WithTx
func (s *PostgresRuleStore) WithTx(tx *sql.Tx) store.RuleStore {
	return &PostgresRuleStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetByTaskID implements store.RuleStore.GetByTaskID
func (s *PostgresRuleStore) GetByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.RecurrenceRule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT task_id, frequency, interval, by_weekday, by_monthday, ends_at, created_at, updated_at
		FROM recurrence_rules
		WHERE task_id = $1
	`
	var (
		rule        domain.RecurrenceRule
		weekdayRaw  []byte
		monthdayRaw []byte
	)
	err := s.db.QueryRowContext(ctx, query, taskID).Scan(
		&rule.TaskID,
		&rule.Frequency,
		&rule.Interval,
		&weekdayRaw,
		&monthdayRaw,
		&rule.EndsAt,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRuleNotFound
		}
		log.Error("failed to get recurrence rule",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}

	if err := json.Unmarshal(weekdayRaw, &rule.ByWeekday); err != nil {
		return nil, fmt.Errorf("failed to decode weekday selectors: %w", err)
	}
	if err := json.Unmarshal(monthdayRaw, &rule.ByMonthday); err != nil {
		return nil, fmt.Errorf("failed to decode month-day selectors: %w", err)
	}

	return &rule, nil
}

// Upsert implements store.RuleStore.Upsert
// The rule is keyed by task, so a conflicting insert replaces the definition.
func (s *PostgresRuleStore) Upsert(ctx context.Context, rule *domain.RecurrenceRule) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rule.Validate(); err != nil {
		log.Warn("rule validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("task_id", rule.TaskID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	weekdayRaw, err := json.Marshal(selectorsOrEmpty(rule.ByWeekday))
	if err != nil {
		return fmt.Errorf("failed to encode weekday selectors: %w", err)
	}
	monthdayRaw, err := json.Marshal(selectorsOrEmpty(rule.ByMonthday))
	if err != nil {
		return fmt.Errorf("failed to encode month-day selectors: %w", err)
	}

	rule.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO recurrence_rules (task_id, frequency, interval, by_weekday, by_monthday, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (task_id) DO UPDATE
		SET frequency = EXCLUDED.frequency,
			interval = EXCLUDED.interval,
			by_weekday = EXCLUDED.by_weekday,
			by_monthday = EXCLUDED.by_monthday,
			ends_at = EXCLUDED.ends_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		rule.TaskID,
		rule.Frequency,
		rule.Interval,
		weekdayRaw,
		monthdayRaw,
		rule.EndsAt,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert recurrence rule",
			slog.String("error", err.Error()),
			slog.String("task_id", rule.TaskID.String()))
		return MapError(err)
	}

	log.Debug("recurrence rule upserted",
		slog.String("task_id", rule.TaskID.String()),
		slog.String("frequency", string(rule.Frequency)),
		slog.Int("interval", rule.Interval))
	return nil
}

// DeleteByTaskID implements store.RuleStore.DeleteByTaskID
// Absence of a rule is not an error, so the state machine can delete
// defensively on every non-recurring update.
func (s *PostgresRuleStore) DeleteByTaskID(ctx context.Context, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM recurrence_rules WHERE task_id = $1`
	if _, err := s.db.ExecContext(ctx, query, taskID); err != nil {
		log.Error("failed to delete recurrence rule",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}

	return nil
}

// selectorsOrEmpty normalizes a nil selector slice to an empty JSON array.
func selectorsOrEmpty(sel []int) []int {
	if sel == nil {
		return []int{}
	}
	return sel
}
