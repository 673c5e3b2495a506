package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/grahamCodes/project-manager-app/internal/domain"
)

// RuleStore defines the interface for recurrence rule persistence.
// A rule is owned 1:1 by its task.
type RuleStore interface {
	// GetByTaskID retrieves the task's recurrence rule.
	// Returns ErrRuleNotFound when the task has none.
	GetByTaskID(ctx context.Context, taskID uuid.UUID) (*domain.RecurrenceRule, error)

	// Upsert creates the task's rule or replaces its definition if one
	// already exists.
	Upsert(ctx context.Context, rule *domain.RecurrenceRule) error

	// DeleteByTaskID removes the task's rule. Deleting a task with no rule is
	// a no-op, so callers can delete defensively.
	DeleteByTaskID(ctx context.Context, taskID uuid.UUID) error

	// WithTx returns a new RuleStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) RuleStore
}
