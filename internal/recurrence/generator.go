// Package recurrence implements batch generation of task occurrences and the
// scheduler that triggers it per timezone bucket.
package recurrence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/grahamCodes/project-manager-app/internal/domain"
	"github.com/grahamCodes/project-manager-app/internal/store"
)

// Generator advances every eligible recurring task in a timezone bucket by
// one occurrence. Runs are idempotent: without new completions a re-run
// creates no additional rows, and a run that fails midway leaves at worst a
// missing row that the next run repairs.
type Generator struct {
	tasks     store.TaskStore
	instances store.InstanceStore
	rules     store.RuleStore
	logger    *slog.Logger
}

// NewGenerator creates a Generator over the given stores.
// If logger is nil, a default logger will be used.
func NewGenerator(
	tasks store.TaskStore,
	instances store.InstanceStore,
	rules store.RuleStore,
	logger *slog.Logger,
) (*Generator, error) {
	if tasks == nil || instances == nil || rules == nil {
		return nil, fmt.Errorf("generator stores cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		tasks:     tasks,
		instances: instances,
		rules:     rules,
		logger:    logger.With(slog.String("component", "recurrence_generator")),
	}, nil
}

// Generate produces the next occurrence of every due recurring task whose
// owner is configured with the given timezone label. Per-task failures are
// logged and skipped; only a failure to load the work set (e.g. the store is
// unreachable) aborts the run.
//
// Batches for different labels touch disjoint task sets and may run
// concurrently. Overlapping runs for the same label are tolerated: the
// exists-check plus the unique constraint on (task, due date) make the
// insert race safe.
func (g *Generator) Generate(ctx context.Context, timezone string) error {
	log := g.logger.With(slog.String("timezone", timezone))
	log.Info("starting recurrence generation")

	tasks, err := g.tasks.ListRecurringByTimezone(ctx, timezone)
	if err != nil {
		log.Error("failed to load recurring tasks", slog.String("error", err.Error()))
		return fmt.Errorf("failed to load recurring tasks for %q: %w", timezone, err)
	}

	var created, skipped int
	for _, task := range tasks {
		ok, err := g.generateForTask(ctx, log, task)
		if err != nil {
			// Never abort the batch for one task.
			log.Error("skipping task after generation error",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
			skipped++
			continue
		}
		if ok {
			created++
		} else {
			skipped++
		}
	}

	log.Info("completed recurrence generation",
		slog.Int("tasks", len(tasks)),
		slog.Int("created", created),
		slog.Int("skipped", skipped))
	return nil
}

// generateForTask advances a single task. It returns true when a new
// occurrence was created and false for the various skip conditions.
func (g *Generator) generateForTask(
	ctx context.Context,
	log *slog.Logger,
	task *domain.Task,
) (bool, error) {
	log = log.With(slog.String("task_id", task.ID.String()))

	rule, err := g.rules.GetByTaskID(ctx, task.ID)
	if errors.Is(err, store.ErrRuleNotFound) {
		// The selection query joins on rules, so this means the rule vanished
		// mid-run. Nothing to advance.
		log.Warn("recurring task has no rule, skipping")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	latest, err := g.instances.GetLatestByTaskID(ctx, task.ID)
	if errors.Is(err, store.ErrInstanceNotFound) {
		// An instance is seeded when recurrence is enabled; its absence is an
		// inconsistency to log, not an error to surface.
		log.Warn("recurring task has no seeded instance, skipping")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if latest.CompletedAt == nil {
		// A task only advances after its current occurrence is completed.
		log.Debug("latest instance not completed, skipping")
		return false, nil
	}

	// The schedule anchors at the completion timestamp, not the due date, so
	// completing early or late shifts subsequent occurrences accordingly.
	nextDue, err := rule.NextDue(*latest.CompletedAt)
	if err != nil {
		return false, fmt.Errorf("unsupported frequency %q: %w", rule.Frequency, err)
	}

	if rule.Ended(nextDue) {
		log.Debug("rule ended before next due date, skipping",
			slog.Time("next_due", nextDue))
		return false, nil
	}

	// Idempotence check. This avoids a needless failed write on re-runs; the
	// unique constraint remains the guard against a concurrent run winning
	// the race between this check and the insert.
	exists, err := g.instances.ExistsForDueDate(ctx, task.ID, nextDue)
	if err != nil {
		return false, err
	}
	if exists {
		log.Debug("instance already exists for next due date, skipping",
			slog.Time("next_due", nextDue))
		return false, nil
	}

	instance, err := domain.NewTaskInstance(task.ID, nextDue)
	if err != nil {
		return false, err
	}
	if err := g.instances.Create(ctx, instance); err != nil {
		if errors.Is(err, store.ErrInstanceExists) {
			log.Debug("lost creation race to a concurrent run, skipping",
				slog.Time("next_due", nextDue))
			return false, nil
		}
		return false, err
	}

	log.Info("created task instance",
		slog.String("instance_id", instance.ID.String()),
		slog.Time("due_date", nextDue))
	return true, nil
}
