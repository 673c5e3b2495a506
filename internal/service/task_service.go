package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/grahamCodes/project-manager-app/internal/domain"
	"github.com/grahamCodes/project-manager-app/internal/store"
)

// RecurrenceInput is the validated recurrence payload of a task mutation.
// The API boundary parses the caller's loose JSON into this closed form;
// anything with an unsupported frequency never reaches the service.
type RecurrenceInput struct {
	Frequency  domain.Frequency
	Interval   int
	ByWeekday  []int
	ByMonthday []int
	EndsAt     *time.Time
}

// CreateTaskParams carries the fields of a task creation request.
type CreateTaskParams struct {
	ProjectID   uuid.UUID
	Name        string
	Description *string
	DueDate     time.Time
	Status      domain.TaskStatus
	Priority    int
	Recurrence  *RecurrenceInput
}

// UpdateTaskParams carries the fields of a full task update. A nil Recurrence
// turns recurrence off; a non-nil one turns it on or redefines it.
type UpdateTaskParams struct {
	Name        string
	Description *string
	DueDate     time.Time
	Status      domain.TaskStatus
	Priority    int
	Recurrence  *RecurrenceInput
}

// TaskDetails is the one consistent shape every task operation returns:
// the task, its recurrence rule (nil when non-recurring) and its latest
// instance (nil when none exists). Callers never branch on shape.
type TaskDetails struct {
	Task           *domain.Task           `json:"task"`
	Rule           *domain.RecurrenceRule `json:"recurrence"`
	LatestInstance *domain.TaskInstance   `json:"latest_instance"`
}

// TaskService provides task-related operations, reconciling the template and
// occurrence representations of recurring tasks.
type TaskService interface {
	// CreateTask creates a task in one of the caller's projects. When a
	// recurrence is supplied the task becomes a template and the initial
	// instance is seeded in the same transaction.
	CreateTask(ctx context.Context, userID uuid.UUID, params CreateTaskParams) (*TaskDetails, error)

	// GetTask retrieves one of the caller's tasks in the consistent shape.
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*TaskDetails, error)

	// ListTasks retrieves the caller's tasks in the consistent shape,
	// ordered by due date. limit <= 0 means no limit.
	ListTasks(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*TaskDetails, error)

	// UpdateTask applies a full task mutation: rule upsert or flattening,
	// instance reconciliation and project status recomputation, all in one
	// atomic unit.
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, params UpdateTaskParams) (*TaskDetails, error)

	// ToggleStatus flips a task between In Progress and Complete. For a
	// recurring task only the latest instance is touched; returns
	// ErrNoInstance when none exists. Project status is not recomputed.
	ToggleStatus(ctx context.Context, userID, taskID uuid.UUID) (*TaskDetails, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	db        *sql.DB
	tasks     store.TaskStore
	instances store.InstanceStore
	rules     store.RuleStore
	projects  store.ProjectStore
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	instances store.InstanceStore,
	rules store.RuleStore,
	projects store.ProjectStore,
	logger *slog.Logger,
) (TaskService, error) {
	if db == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if tasks == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "tasks store cannot be nil"}
	}
	if instances == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "instances store cannot be nil"}
	}
	if rules == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "rules store cannot be nil"}
	}
	if projects == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "projects store cannot be nil"}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		db:        db,
		tasks:     tasks,
		instances: instances,
		rules:     rules,
		projects:  projects,
		logger:    logger.With("component", "task_service"),
	}, nil
}

// CreateTask creates a task, its optional rule and its seed instance in one
// transaction.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	params CreateTaskParams,
) (*TaskDetails, error) {
	var details *TaskDetails

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txInstances := s.instances.WithTx(tx)
		txRules := s.rules.WithTx(tx)
		txProjects := s.projects.WithTx(tx)

		// Project must exist and belong to the caller.
		if _, err := txProjects.GetForUser(ctx, params.ProjectID, userID); err != nil {
			return NewTaskServiceError("create_task", "project lookup failed", err)
		}

		status := params.Status
		if params.Recurrence != nil {
			// The template's status is pinned while a rule exists.
			status = domain.TaskStatusRecurring
		}

		task, err := domain.NewTask(
			params.ProjectID,
			params.Name,
			params.Description,
			params.DueDate,
			status,
			params.Priority,
		)
		if err != nil {
			return NewTaskServiceError("create_task", "invalid task", err)
		}
		task.IsRecurring = params.Recurrence != nil

		if err := txTasks.Create(ctx, task); err != nil {
			return NewTaskServiceError("create_task", "failed to save task", err)
		}

		var rule *domain.RecurrenceRule
		var latest *domain.TaskInstance
		if params.Recurrence != nil {
			rule, err = newRuleFromInput(task.ID, params.Recurrence)
			if err != nil {
				return NewTaskServiceError("create_task", "invalid recurrence rule", err)
			}
			if err := txRules.Upsert(ctx, rule); err != nil {
				return NewTaskServiceError("create_task", "failed to save recurrence rule", err)
			}

			// Seed the initial occurrence; the generator only ever advances
			// from an existing instance.
			latest, err = domain.NewTaskInstance(task.ID, params.DueDate)
			if err != nil {
				return NewTaskServiceError("create_task", "invalid seed instance", err)
			}
			if err := latest.SetStatus(occurrenceStatus(params.Status), time.Now().UTC()); err != nil {
				return NewTaskServiceError("create_task", "invalid seed instance status", err)
			}
			if err := txInstances.Create(ctx, latest); err != nil {
				return NewTaskServiceError("create_task", "failed to seed instance", err)
			}
		}

		details = &TaskDetails{Task: task, Rule: rule, LatestInstance: latest}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		"task_id", details.Task.ID,
		"project_id", details.Task.ProjectID,
		"recurring", details.Task.IsRecurring)
	return details, nil
}

// GetTask retrieves one task in the consistent shape.
func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*TaskDetails, error) {
	task, err := s.tasks.GetForUser(ctx, taskID, userID)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "task lookup failed", err)
	}

	return s.loadDetails(ctx, task, s.rules, s.instances)
}

// ListTasks retrieves the caller's tasks in the consistent shape.
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*TaskDetails, error) {
	tasks, err := s.tasks.ListForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "task listing failed", err)
	}

	details := make([]*TaskDetails, 0, len(tasks))
	for _, task := range tasks {
		d, err := s.loadDetails(ctx, task, s.rules, s.instances)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}

	return details, nil
}

// UpdateTask is the full-update operation of the task state machine. The
// three branches — recurrence on, flatten off, plain edit — plus the project
// status recomputation execute as one atomic unit.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	params UpdateTaskParams,
) (*TaskDetails, error) {
	var details *TaskDetails

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txInstances := s.instances.WithTx(tx)
		txRules := s.rules.WithTx(tx)
		txProjects := s.projects.WithTx(tx)

		task, err := txTasks.GetForUser(ctx, taskID, userID)
		if err != nil {
			return NewTaskServiceError("update_task", "task lookup failed", err)
		}

		willRecur := params.Recurrence != nil
		wasRecurring := task.IsRecurring
		now := time.Now().UTC()

		// Name, description and priority update in every branch.
		task.Name = params.Name
		task.Description = params.Description
		task.Priority = params.Priority

		switch {
		case willRecur:
			err = s.applyRecurring(ctx, task, params, now, txTasks, txInstances, txRules)
		case wasRecurring:
			err = s.applyFlatten(ctx, task, params, now, txTasks, txInstances, txRules)
		default:
			err = s.applyPlainEdit(ctx, task, params, now, txTasks, txRules)
		}
		if err != nil {
			return err
		}

		if err := s.recomputeProjectStatus(ctx, task.ProjectID, txTasks, txProjects); err != nil {
			return err
		}

		details, err = s.loadDetails(ctx, task, txRules, txInstances)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task updated",
		"task_id", taskID,
		"recurring", details.Task.IsRecurring,
		"status", details.Task.Status)
	return details, nil
}

// applyRecurring handles the recurrence-on branch: upsert the rule, pin the
// template, and reconcile the latest instance with the requested state.
func (s *taskServiceImpl) applyRecurring(
	ctx context.Context,
	task *domain.Task,
	params UpdateTaskParams,
	now time.Time,
	txTasks store.TaskStore,
	txInstances store.InstanceStore,
	txRules store.RuleStore,
) error {
	rule, err := newRuleFromInput(task.ID, params.Recurrence)
	if err != nil {
		return NewTaskServiceError("update_task", "invalid recurrence rule", err)
	}
	if err := txRules.Upsert(ctx, rule); err != nil {
		return NewTaskServiceError("update_task", "failed to save recurrence rule", err)
	}

	// Template status is pinned; the instance carries the authoritative state.
	task.IsRecurring = true
	task.Status = domain.TaskStatusRecurring
	task.CompletedAt = nil
	task.DueDate = params.DueDate
	if err := txTasks.Update(ctx, task); err != nil {
		return NewTaskServiceError("update_task", "failed to save task", err)
	}

	latest, err := txInstances.GetLatestByTaskID(ctx, task.ID)
	switch {
	case errors.Is(err, store.ErrInstanceNotFound):
		latest, err = domain.NewTaskInstance(task.ID, params.DueDate)
		if err != nil {
			return NewTaskServiceError("update_task", "invalid seed instance", err)
		}
		if err := latest.SetStatus(occurrenceStatus(params.Status), now); err != nil {
			return NewTaskServiceError("update_task", "invalid instance status", err)
		}
		if err := txInstances.Create(ctx, latest); err != nil {
			return NewTaskServiceError("update_task", "failed to seed instance", err)
		}
	case err != nil:
		return NewTaskServiceError("update_task", "instance lookup failed", err)
	default:
		latest.DueDate = params.DueDate
		if err := latest.SetStatus(occurrenceStatus(params.Status), now); err != nil {
			return NewTaskServiceError("update_task", "invalid instance status", err)
		}
		if err := txInstances.Update(ctx, latest); err != nil {
			return NewTaskServiceError("update_task", "failed to save instance", err)
		}
	}

	return nil
}

// applyFlatten handles the recurrence-off branch for a previously recurring
// task: the requested state is applied to the latest instance first, its
// resulting values are absorbed into the template, and both the rule and the
// instance are removed so nothing orphaned remains.
func (s *taskServiceImpl) applyFlatten(
	ctx context.Context,
	task *domain.Task,
	params UpdateTaskParams,
	now time.Time,
	txTasks store.TaskStore,
	txInstances store.InstanceStore,
	txRules store.RuleStore,
) error {
	latest, err := txInstances.GetLatestByTaskID(ctx, task.ID)
	if err != nil && !errors.Is(err, store.ErrInstanceNotFound) {
		return NewTaskServiceError("update_task", "instance lookup failed", err)
	}

	var completedAt *time.Time
	if params.Status == domain.TaskStatusComplete {
		completedAt = &now
	}

	if latest != nil {
		latest.DueDate = params.DueDate
		latest.Status = occurrenceStatus(params.Status)
		if params.Status == domain.TaskStatusComplete {
			// An already-completed occurrence keeps its original timestamp so
			// flattening is lossless.
			if latest.CompletedAt == nil {
				latest.CompletedAt = &now
			}
		} else {
			latest.CompletedAt = nil
		}
		latest.UpdatedAt = now
		if err := txInstances.Update(ctx, latest); err != nil {
			return NewTaskServiceError("update_task", "failed to save instance", err)
		}
		completedAt = latest.CompletedAt
	}

	if err := txRules.DeleteByTaskID(ctx, task.ID); err != nil {
		return NewTaskServiceError("update_task", "failed to delete recurrence rule", err)
	}

	task.IsRecurring = false
	task.Status = params.Status
	task.DueDate = params.DueDate
	task.CompletedAt = completedAt
	if err := txTasks.Update(ctx, task); err != nil {
		return NewTaskServiceError("update_task", "failed to save task", err)
	}

	if latest != nil {
		if err := txInstances.Delete(ctx, latest.ID); err != nil {
			return NewTaskServiceError("update_task", "failed to delete flattened instance", err)
		}
	}

	return nil
}

// applyPlainEdit handles the ordinary non-recurring edit.
func (s *taskServiceImpl) applyPlainEdit(
	ctx context.Context,
	task *domain.Task,
	params UpdateTaskParams,
	now time.Time,
	txTasks store.TaskStore,
	txRules store.RuleStore,
) error {
	task.IsRecurring = false
	task.Status = params.Status
	task.DueDate = params.DueDate
	if params.Status == domain.TaskStatusComplete {
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}
	if err := txTasks.Update(ctx, task); err != nil {
		return NewTaskServiceError("update_task", "failed to save task", err)
	}

	// Defensive: the invariant says a non-recurring task has no rule.
	if err := txRules.DeleteByTaskID(ctx, task.ID); err != nil {
		return NewTaskServiceError("update_task", "failed to delete lingering rule", err)
	}

	return nil
}

// ToggleStatus flips a task between In Progress and Complete. The recurring
// variant never touches the template and never creates instances. Project
// status is deliberately not recomputed here.
func (s *taskServiceImpl) ToggleStatus(ctx context.Context, userID, taskID uuid.UUID) (*TaskDetails, error) {
	var details *TaskDetails

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txInstances := s.instances.WithTx(tx)
		txRules := s.rules.WithTx(tx)

		task, err := txTasks.GetForUser(ctx, taskID, userID)
		if err != nil {
			return NewTaskServiceError("toggle_status", "task lookup failed", err)
		}

		now := time.Now().UTC()

		if !task.IsRecurring {
			if task.Status != domain.TaskStatusComplete {
				task.Status = domain.TaskStatusComplete
				task.CompletedAt = &now
			} else {
				task.Status = domain.TaskStatusInProgress
				task.CompletedAt = nil
			}
			if err := txTasks.Update(ctx, task); err != nil {
				return NewTaskServiceError("toggle_status", "failed to save task", err)
			}

			details, err = s.loadDetails(ctx, task, txRules, txInstances)
			return err
		}

		latest, err := txInstances.GetLatestByTaskID(ctx, task.ID)
		if errors.Is(err, store.ErrInstanceNotFound) {
			return ErrNoInstance
		}
		if err != nil {
			return NewTaskServiceError("toggle_status", "instance lookup failed", err)
		}

		next := domain.TaskStatusComplete
		if latest.Status == domain.TaskStatusComplete {
			next = domain.TaskStatusInProgress
		}
		if err := latest.SetStatus(next, now); err != nil {
			return NewTaskServiceError("toggle_status", "invalid instance status", err)
		}
		if err := txInstances.Update(ctx, latest); err != nil {
			return NewTaskServiceError("toggle_status", "failed to save instance", err)
		}

		details, err = s.loadDetails(ctx, task, txRules, txInstances)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task status toggled", "task_id", taskID)
	return details, nil
}

// recomputeProjectStatus derives the project's status from its non-deleted
// member tasks and persists it only when it changed.
func (s *taskServiceImpl) recomputeProjectStatus(
	ctx context.Context,
	projectID uuid.UUID,
	txTasks store.TaskStore,
	txProjects store.ProjectStore,
) error {
	statuses, err := txTasks.ListStatusesByProject(ctx, projectID)
	if err != nil {
		return NewTaskServiceError("update_task", "failed to list sibling statuses", err)
	}

	project, err := txProjects.GetByID(ctx, projectID)
	if err != nil {
		return NewTaskServiceError("update_task", "project lookup failed", err)
	}

	next := domain.CalculateProjectStatus(statuses, project.Status)
	if next == project.Status {
		return nil
	}

	if err := txProjects.UpdateStatus(ctx, projectID, next); err != nil {
		return NewTaskServiceError("update_task", "failed to save project status", err)
	}

	s.logger.Debug("project status recomputed",
		"project_id", projectID,
		"previous", project.Status,
		"next", next)
	return nil
}

// loadDetails assembles the consistent response shape for a task.
func (s *taskServiceImpl) loadDetails(
	ctx context.Context,
	task *domain.Task,
	rules store.RuleStore,
	instances store.InstanceStore,
) (*TaskDetails, error) {
	rule, err := rules.GetByTaskID(ctx, task.ID)
	if err != nil && !errors.Is(err, store.ErrRuleNotFound) {
		return nil, NewTaskServiceError("load_details", "rule lookup failed", err)
	}

	latest, err := instances.GetLatestByTaskID(ctx, task.ID)
	if err != nil && !errors.Is(err, store.ErrInstanceNotFound) {
		return nil, NewTaskServiceError("load_details", "instance lookup failed", err)
	}

	return &TaskDetails{Task: task, Rule: rule, LatestInstance: latest}, nil
}

// newRuleFromInput builds a validated domain rule from a recurrence input.
func newRuleFromInput(taskID uuid.UUID, input *RecurrenceInput) (*domain.RecurrenceRule, error) {
	return domain.NewRecurrenceRule(
		taskID,
		input.Frequency,
		input.Interval,
		input.ByWeekday,
		input.ByMonthday,
		input.EndsAt,
	)
}

// occurrenceStatus narrows a requested task status to the set an instance
// may carry. Not Started and Recurring have no occurrence meaning and map to
// In Progress.
func occurrenceStatus(status domain.TaskStatus) domain.TaskStatus {
	switch status {
	case domain.TaskStatusBlocked, domain.TaskStatusComplete:
		return status
	}
	return domain.TaskStatusInProgress
}
