package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/grahamCodes/project-manager-app/internal/domain"
	"github.com/grahamCodes/project-manager-app/internal/service"
)

// Common request/response structures

// RecurrenceRequest defines the recurrence payload of task mutations.
// Its presence turns recurrence on; omitting it (or sending null) turns it off.
type RecurrenceRequest struct {
	Frequency  string     `json:"frequency"             validate:"required,oneof=DAILY WEEKLY MONTHLY"`
	Interval   int        `json:"interval"              validate:"omitempty,gte=1,lte=365"`
	ByWeekday  []int      `json:"by_weekday,omitempty"  validate:"omitempty,dive,gte=0,lte=6"`
	ByMonthday []int      `json:"by_monthday,omitempty" validate:"omitempty,dive,gte=1,lte=31"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
}

// CreateTaskRequest defines the payload for the task creation endpoint.
type CreateTaskRequest struct {
	ProjectID   string             `json:"project_id"            validate:"required,uuid"`
	Name        string             `json:"name"                  validate:"required,max=500"`
	Description *string            `json:"description,omitempty" validate:"omitempty,max=5000"`
	DueDate     time.Time          `json:"due_date"              validate:"required"`
	Status      string             `json:"status,omitempty"      validate:"omitempty,oneof='Not Started' 'In Progress' Blocked Complete"`
	Priority    int                `json:"priority"              validate:"gte=0,lte=10"`
	Recurrence  *RecurrenceRequest `json:"recurrence,omitempty"`
}

// UpdateTaskRequest defines the payload for the full task update endpoint.
// Every field is authoritative; this is a replacement, not a patch.
type UpdateTaskRequest struct {
	Name        string             `json:"name"                  validate:"required,max=500"`
	Description *string            `json:"description,omitempty" validate:"omitempty,max=5000"`
	DueDate     time.Time          `json:"due_date"              validate:"required"`
	Status      string             `json:"status"                validate:"required,oneof='Not Started' 'In Progress' Blocked Complete"`
	Priority    int                `json:"priority"              validate:"gte=0,lte=10"`
	Recurrence  *RecurrenceRequest `json:"recurrence,omitempty"`
}

// RecurrenceResponse represents the recurrence rule in API responses.
type RecurrenceResponse struct {
	Frequency  string     `json:"frequency"`
	Interval   int        `json:"interval"`
	ByWeekday  []int      `json:"by_weekday,omitempty"`
	ByMonthday []int      `json:"by_monthday,omitempty"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
}

// InstanceResponse represents a task occurrence in API responses.
type InstanceResponse struct {
	ID          uuid.UUID  `json:"id"`
	TaskID      uuid.UUID  `json:"task_id"`
	DueDate     time.Time  `json:"due_date"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskResponse is the consistent task shape returned by every task endpoint:
// the task itself plus its recurrence rule and latest instance when present.
type TaskResponse struct {
	ID             uuid.UUID           `json:"id"`
	ProjectID      uuid.UUID           `json:"project_id"`
	Name           string              `json:"name"`
	Description    *string             `json:"description,omitempty"`
	DueDate        time.Time           `json:"due_date"`
	Status         string              `json:"status"`
	Priority       int                 `json:"priority"`
	IsRecurring    bool                `json:"is_recurring"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Recurrence     *RecurrenceResponse `json:"recurrence,omitempty"`
	LatestInstance *InstanceResponse   `json:"latest_instance,omitempty"`
}

// taskDetailsToResponse transforms the service shape into the API shape.
func taskDetailsToResponse(d *service.TaskDetails) TaskResponse {
	resp := TaskResponse{
		ID:          d.Task.ID,
		ProjectID:   d.Task.ProjectID,
		Name:        d.Task.Name,
		Description: d.Task.Description,
		DueDate:     d.Task.DueDate,
		Status:      string(d.Task.Status),
		Priority:    d.Task.Priority,
		IsRecurring: d.Task.IsRecurring,
		CompletedAt: d.Task.CompletedAt,
		CreatedAt:   d.Task.CreatedAt,
		UpdatedAt:   d.Task.UpdatedAt,
	}

	if d.Rule != nil {
		resp.Recurrence = &RecurrenceResponse{
			Frequency:  string(d.Rule.Frequency),
			Interval:   d.Rule.Interval,
			ByWeekday:  d.Rule.ByWeekday,
			ByMonthday: d.Rule.ByMonthday,
			EndsAt:     d.Rule.EndsAt,
		}
	}

	if d.LatestInstance != nil {
		resp.LatestInstance = &InstanceResponse{
			ID:          d.LatestInstance.ID,
			TaskID:      d.LatestInstance.TaskID,
			DueDate:     d.LatestInstance.DueDate,
			Status:      string(d.LatestInstance.Status),
			CompletedAt: d.LatestInstance.CompletedAt,
			CreatedAt:   d.LatestInstance.CreatedAt,
			UpdatedAt:   d.LatestInstance.UpdatedAt,
		}
	}

	return resp
}

// recurrenceInput converts a validated recurrence request into the service
// form. The frequency has already passed struct validation, so ParseFrequency
// failing here would be a programming error; it is still surfaced.
func recurrenceInput(req *RecurrenceRequest) (*service.RecurrenceInput, error) {
	if req == nil {
		return nil, nil
	}

	freq, err := domain.ParseFrequency(req.Frequency)
	if err != nil {
		return nil, err
	}

	return &service.RecurrenceInput{
		Frequency:  freq,
		Interval:   req.Interval,
		ByWeekday:  req.ByWeekday,
		ByMonthday: req.ByMonthday,
		EndsAt:     req.EndsAt,
	}, nil
}
