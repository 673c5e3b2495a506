package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestProjectValidate(t *testing.T) {
	t.Parallel()
	validProject := Project{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Name:      "Garden overhaul",
		Color:     "#00aa55",
		Status:    ProjectStatusInProgress,
		StartDate: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := validProject.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := validProject
	invalid.ID = uuid.Nil
	if err := invalid.Validate(); err != ErrProjectIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrProjectIDEmpty, err)
	}

	invalid = validProject
	invalid.Name = ""
	if err := invalid.Validate(); err != ErrProjectNameEmpty {
		t.Errorf("Expected error %v, got %v", ErrProjectNameEmpty, err)
	}

	invalid = validProject
	invalid.StartDate, invalid.EndDate = invalid.EndDate, invalid.StartDate
	if err := invalid.Validate(); err != ErrProjectDateOrder {
		t.Errorf("Expected error %v, got %v", ErrProjectDateOrder, err)
	}

	invalid = validProject
	invalid.Status = ProjectStatus("Recurring")
	if err := invalid.Validate(); err != ErrInvalidProjectStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidProjectStatus, err)
	}
}

func TestCalculateProjectStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		statuses []TaskStatus
		current  ProjectStatus
		want     ProjectStatus
	}{
		{
			name:     "all complete yields complete",
			statuses: []TaskStatus{TaskStatusComplete, TaskStatusComplete},
			current:  ProjectStatusInProgress,
			want:     ProjectStatusComplete,
		},
		{
			name:     "single complete task yields complete",
			statuses: []TaskStatus{TaskStatusComplete},
			current:  ProjectStatusNotStarted,
			want:     ProjectStatusComplete,
		},
		{
			name:     "empty task list never yields complete",
			statuses: nil,
			current:  ProjectStatusNotStarted,
			want:     ProjectStatusNotStarted,
		},
		{
			name:     "any in-progress task yields in progress",
			statuses: []TaskStatus{TaskStatusComplete, TaskStatusInProgress, TaskStatusBlocked},
			current:  ProjectStatusNotStarted,
			want:     ProjectStatusInProgress,
		},
		{
			name:     "recurring tasks do not mark a project complete",
			statuses: []TaskStatus{TaskStatusComplete, TaskStatusRecurring},
			current:  ProjectStatusNotStarted,
			want:     ProjectStatusNotStarted,
		},
		{
			name:     "formerly complete project reopens as in progress",
			statuses: []TaskStatus{TaskStatusComplete, TaskStatusBlocked},
			current:  ProjectStatusComplete,
			want:     ProjectStatusInProgress,
		},
		{
			name:     "blocked tasks leave the current status alone",
			statuses: []TaskStatus{TaskStatusBlocked, TaskStatusNotStarted},
			current:  ProjectStatusBlocked,
			want:     ProjectStatusBlocked,
		},
		{
			name:     "not started tasks leave the current status alone",
			statuses: []TaskStatus{TaskStatusNotStarted},
			current:  ProjectStatusNotStarted,
			want:     ProjectStatusNotStarted,
		},
		{
			name:     "empty list on a complete project reopens it",
			statuses: nil,
			current:  ProjectStatusComplete,
			want:     ProjectStatusInProgress,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := CalculateProjectStatus(tc.statuses, tc.current)
			if got != tc.want {
				t.Errorf("Expected status %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCalculateProjectStatusIsPure(t *testing.T) {
	t.Parallel()

	statuses := []TaskStatus{TaskStatusComplete, TaskStatusInProgress}
	first := CalculateProjectStatus(statuses, ProjectStatusNotStarted)
	second := CalculateProjectStatus(statuses, ProjectStatusNotStarted)

	if first != second {
		t.Errorf("Expected identical results for identical inputs, got %q then %q", first, second)
	}

	if statuses[0] != TaskStatusComplete || statuses[1] != TaskStatusInProgress {
		t.Error("Expected the input slice to be unmodified")
	}
}
