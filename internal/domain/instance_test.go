package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTaskInstance(t *testing.T) {
	t.Parallel()
	taskID := uuid.New()
	due := time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC)

	instance, err := NewTaskInstance(taskID, due)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if instance.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if instance.Status != TaskStatusInProgress {
		t.Errorf("Expected new instance status %q, got %q", TaskStatusInProgress, instance.Status)
	}

	if instance.CompletedAt != nil {
		t.Error("Expected new instance to have no completion timestamp")
	}

	// Test invalid task ID
	_, err = NewTaskInstance(uuid.Nil, due)
	if err != ErrInstanceTaskIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrInstanceTaskIDEmpty, err)
	}

	// Test zero due date
	_, err = NewTaskInstance(taskID, time.Time{})
	if err != ErrInstanceDueDateZero {
		t.Errorf("Expected error %v, got %v", ErrInstanceDueDateZero, err)
	}
}

func TestSetStatus(t *testing.T) {
	t.Parallel()
	instance, err := NewTaskInstance(uuid.New(), time.Now().UTC())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	now := time.Date(2026, time.May, 3, 10, 0, 0, 0, time.UTC)

	// Completing sets the timestamp
	if err := instance.SetStatus(TaskStatusComplete, now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if instance.CompletedAt == nil || !instance.CompletedAt.Equal(now) {
		t.Errorf("Expected completion timestamp %v, got %v", now, instance.CompletedAt)
	}

	// Un-completing clears it
	if err := instance.SetStatus(TaskStatusInProgress, now.Add(time.Hour)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if instance.CompletedAt != nil {
		t.Errorf("Expected completion timestamp cleared, got %v", instance.CompletedAt)
	}

	// Blocked is a valid occurrence status
	if err := instance.SetStatus(TaskStatusBlocked, now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Instances never carry the template-only statuses
	if err := instance.SetStatus(TaskStatusRecurring, now); err != ErrInvalidTaskStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidTaskStatus, err)
	}
	if err := instance.SetStatus(TaskStatusNotStarted, now); err != ErrInvalidTaskStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidTaskStatus, err)
	}
}
