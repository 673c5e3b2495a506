package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Frequency represents how often a recurring task repeats.
type Frequency string

// Supported recurrence frequencies. Anything else is rejected at the
// boundary rather than silently ignored.
const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

// RecurrenceRule-specific validation errors
var (
	ErrRuleTaskIDEmpty    = errors.New("recurrence rule task ID cannot be empty")
	ErrRuleIntervalTooLow = errors.New("recurrence interval must be at least 1")
	ErrRuleWeekdayRange   = errors.New("recurrence weekday selectors must be in [0,6]")
	ErrRuleMonthdayRange  = errors.New("recurrence month-day selectors must be in [1,31]")
)

// RecurrenceRule describes how a task repeats. It is owned 1:1 by a Task and
// is destroyed when recurrence is turned off or the task is deleted.
//
// The weekday and month-day selectors are authored metadata: generation only
// ever advances by calendar interval from the completion date and does not
// filter against the selector sets.
type RecurrenceRule struct {
	TaskID     uuid.UUID  `json:"task_id"`
	Frequency  Frequency  `json:"frequency"`
	Interval   int        `json:"interval"`
	ByWeekday  []int      `json:"by_weekday"`
	ByMonthday []int      `json:"by_monthday"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewRecurrenceRule creates a rule for the given task. A zero interval is
// normalized to the default of 1. Returns an error if validation fails.
func NewRecurrenceRule(
	taskID uuid.UUID,
	frequency Frequency,
	interval int,
	byWeekday []int,
	byMonthday []int,
	endsAt *time.Time,
) (*RecurrenceRule, error) {
	if interval == 0 {
		interval = 1
	}

	now := time.Now().UTC()
	rule := &RecurrenceRule{
		TaskID:     taskID,
		Frequency:  frequency,
		Interval:   interval,
		ByWeekday:  byWeekday,
		ByMonthday: byMonthday,
		EndsAt:     endsAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	return rule, nil
}

// ParseFrequency converts a raw string into a Frequency.
// Returns ErrInvalidFrequency for anything other than the supported kinds.
func ParseFrequency(raw string) (Frequency, error) {
	switch Frequency(raw) {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return Frequency(raw), nil
	}
	return "", ErrInvalidFrequency
}

// Validate checks if the RecurrenceRule has valid data.
// Returns an error if any field fails validation.
func (r *RecurrenceRule) Validate() error {
	if r.TaskID == uuid.Nil {
		return ErrRuleTaskIDEmpty
	}

	if _, err := ParseFrequency(string(r.Frequency)); err != nil {
		return err
	}

	if r.Interval < 1 {
		return ErrRuleIntervalTooLow
	}

	for _, d := range r.ByWeekday {
		if d < 0 || d > 6 {
			return ErrRuleWeekdayRange
		}
	}

	for _, d := range r.ByMonthday {
		if d < 1 || d > 31 {
			return ErrRuleMonthdayRange
		}
	}

	return nil
}

// NextDue computes the due date of the next occurrence, anchored at the
// completion timestamp of the latest instance. Completing early or late
// shifts the schedule accordingly.
//
// Monthly advancement clamps to the end of the target month rather than
// overflowing into the following month (Jan 31 + 1 month = Feb 28/29).
// Returns ErrInvalidFrequency if the rule carries an unsupported frequency.
func (r *RecurrenceRule) NextDue(completedAt time.Time) (time.Time, error) {
	switch r.Frequency {
	case FrequencyDaily:
		return completedAt.AddDate(0, 0, r.Interval), nil
	case FrequencyWeekly:
		return completedAt.AddDate(0, 0, 7*r.Interval), nil
	case FrequencyMonthly:
		return addMonthsClamped(completedAt, r.Interval), nil
	}
	return time.Time{}, ErrInvalidFrequency
}

// Ended reports whether the rule's end timestamp (if any) excludes the given
// due date. A due date at or after EndsAt generates no further occurrences.
func (r *RecurrenceRule) Ended(due time.Time) bool {
	return r.EndsAt != nil && !due.Before(*r.EndsAt)
}

// addMonthsClamped adds the given number of calendar months, clamping the day
// of month to the last day of the target month. time.Time.AddDate would
// normalize Jan 31 + 1 month to Mar 2/3, which is not what a monthly
// schedule means.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	// Anchor at the first of the month so AddDate cannot overflow, then
	// clamp the original day to the target month's length.
	anchor := time.Date(year, month, 1, hour, min, sec, t.Nanosecond(), t.Location())
	anchor = anchor.AddDate(0, months, 0)

	last := daysInMonth(anchor.Year(), anchor.Month())
	if day > last {
		day = last
	}

	return time.Date(anchor.Year(), anchor.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
