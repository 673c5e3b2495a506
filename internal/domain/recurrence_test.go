package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewRecurrenceRule(t *testing.T) {
	t.Parallel()
	taskID := uuid.New()

	rule, err := NewRecurrenceRule(taskID, FrequencyDaily, 2, nil, nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rule.TaskID != taskID {
		t.Errorf("Expected task ID %s, got %s", taskID, rule.TaskID)
	}

	if rule.Interval != 2 {
		t.Errorf("Expected interval 2, got %d", rule.Interval)
	}

	if rule.CreatedAt.IsZero() || rule.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Zero interval normalizes to the default of 1
	rule, err = NewRecurrenceRule(taskID, FrequencyWeekly, 0, nil, nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rule.Interval != 1 {
		t.Errorf("Expected interval normalized to 1, got %d", rule.Interval)
	}

	// Invalid task ID
	if _, err = NewRecurrenceRule(uuid.Nil, FrequencyDaily, 1, nil, nil, nil); err != ErrRuleTaskIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrRuleTaskIDEmpty, err)
	}

	// Invalid frequency
	if _, err = NewRecurrenceRule(taskID, Frequency("YEARLY"), 1, nil, nil, nil); err != ErrInvalidFrequency {
		t.Errorf("Expected error %v, got %v", ErrInvalidFrequency, err)
	}

	// Negative interval
	if _, err = NewRecurrenceRule(taskID, FrequencyDaily, -1, nil, nil, nil); err != ErrRuleIntervalTooLow {
		t.Errorf("Expected error %v, got %v", ErrRuleIntervalTooLow, err)
	}

	// Out-of-range selectors
	if _, err = NewRecurrenceRule(taskID, FrequencyWeekly, 1, []int{7}, nil, nil); err != ErrRuleWeekdayRange {
		t.Errorf("Expected error %v, got %v", ErrRuleWeekdayRange, err)
	}
	if _, err = NewRecurrenceRule(taskID, FrequencyMonthly, 1, nil, []int{0}, nil); err != ErrRuleMonthdayRange {
		t.Errorf("Expected error %v, got %v", ErrRuleMonthdayRange, err)
	}
}

func TestParseFrequency(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"DAILY", "WEEKLY", "MONTHLY"} {
		freq, err := ParseFrequency(raw)
		if err != nil {
			t.Errorf("Expected %q to parse, got %v", raw, err)
		}
		if string(freq) != raw {
			t.Errorf("Expected frequency %q, got %q", raw, freq)
		}
	}

	for _, raw := range []string{"", "daily", "YEARLY", "HOURLY"} {
		if _, err := ParseFrequency(raw); err != ErrInvalidFrequency {
			t.Errorf("Expected %q to fail with %v, got %v", raw, ErrInvalidFrequency, err)
		}
	}
}

func TestNextDue(t *testing.T) {
	t.Parallel()
	taskID := uuid.New()
	completed := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		name      string
		frequency Frequency
		interval  int
		completed time.Time
		want      time.Time
	}{
		{
			name:      "daily advances by interval days",
			frequency: FrequencyDaily,
			interval:  1,
			completed: completed,
			want:      time.Date(2026, time.March, 11, 14, 30, 0, 0, time.UTC),
		},
		{
			name:      "daily with interval 3",
			frequency: FrequencyDaily,
			interval:  3,
			completed: completed,
			want:      time.Date(2026, time.March, 13, 14, 30, 0, 0, time.UTC),
		},
		{
			name:      "weekly advances by seven days per interval",
			frequency: FrequencyWeekly,
			interval:  2,
			completed: completed,
			want:      time.Date(2026, time.March, 24, 14, 30, 0, 0, time.UTC),
		},
		{
			name:      "monthly advances by calendar month",
			frequency: FrequencyMonthly,
			interval:  1,
			completed: completed,
			want:      time.Date(2026, time.April, 10, 14, 30, 0, 0, time.UTC),
		},
		{
			name:      "monthly clamps Jan 31 to Feb 28",
			frequency: FrequencyMonthly,
			interval:  1,
			completed: time.Date(2026, time.January, 31, 9, 0, 0, 0, time.UTC),
			want:      time.Date(2026, time.February, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly clamps Jan 31 to Feb 29 in a leap year",
			frequency: FrequencyMonthly,
			interval:  1,
			completed: time.Date(2028, time.January, 31, 9, 0, 0, 0, time.UTC),
			want:      time.Date(2028, time.February, 29, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly keeps the day when it fits",
			frequency: FrequencyMonthly,
			interval:  2,
			completed: time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC),
			want:      time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly across a year boundary",
			frequency: FrequencyMonthly,
			interval:  1,
			completed: time.Date(2026, time.December, 31, 9, 0, 0, 0, time.UTC),
			want:      time.Date(2027, time.January, 31, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rule, err := NewRecurrenceRule(taskID, tc.frequency, tc.interval, nil, nil, nil)
			if err != nil {
				t.Fatalf("Expected no error building rule, got %v", err)
			}

			got, err := rule.NextDue(tc.completed)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("Expected next due %v, got %v", tc.want, got)
			}
		})
	}
}

func TestNextDueUnsupportedFrequency(t *testing.T) {
	t.Parallel()

	// A rule can carry a bad frequency if it was stored before validation
	// tightened; NextDue must refuse it rather than guess.
	rule := &RecurrenceRule{TaskID: uuid.New(), Frequency: Frequency("YEARLY"), Interval: 1}
	if _, err := rule.NextDue(time.Now()); err != ErrInvalidFrequency {
		t.Errorf("Expected error %v, got %v", ErrInvalidFrequency, err)
	}
}

func TestEnded(t *testing.T) {
	t.Parallel()
	endsAt := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	rule := &RecurrenceRule{
		TaskID:    uuid.New(),
		Frequency: FrequencyDaily,
		Interval:  1,
		EndsAt:    &endsAt,
	}

	if rule.Ended(endsAt.Add(-time.Hour)) {
		t.Error("Expected due date before EndsAt to continue the series")
	}

	if !rule.Ended(endsAt) {
		t.Error("Expected due date equal to EndsAt to end the series")
	}

	if !rule.Ended(endsAt.Add(time.Hour)) {
		t.Error("Expected due date after EndsAt to end the series")
	}

	open := &RecurrenceRule{TaskID: uuid.New(), Frequency: FrequencyDaily, Interval: 1}
	if open.Ended(time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected a rule without EndsAt to never end")
	}
}
