package recurrence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// BatchGenerator is the part of the Generator the scheduler depends on.
type BatchGenerator interface {
	Generate(ctx context.Context, timezone string) error
}

// Scheduler runs the generator for each configured timezone label at that
// label's UTC hour. It is an in-process stand-in for an external cron; the
// one-shot command remains the way to trigger a batch out of band.
type Scheduler struct {
	generator BatchGenerator
	schedule  map[string]int
	interval  time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewScheduler creates a Scheduler over the given generator. schedule maps a
// timezone label to the UTC hour (0-23) at which its batch runs.
func NewScheduler(
	generator BatchGenerator,
	schedule map[string]int,
	logger *slog.Logger,
) (*Scheduler, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	for label, hour := range schedule {
		if hour < 0 || hour > 23 {
			return nil, fmt.Errorf("invalid UTC hour %d for timezone %q", hour, label)
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		generator: generator,
		schedule:  schedule,
		interval:  time.Minute,
		logger:    logger.With(slog.String("component", "recurrence_scheduler")),
	}, nil
}

// Start launches the scheduling loop in the background. It returns an error
// if the scheduler is already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true

	s.logger.Info("starting recurrence scheduler",
		slog.Int("timezones", len(s.schedule)))
	go s.run(ctx)
	return nil
}

// Stop cancels the scheduling loop and waits for in-flight batches to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.started = false
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("recurrence scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Tracks the last fired hour per label so a batch runs once per hour even
	// though the loop ticks every minute.
	lastFired := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.fireDue(ctx, now.UTC(), lastFired)
		}
	}
}

// fireDue runs the batch for every label whose UTC hour matches now and that
// has not already fired this hour. Labels fire concurrently since their task
// sets are disjoint; the call waits for all of them before returning so the
// loop never stacks overlapping rounds.
func (s *Scheduler) fireDue(ctx context.Context, now time.Time, lastFired map[string]time.Time) {
	hour := now.Truncate(time.Hour)

	var wg sync.WaitGroup
	for label, h := range s.schedule {
		if now.Hour() != h || lastFired[label].Equal(hour) {
			continue
		}
		lastFired[label] = hour

		wg.Add(1)
		go func(label string) {
			defer wg.Done()
			if err := s.generator.Generate(ctx, label); err != nil {
				s.logger.Error("scheduled generation failed",
					slog.String("timezone", label),
					slog.String("error", err.Error()))
			}
		}(label)
	}
	wg.Wait()
}
