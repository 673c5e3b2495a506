// Package main implements the one-shot recurrence generation command. It
// resolves a timezone label, runs one generation batch for it, and exits.
// Deployments without the in-process scheduler invoke it from cron.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/grahamCodes/project-manager-app/internal/config"
	"github.com/grahamCodes/project-manager-app/internal/platform/logger"
	"github.com/grahamCodes/project-manager-app/internal/platform/postgres"
	"github.com/grahamCodes/project-manager-app/internal/recurrence"
)

// timezoneEnvVar overrides the schedule-based timezone resolution.
const timezoneEnvVar = "RECURR_TZ"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Recurrence generation failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	timezone, ok := resolveTimezone(cfg, time.Now().UTC())
	if !ok {
		// No label is scheduled for this hour. That is a normal outcome for
		// an hourly cron entry, not a failure.
		appLogger.Info("no timezone scheduled for current hour, nothing to do",
			"utc_hour", time.Now().UTC().Hour())
		return nil
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", "error", err)
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	generator, err := recurrence.NewGenerator(
		postgres.NewPostgresTaskStore(db, appLogger),
		postgres.NewPostgresInstanceStore(db, appLogger),
		postgres.NewPostgresRuleStore(db, appLogger),
		appLogger,
	)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	if err := generator.Generate(ctx, timezone); err != nil {
		return fmt.Errorf("generation for %q failed: %w", timezone, err)
	}

	return nil
}

// resolveTimezone picks the timezone label for this run. Precedence: first
// command-line argument, then the RECURR_TZ environment variable, then the
// configured schedule entry for the current UTC hour. Returns false when
// nothing resolves.
func resolveTimezone(cfg *config.Config, now time.Time) (string, bool) {
	if len(os.Args) > 1 && os.Args[1] != "" {
		return os.Args[1], true
	}

	if tz := os.Getenv(timezoneEnvVar); tz != "" {
		return tz, true
	}

	hour := now.Hour()
	for label, h := range cfg.Recurrence.Schedule {
		if h == hour {
			return label, true
		}
	}

	return "", false
}
