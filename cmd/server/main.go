// Package main implements the entry point for the project manager API server,
// which serves the task and project endpoints and optionally runs the
// in-process recurrence scheduler.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/grahamCodes/project-manager-app/internal/config"
	"github.com/grahamCodes/project-manager-app/internal/platform/logger"
	"github.com/grahamCodes/project-manager-app/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, wires the application and starts the HTTP server.
// It blocks until the server shuts down.
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

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"scheduler_enabled", cfg.Recurrence.SchedulerEnabled)

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	appLogger.Info("Database schema up to date")

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
