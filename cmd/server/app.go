package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/grahamCodes/project-manager-app/internal/config"
	"github.com/grahamCodes/project-manager-app/internal/platform/postgres"
	"github.com/grahamCodes/project-manager-app/internal/recurrence"
	"github.com/grahamCodes/project-manager-app/internal/service"
	"github.com/grahamCodes/project-manager-app/internal/service/auth"
	"github.com/grahamCodes/project-manager-app/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	taskStore     store.TaskStore
	instanceStore store.InstanceStore
	ruleStore     store.RuleStore
	projectStore  store.ProjectStore

	// Service interfaces
	jwtService  auth.JWTService
	taskService service.TaskService

	// Recurrence machinery
	generator *recurrence.Generator
	scheduler *recurrence.Scheduler
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize stores
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.instanceStore = postgres.NewPostgresInstanceStore(db, logger)
	app.ruleStore = postgres.NewPostgresRuleStore(db, logger)
	app.projectStore = postgres.NewPostgresProjectStore(db, logger)

	// Initialize the task service
	app.taskService, err = service.NewTaskService(
		db,
		app.taskStore,
		app.instanceStore,
		app.ruleStore,
		app.projectStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	// Initialize the recurrence generator and, when enabled, its scheduler
	app.generator, err = recurrence.NewGenerator(
		app.taskStore,
		app.instanceStore,
		app.ruleStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recurrence generator: %w", err)
	}

	if cfg.Recurrence.SchedulerEnabled {
		app.scheduler, err = recurrence.NewScheduler(
			app.generator,
			cfg.Recurrence.Schedule,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create recurrence scheduler: %w", err)
		}
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	if app.scheduler != nil {
		if err := app.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start recurrence scheduler: %w", err)
		}
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
