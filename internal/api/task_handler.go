// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/grahamCodes/project-manager-app/internal/api/shared"
	"github.com/grahamCodes/project-manager-app/internal/domain"
	"github.com/grahamCodes/project-manager-app/internal/platform/logger"
	"github.com/grahamCodes/project-manager-app/internal/service"
)

const defaultListLimit = 100

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks requests.
// It creates a task in one of the caller's projects, seeding the initial
// instance when a recurrence is supplied.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.userID(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	recurrence, err := recurrenceInput(req.Recurrence)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	status := domain.TaskStatus(req.Status)
	if req.Status == "" {
		status = domain.TaskStatusNotStarted
	}

	details, err := h.taskService.CreateTask(r.Context(), userID, service.CreateTaskParams{
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      status,
		Priority:    req.Priority,
		Recurrence:  recurrence,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task created",
		slog.String("task_id", details.Task.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskDetailsToResponse(details))
}

// GetTask handles GET /tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.userID(w, r, log)
	if !ok {
		return
	}

	taskID, ok := h.taskID(w, r, log)
	if !ok {
		return
	}

	details, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskDetailsToResponse(details))
}

// ListTasks handles GET /tasks requests. Supports limit and offset query
// parameters; the default limit is 100.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.userID(w, r, log)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid offset parameter")
		return
	}

	details, err := h.taskService.ListTasks(r.Context(), userID, limit, offset)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]TaskResponse, 0, len(details))
	for _, d := range details {
		responses = append(responses, taskDetailsToResponse(d))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// UpdateTask handles PUT /tasks/{id} requests: the full replacement update
// that turns recurrence on or off and reconciles the instance state.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.userID(w, r, log)
	if !ok {
		return
	}

	taskID, ok := h.taskID(w, r, log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	recurrence, err := recurrenceInput(req.Recurrence)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
		return
	}

	details, err := h.taskService.UpdateTask(r.Context(), userID, taskID, service.UpdateTaskParams{
		Name:        req.Name,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      domain.TaskStatus(req.Status),
		Priority:    req.Priority,
		Recurrence:  recurrence,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, taskDetailsToResponse(details))
}

// ToggleStatus handles PATCH /tasks/{id}/status requests.
// It flips the task (or, for recurring tasks, its latest instance) between
// In Progress and Complete. No request body is required.
func (h *TaskHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.userID(w, r, log)
	if !ok {
		return
	}

	taskID, ok := h.taskID(w, r, log)
	if !ok {
		return
	}

	details, err := h.taskService.ToggleStatus(r.Context(), userID, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task status toggled",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, taskDetailsToResponse(details))
}

// userID extracts the authenticated user ID from the request context.
// Writes a 401 response and returns false when absent.
func (h *TaskHandler) userID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// taskID extracts and parses the task ID from the URL path.
// Writes a 400 response and returns false when missing or malformed.
func (h *TaskHandler) taskID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		log.Warn("task ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return uuid.Nil, false
	}

	taskID, err := uuid.Parse(raw)
	if err != nil {
		log.Warn("invalid task ID format", slog.String("task_id", raw))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return uuid.Nil, false
	}
	return taskID, true
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
