package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grahamCodes/project-manager-app/internal/api/shared"
	"github.com/grahamCodes/project-manager-app/internal/domain"
	"github.com/grahamCodes/project-manager-app/internal/service"
)

// fakeTaskService implements service.TaskService with canned results and
// captures the parameters handlers pass through.
type fakeTaskService struct {
	details *service.TaskDetails
	list    []*service.TaskDetails
	err     error

	lastCreate service.CreateTaskParams
	lastUpdate service.UpdateTaskParams
	lastTaskID uuid.UUID
}

func (f *fakeTaskService) CreateTask(ctx context.Context, userID uuid.UUID, params service.CreateTaskParams) (*service.TaskDetails, error) {
	f.lastCreate = params
	return f.details, f.err
}

func (f *fakeTaskService) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*service.TaskDetails, error) {
	f.lastTaskID = taskID
	return f.details, f.err
}

func (f *fakeTaskService) ListTasks(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*service.TaskDetails, error) {
	return f.list, f.err
}

func (f *fakeTaskService) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, params service.UpdateTaskParams) (*service.TaskDetails, error) {
	f.lastTaskID = taskID
	f.lastUpdate = params
	return f.details, f.err
}

func (f *fakeTaskService) ToggleStatus(ctx context.Context, userID, taskID uuid.UUID) (*service.TaskDetails, error) {
	f.lastTaskID = taskID
	return f.details, f.err
}

// newTestRouter wires the handler into a chi router with a middleware that
// injects the given user ID, standing in for JWT authentication.
func newTestRouter(svc service.TaskService, userID uuid.UUID) http.Handler {
	handler := NewTaskHandler(svc, slog.Default())

	r := chi.NewRouter()
	if userID != uuid.Nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}

	r.Post("/api/tasks", handler.CreateTask)
	r.Get("/api/tasks", handler.ListTasks)
	r.Get("/api/tasks/{id}", handler.GetTask)
	r.Put("/api/tasks/{id}", handler.UpdateTask)
	r.Patch("/api/tasks/{id}/status", handler.ToggleStatus)
	return r
}

func sampleDetails(t *testing.T) *service.TaskDetails {
	t.Helper()
	task, err := domain.NewTask(
		uuid.New(),
		"Water the plants",
		nil,
		time.Date(2026, time.April, 5, 9, 0, 0, 0, time.UTC),
		domain.TaskStatusInProgress,
		1,
	)
	require.NoError(t, err)
	return &service.TaskDetails{Task: task}
}

func TestGetTask(t *testing.T) {
	t.Parallel()
	details := sampleDetails(t)
	svc := &fakeTaskService{details: details}
	router := newTestRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+details.Task.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, details.Task.ID, svc.lastTaskID)

	var resp TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, details.Task.ID, resp.ID)
	assert.Equal(t, "Water the plants", resp.Name)
	assert.Nil(t, resp.Recurrence)
	assert.Nil(t, resp.LatestInstance)
}

func TestGetTaskNotFound(t *testing.T) {
	t.Parallel()
	svc := &fakeTaskService{err: service.ErrTaskNotFound}
	router := newTestRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Task not found", resp.Error)
}

func TestGetTaskInvalidID(t *testing.T) {
	t.Parallel()
	router := newTestRouter(&fakeTaskService{}, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTaskRequiresUser(t *testing.T) {
	t.Parallel()
	router := newTestRouter(&fakeTaskService{}, uuid.Nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateTask(t *testing.T) {
	t.Parallel()
	details := sampleDetails(t)
	svc := &fakeTaskService{details: details}
	router := newTestRouter(svc, uuid.New())

	body := map[string]interface{}{
		"project_id": details.Task.ProjectID.String(),
		"name":       "Water the plants",
		"due_date":   "2026-04-05T09:00:00Z",
		"priority":   1,
		"recurrence": map[string]interface{}{
			"frequency": "DAILY",
			"interval":  1,
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.lastCreate.Recurrence)
	assert.Equal(t, domain.FrequencyDaily, svc.lastCreate.Recurrence.Frequency)
	assert.Equal(t, domain.TaskStatusNotStarted, svc.lastCreate.Status,
		"an omitted status defaults to Not Started")
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{
			name: "missing name",
			body: map[string]interface{}{
				"project_id": uuid.NewString(),
				"due_date":   "2026-04-05T09:00:00Z",
			},
		},
		{
			name: "bad project id",
			body: map[string]interface{}{
				"project_id": "nope",
				"name":       "x",
				"due_date":   "2026-04-05T09:00:00Z",
			},
		},
		{
			name: "unsupported frequency",
			body: map[string]interface{}{
				"project_id": uuid.NewString(),
				"name":       "x",
				"due_date":   "2026-04-05T09:00:00Z",
				"recurrence": map[string]interface{}{"frequency": "YEARLY"},
			},
		},
		{
			name: "unsupported status",
			body: map[string]interface{}{
				"project_id": uuid.NewString(),
				"name":       "x",
				"due_date":   "2026-04-05T09:00:00Z",
				"status":     "Done",
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			router := newTestRouter(&fakeTaskService{}, uuid.New())

			raw, err := json.Marshal(tc.body)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader(raw))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpdateTaskPassesRecurrence(t *testing.T) {
	t.Parallel()
	details := sampleDetails(t)
	svc := &fakeTaskService{details: details}
	router := newTestRouter(svc, uuid.New())

	endsAt := "2026-12-31T00:00:00Z"
	body := map[string]interface{}{
		"name":     "Water the plants",
		"due_date": "2026-04-05T09:00:00Z",
		"status":   "In Progress",
		"priority": 2,
		"recurrence": map[string]interface{}{
			"frequency":   "MONTHLY",
			"interval":    2,
			"ends_at":     endsAt,
			"by_monthday": []int{1, 15},
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	taskID := uuid.New()
	req := httptest.NewRequest(http.MethodPut, "/api/tasks/"+taskID.String(), bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, taskID, svc.lastTaskID)
	assert.Equal(t, domain.TaskStatusInProgress, svc.lastUpdate.Status)

	require.NotNil(t, svc.lastUpdate.Recurrence)
	assert.Equal(t, domain.FrequencyMonthly, svc.lastUpdate.Recurrence.Frequency)
	assert.Equal(t, 2, svc.lastUpdate.Recurrence.Interval)
	assert.Equal(t, []int{1, 15}, svc.lastUpdate.Recurrence.ByMonthday)
	require.NotNil(t, svc.lastUpdate.Recurrence.EndsAt)
}

func TestUpdateTaskWithoutRecurrence(t *testing.T) {
	t.Parallel()
	details := sampleDetails(t)
	svc := &fakeTaskService{details: details}
	router := newTestRouter(svc, uuid.New())

	body := map[string]interface{}{
		"name":     "Water the plants",
		"due_date": "2026-04-05T09:00:00Z",
		"status":   "Complete",
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/tasks/"+uuid.NewString(), bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.lastUpdate.Recurrence, "an absent recurrence payload turns recurrence off")
}

func TestToggleStatusConflict(t *testing.T) {
	t.Parallel()
	svc := &fakeTaskService{err: service.ErrNoInstance}
	router := newTestRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodPatch, "/api/tasks/"+uuid.NewString()+"/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestToggleStatus(t *testing.T) {
	t.Parallel()
	details := sampleDetails(t)
	svc := &fakeTaskService{details: details}
	router := newTestRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodPatch, "/api/tasks/"+details.Task.ID.String()+"/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, details.Task.ID, svc.lastTaskID)
}

func TestListTasks(t *testing.T) {
	t.Parallel()
	details := sampleDetails(t)
	svc := &fakeTaskService{list: []*service.TaskDetails{details}}
	router := newTestRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks?limit=10&offset=0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, details.Task.ID, resp[0].ID)
}

func TestListTasksRejectsBadPagination(t *testing.T) {
	t.Parallel()
	router := newTestRouter(&fakeTaskService{}, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/tasks?limit=-5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
