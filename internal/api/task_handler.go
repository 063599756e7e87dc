package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/handlescope/internal/api/shared"
	"github.com/phrazzld/handlescope/internal/platform/logger"
	"github.com/phrazzld/handlescope/internal/tasks"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	service tasks.Service
	logger  *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service tasks.Service, logger *slog.Logger) *TaskHandler {
	if service == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("service cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}
	return &TaskHandler{
		service: service,
		logger:  logger.With(slog.String("component", "task_handler")),
	}
}

// Routes registers the task endpoints on r.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks", h.ListTasks)
	r.Post("/tasks/import", h.ImportTasks)
	r.Get("/tasks/{id}", h.GetTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
	r.Post("/tasks/{id}/postpone", h.PostponeTask)
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.service.Create(r.Context(), req.toTask())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	log.Debug("task created", slog.Int64("task_id", task.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListTasks handles GET /tasks?assignee=name.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	assignee := r.URL.Query().Get("assignee")
	if assignee == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Query parameter assignee is required")
		return
	}

	ts, err := h.service.ListByAssignee(r.Context(), assignee)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	resp := TaskListResponse{Tasks: make([]TaskResponse, 0, len(ts))}
	for _, t := range ts {
		resp.Tasks = append(resp.Tasks, taskToResponse(t))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ImportTasks handles POST /tasks/import. Either every task is stored or
// none is.
func (h *TaskHandler) ImportTasks(w http.ResponseWriter, r *http.Request) {
	var req ImportTasksRequest
	if !h.decode(w, r, &req) {
		return
	}

	ts := make([]tasks.Task, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		ts = append(ts, t.toTask())
	}

	if err := h.service.Import(r.Context(), ts); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostponeTask handles POST /tasks/{id}/postpone.
func (h *TaskHandler) PostponeTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req PostponeTaskRequest
	if !h.decode(w, r, &req) {
		return
	}

	task, err := h.service.Postpone(r.Context(), id, time.Duration(req.Hours)*time.Hour)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	log.Debug("task postponed",
		slog.Int64("task_id", id),
		slog.Int("hours", req.Hours))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// pathID parses the {id} path parameter, writing a 400 response if it is
// missing or not a positive integer.
func (h *TaskHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task ID is required")
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Warn("invalid task ID format", slog.String("task_id", raw))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return 0, false
	}
	return id, true
}

// decode reads and validates the request body into v, writing a 400
// response on failure.
func (h *TaskHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if err := shared.DecodeJSON(w, r, v); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

func (h *TaskHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
