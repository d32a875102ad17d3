package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/extract-api/internal/api/shared"
	"github.com/phrazzld/extract-api/internal/domain"
	"github.com/phrazzld/extract-api/internal/service"
)

// TaskHandler serves progress and result queries for extraction tasks.
type TaskHandler struct {
	service *service.ExtractionService
	logger  *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.ExtractionService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{service: svc, logger: logger}
}

// GetProgress handles GET /task-progress/{taskID} requests, returning the
// task's full current snapshot. An unknown id yields a 404 with a not_found
// status body, matching what pollers expect for expired tasks.
func (h *TaskHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	snap, err := h.service.Progress(taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			shared.RespondWithJSON(w, r, http.StatusNotFound, NotFoundTaskResponse{
				TaskID:  taskID,
				Status:  string(domain.TaskStatusNotFound),
				Message: "Task not found",
			})
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// GetResult handles GET /task-result/{taskID} requests. The stored result is
// only served once the task has completed; polling too early is a 400.
func (h *TaskHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	snap, err := h.service.Result(taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// GetActiveTasks handles GET /active-tasks requests.
func (h *TaskHandler) GetActiveTasks(w http.ResponseWriter, r *http.Request) {
	active := h.service.ActiveTasks()
	if active == nil {
		active = []domain.TaskSnapshot{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, active)
}

// ClearCache handles POST /clear-cache requests, dropping every cache to
// free memory.
func (h *TaskHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCaches()
	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{
		Status:  "success",
		Message: "All caches cleared",
	})
}

// Health handles GET /health requests.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{
		Status:  "ok",
		Service: "extract-api",
	})
}
