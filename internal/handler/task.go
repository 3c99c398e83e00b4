package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/service"
)

// TaskHandler serves /task. Every route requires a token; the owner is
// always the token's subject.
type TaskHandler struct {
	tasks    *service.TaskService
	validate *Validator
	logger   *slog.Logger
}

func NewTaskHandler(tasks *service.TaskService, validate *Validator, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, validate: validate, logger: logger}
}

// HTTP: POST /task
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, err := currentAccount(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var in model.TaskCreate
	if err := h.validate.decode(w, r, &in); err != nil {
		WriteError(w, r, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), owner, in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// HandleListMine lists the caller's tasks. Done tasks only appear with
// ?status=done.
//
// HTTP: GET /task/me?limit=&offset=&status=
func (h *TaskHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	owner, err := currentAccount(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	page, err := pageFromQuery(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var filter model.TaskFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseTaskStatus(raw)
		if err != nil {
			WriteError(w, r, apperror.ValidationFailed("status", "must be one of to_do, in_progress, done"))
			return
		}
		filter.Status = &status
	}

	tasks, err := h.tasks.List(r.Context(), owner, filter, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HTTP: PATCH /task/{task_id}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, err := currentAccount(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := pathID(r, "task_id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var patch model.TaskPatch
	if err := h.validate.decode(w, r, &patch); err != nil {
		WriteError(w, r, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), owner, id, patch)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// HTTP: DELETE /task/{task_id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, err := currentAccount(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := pathID(r, "task_id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.tasks.Delete(r.Context(), owner, id); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
