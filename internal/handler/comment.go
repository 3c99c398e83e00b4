package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/service"
)

// CommentHandler serves /task/{task_id}/comment.
type CommentHandler struct {
	comments *service.CommentService
	validate *Validator
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, validate *Validator, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, validate: validate, logger: logger}
}

// HTTP: POST /task/{task_id}/comment
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner, err := currentAccount(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	taskID, err := pathID(r, "task_id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var in model.CommentCreate
	if err := h.validate.decode(w, r, &in); err != nil {
		WriteError(w, r, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), owner, taskID, in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HTTP: GET /task/{task_id}/comment?limit=&offset=
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, err := currentAccount(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	taskID, err := pathID(r, "task_id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	comments, err := h.comments.List(r.Context(), owner, taskID, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HTTP: PATCH /task/{task_id}/comment/{id}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	owner, taskID, id, err := commentRoute(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var patch model.CommentPatch
	if err := h.validate.decode(w, r, &patch); err != nil {
		WriteError(w, r, err)
		return
	}

	comment, err := h.comments.Update(r.Context(), owner, taskID, id, patch)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// HTTP: DELETE /task/{task_id}/comment/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner, taskID, id, err := commentRoute(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.comments.Delete(r.Context(), owner, taskID, id); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func commentRoute(r *http.Request) (owner, taskID, id uuid.UUID, err error) {
	if owner, err = currentAccount(r); err != nil {
		return
	}
	if taskID, err = pathID(r, "task_id"); err != nil {
		return
	}
	id, err = pathID(r, "id")
	return
}
