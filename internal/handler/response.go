package handler

// Every error response has the same shape:
//
//	{"error": "not_found", "detail": "task not found with id 6f1c..."}
//
// except validation failures, which return the field report as a list:
//
//	[{"field": "name", "message": "must be at least 3 characters"}]

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/taskflow/internal/apperror"
)

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error  string `json:"error"`           // machine-readable kind, e.g. "not_found"
	Detail string `json:"detail"`          // human-readable description
	Field  string `json:"field,omitempty"` // set on conflicts
}

// writeJSON sends data as JSON with the given status. Headers must be set
// before WriteHeader; anything set afterwards is silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already out; all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writePNG sends a stored avatar.
func writePNG(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// badRequest marks a request that could not be parsed at all (malformed
// JSON, wrong content type). It never leaves this package.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

// WriteError maps err to a status code and writes the response. It has the
// auth.ErrorWriter signature so 401s from the middleware look the same as
// every other error.
//
// Internal kinds (store, hashing, token, anything unknown) are logged and
// answered with a generic 500; their cause never reaches the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var br *badRequest
	if errors.As(err, &br) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Detail: br.msg})
		return
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeInternal(w, r, err)
		return
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		fields := appErr.Fields
		if len(fields) == 0 {
			fields = []apperror.FieldError{{Field: appErr.Field, Message: appErr.Message}}
		}
		writeJSON(w, http.StatusUnprocessableEntity, fields)
	case errors.Is(err, apperror.ErrLargeFile):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "large_file", Detail: appErr.Message})
	case errors.Is(err, apperror.ErrInvalidImage):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid_image", Detail: appErr.Message})
	case errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Detail: appErr.Message})
	case errors.Is(err, apperror.ErrForbidden):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden", Detail: appErr.Message})
	case errors.Is(err, apperror.ErrConflict):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "conflict", Detail: appErr.Message, Field: appErr.Field})
	case errors.Is(err, apperror.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", `Bearer realm="taskflow"`)
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid_credentials", Detail: appErr.Message})
	default:
		writeInternal(w, r, err)
	}
}

func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:  "internal_error",
		Detail: "an internal error occurred",
	})
}
