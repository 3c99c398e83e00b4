package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/auth"
	"github.com/sakif/taskflow/internal/model"
)

// currentAccount returns the caller's id. Routes using it sit behind
// auth.RequireAuth, so a missing claim means the router is miswired.
func currentAccount(r *http.Request) (uuid.UUID, error) {
	id, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, apperror.InvalidCredentials("missing authorization header")
	}
	return id, nil
}

// pathID parses a UUID URL parameter.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.ValidationFailed(name, "must be a valid UUID")
	}
	return id, nil
}

// pageFromQuery reads ?limit= and ?offset=. Missing values take the
// defaults; out-of-range values are clamped by model.NewPage.
func pageFromQuery(r *http.Request) (model.Page, error) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		return model.Page{}, err
	}
	offset, err := intQuery(r, "offset")
	if err != nil {
		return model.Page{}, err
	}
	return model.NewPage(limit, offset), nil
}

func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, "must be an integer")
	}
	return n, nil
}
