package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/service"
)

// AccountHandler serves /user.
type AccountHandler struct {
	accounts *service.AccountService
	validate *Validator
	logger   *slog.Logger
}

func NewAccountHandler(accounts *service.AccountService, validate *Validator, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, validate: validate, logger: logger}
}

// HandleCreate registers an account. No token needed.
//
// HTTP: POST /user
func (h *AccountHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.AccountCreate
	if err := h.validate.decode(w, r, &in); err != nil {
		WriteError(w, r, err)
		return
	}

	account, err := h.accounts.Create(r.Context(), in)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// HandleSearch lists accounts whose name contains ?name=.
//
// HTTP: GET /user?name=&limit=&offset=
func (h *AccountHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	accounts, err := h.accounts.SearchByName(r.Context(), r.URL.Query().Get("name"), page)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// HTTP: GET /user/me
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, err := currentAccount(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	account, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// HTTP: GET /user/{id}
func (h *AccountHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	account, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// HTTP: PATCH /user/me
func (h *AccountHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	id, err := currentAccount(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var patch model.AccountPatch
	if err := h.validate.decode(w, r, &patch); err != nil {
		WriteError(w, r, err)
		return
	}

	account, err := h.accounts.Update(r.Context(), id, patch)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// HTTP: DELETE /user/me
func (h *AccountHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	id, err := currentAccount(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
