package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/service"
)

const stateCookie = "oauth_state"

// AuthURLer builds the GitHub authorization URL. *auth.GitHubProvider
// implements it.
type AuthURLer interface {
	AuthURL(state string) string
}

// AuthHandler serves password sign-in and, when configured, the GitHub
// OAuth flow. Tokens are returned in the body; the client sends them back
// as "Authorization: Bearer <token>".
type AuthHandler struct {
	auth     *service.AuthService
	github   AuthURLer // nil when GitHub sign-in is disabled
	validate *Validator
	logger   *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, github AuthURLer, validate *Validator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		github:   github,
		validate: validate,
		logger:   logger,
	}
}

// HandleSignIn exchanges login and password for a token.
//
// HTTP: POST /auth/sign_in
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := h.validate.decode(w, r, &creds); err != nil {
		WriteError(w, r, err)
		return
	}

	token, err := h.auth.SignIn(r.Context(), creds)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

// HandleGitHubLogin redirects the browser to GitHub.
//
// HTTP: GET /auth/github/login
//
// The random state is kept in a short-lived HttpOnly cookie and compared on
// the callback, which proves the flow started here (CSRF protection).
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/github",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the flow and answers with a token.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("auth callback: invalid OAuth state")
		WriteError(w, r, &badRequest{msg: "invalid OAuth state"})
		return
	}

	// single use
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth/github", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: authorization denied", slog.String("error", errParam))
		WriteError(w, r, &badRequest{msg: "GitHub authorization denied: " + errParam})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		WriteError(w, r, &badRequest{msg: "missing OAuth code"})
		return
	}

	token, err := h.auth.SignInWithGitHub(r.Context(), code)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}
