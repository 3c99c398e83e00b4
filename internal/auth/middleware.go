package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sakif/taskflow/internal/apperror"
)

// contextKey is an unexported type used for context keys in this package,
// so no other package can read or shadow the values stored here.
type contextKey string

const claimsKey contextKey = "claims"

// ErrorWriter writes an error response. The handler package supplies it so
// that 401s share the JSON shape of every other error.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads "Authorization: Bearer <token>", verifies the token and stores the
// claims in the request context. A missing header, a malformed header and a
// bad token all produce apperror.ErrInvalidCredentials (401); only the
// message differs.
func RequireAuth(tokens *TokenService, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := ClaimsFromRequest(r, tokens)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromRequest extracts and verifies the bearer token of r.
func ClaimsFromRequest(r *http.Request, tokens *TokenService) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, apperror.InvalidCredentials("missing authorization header")
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, apperror.InvalidCredentials("malformed authorization header")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.InvalidCredentials("malformed authorization header")
	}

	return tokens.Verify(token)
}

// AccountIDFromContext retrieves the authenticated account id.
// Returns (uuid.Nil, false) outside a RequireAuth-protected route.
func AccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	if !ok || claims == nil {
		return uuid.Nil, false
	}
	return claims.Subject, true
}

// WithClaims stores claims in ctx. Handler tests use it to skip the
// middleware.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
