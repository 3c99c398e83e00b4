package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeGitHub serves the token endpoint and the two API calls Exchange makes.
func fakeGitHub(t *testing.T, profileEmail string, emails []githubEmail) *GitHubProvider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"gho_test","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gho_test", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(GitHubUser{ID: 42, Login: "octocat", Email: profileEmail})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(emails)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewGitHubProvider("client-id", "client-secret", "http://localhost/cb")
	p.config.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/login/oauth/authorize",
		TokenURL: srv.URL + "/login/oauth/access_token",
	}
	p.apiBase = srv.URL
	return p
}

func TestGitHubProvider_AuthURLCarriesState(t *testing.T) {
	p := NewGitHubProvider("client-id", "client-secret", "http://localhost/cb")

	url := p.AuthURL("state-123")
	assert.True(t, strings.HasPrefix(url, "https://github.com/login/oauth/authorize"))
	assert.Contains(t, url, "state=state-123")
	assert.Contains(t, url, "client_id=client-id")
}

func TestGitHubProvider_ExchangeUsesProfileEmail(t *testing.T) {
	p := fakeGitHub(t, "octo@example.com", nil)

	user, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "octo@example.com", user.Email)
}

func TestGitHubProvider_ExchangeFallsBackToPrimaryVerifiedEmail(t *testing.T) {
	p := fakeGitHub(t, "", []githubEmail{
		{Email: "old@example.com", Primary: false, Verified: true},
		{Email: "unverified@example.com", Primary: true, Verified: false},
		{Email: "main@example.com", Primary: true, Verified: true},
	})

	user, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "main@example.com", user.Email)
}

func TestGitHubProvider_ExchangeNoUsableEmail(t *testing.T) {
	p := fakeGitHub(t, "", []githubEmail{{Email: "x@example.com", Primary: true, Verified: false}})

	user, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Empty(t, user.Email)
}
