package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/auth"
	"github.com/sakif/taskflow/internal/config"
	"github.com/sakif/taskflow/internal/handler"
	"github.com/sakif/taskflow/internal/model"
)

const testSecret = "test-secret-at-least-16-chars!!"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWith(t, func(*config.Config) {})
}

func newTestServerWith(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := config.Config{
		Port:            8080,
		DBDriver:        "sqlite",
		DBDSN:           ":memory:",
		JWTSecret:       testSecret,
		TokenTTL:        time.Hour,
		AvatarMaxBytes:  5 << 20,
		AvatarMaxPixels: 4096 * 4096,
		AvatarSide:      32,
	}
	mutate(&cfg)
	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	passwords := auth.NewPasswordServiceWithParams(auth.Argon2Params{
		Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})

	s, err := New(cfg, logger, WithPasswordService(passwords))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func (s *Server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// register creates an account and signs it in.
func (s *Server) register(t *testing.T, name string) (model.Account, string) {
	t.Helper()

	rr := s.do(t, http.MethodPost, "/user", "", model.AccountCreate{
		Name: name, Email: name + "@example.com", Password: "correct horse",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	account := decodeBody[model.Account](t, rr)

	rr = s.do(t, http.MethodPost, "/auth/sign_in", "", model.Credentials{Login: name, Password: "correct horse"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return account, decodeBody[model.Token](t, rr).Token
}

func (s *Server) createTask(t *testing.T, token, name string, status model.TaskStatus) model.Task {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/task", token, model.TaskCreate{
		Name: name, Description: "something to do", Status: status,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[model.Task](t, rr)
}

func multipartImage(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (s *Server) upload(t *testing.T, token string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartImage(t, "image", data)
	req := httptest.NewRequest(http.MethodPost, "/user/me/avatar", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRegister_DuplicateName(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "archdrdr")

	rr := s.do(t, http.MethodPost, "/user", "", model.AccountCreate{
		Name: "archdrdr", Email: "other@example.com", Password: "correct horse",
	})

	assert.Equal(t, http.StatusConflict, rr.Code)
	body := decodeBody[handler.ErrorResponse](t, rr)
	assert.Equal(t, "conflict", body.Error)
	assert.Equal(t, "name", body.Field)
}

func TestRegister_InvalidPayload(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/user", "", map[string]string{"name": "a!", "email": "nope"})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	fields := decodeBody[[]apperror.FieldError](t, rr)
	assert.NotEmpty(t, fields)
}

func TestRegister_PasswordHashNeverReturned(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/user", "", model.AccountCreate{
		Name: "archdrdr", Email: "arch@example.com", Password: "correct horse",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "argon2id")
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestSignIn(t *testing.T) {
	s := newTestServer(t)
	account, _ := s.register(t, "archdrdr")

	rr := s.do(t, http.MethodPost, "/auth/sign_in", "", model.Credentials{Login: "archdrdr", Password: "wrong horse"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))

	rr = s.do(t, http.MethodPost, "/auth/sign_in", "", model.Credentials{Login: "nobody", Password: "correct horse"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(t, http.MethodPost, "/auth/sign_in", "", model.Credentials{Login: "archdrdr", Password: "correct horse"})
	require.Equal(t, http.StatusOK, rr.Code)

	claims, err := s.tokens.Verify(decodeBody[model.Token](t, rr).Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.Subject)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/user/me", "/task/me", "/user/me/avatar"} {
		rr := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	rr := s.do(t, http.MethodGet, "/user/me", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGitHubRoutesAbsentWhenNotConfigured(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/auth/github/login", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGitHubLogin_SetsStateAndRedirects(t *testing.T) {
	s := newTestServerWith(t, func(c *config.Config) {
		c.GitHubClientID = "client-id"
		c.GitHubClientSecret = "client-secret"
		c.GitHubCallbackURL = "http://localhost:8080/auth/github/callback"
	})

	rr := s.do(t, http.MethodGet, "/auth/github/login", "", nil)
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "oauth_state", cookies[0].Name)
	assert.Contains(t, rr.Header().Get("Location"), "state="+cookies[0].Value)
	assert.Contains(t, rr.Header().Get("Location"), "github.com")

	// a callback without the cookie never reaches GitHub
	rr = s.do(t, http.MethodGet, "/auth/github/callback?code=abc&state="+cookies[0].Value, "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAccount_MeAndUpdate(t *testing.T) {
	s := newTestServer(t)
	account, token := s.register(t, "archdrdr")
	s.register(t, "kalinka")

	rr := s.do(t, http.MethodGet, "/user/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, account.ID, decodeBody[model.Account](t, rr).ID)

	rr = s.do(t, http.MethodPatch, "/user/me", token, map[string]string{"name": "kalinka"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, http.MethodPatch, "/user/me", token, map[string]string{"name": "arch_2"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "arch_2", decodeBody[model.Account](t, rr).Name)

	rr = s.do(t, http.MethodGet, "/user/"+account.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "arch_2", decodeBody[model.Account](t, rr).Name)

	rr = s.do(t, http.MethodGet, "/user?name=rch", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	found := decodeBody[[]model.Account](t, rr)
	require.Len(t, found, 1)
	assert.Equal(t, account.ID, found[0].ID)
}

func TestTask_OwnershipIsEnforced(t *testing.T) {
	s := newTestServer(t)
	_, tokenA := s.register(t, "alice")
	_, tokenB := s.register(t, "bob")
	task := s.createTask(t, tokenA, "write report", model.TaskStatusToDo)

	rr := s.do(t, http.MethodPatch, "/task/"+task.ID.String(), tokenB, map[string]string{"name": "stolen"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodDelete, "/task/"+task.ID.String(), tokenB, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodPost, "/task/"+task.ID.String()+"/comment", tokenB, map[string]string{"text": "mine now"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(t, http.MethodPatch, "/task/"+task.ID.String(), tokenA, map[string]string{"status": "in_progress"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.TaskStatusInProgress, decodeBody[model.Task](t, rr).Status)
}

func TestTask_InvalidPathID(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "alice")

	rr := s.do(t, http.MethodDelete, "/task/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestTask_DoneHiddenByDefault(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "alice")
	s.createTask(t, token, "open task", model.TaskStatusToDo)
	done := s.createTask(t, token, "closed task", model.TaskStatusDone)

	rr := s.do(t, http.MethodGet, "/task/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	tasks := decodeBody[[]model.Task](t, rr)
	require.Len(t, tasks, 1)
	assert.Equal(t, "open task", tasks[0].Name)

	rr = s.do(t, http.MethodGet, "/task/me?status=done", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	tasks = decodeBody[[]model.Task](t, rr)
	require.Len(t, tasks, 1)
	assert.Equal(t, done.ID, tasks[0].ID)

	rr = s.do(t, http.MethodGet, "/task/me?status=later", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestComment_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "alice")
	task := s.createTask(t, token, "write report", model.TaskStatusToDo)
	base := "/task/" + task.ID.String() + "/comment"

	rr := s.do(t, http.MethodPost, base, token, map[string]string{"text": "first draft done"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	comment := decodeBody[model.Comment](t, rr)

	rr = s.do(t, http.MethodPatch, base+"/"+comment.ID.String(), token, map[string]string{"text": "second draft done"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "second draft done", decodeBody[model.Comment](t, rr).Text)

	rr = s.do(t, http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]model.Comment](t, rr), 1)

	rr = s.do(t, http.MethodDelete, base+"/"+comment.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodDelete, base+"/"+comment.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAvatar_UploadAndFetch(t *testing.T) {
	s := newTestServer(t)
	account, token := s.register(t, "alice")

	rr := s.upload(t, token, testPNG(t, 64, 48))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	stored := rr.Body.Bytes()

	img, err := png.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())

	rr = s.do(t, http.MethodGet, "/user/me/avatar", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, stored, rr.Body.Bytes())

	rr = s.do(t, http.MethodGet, "/user/"+account.ID.String()+"/avatar", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, stored, rr.Body.Bytes())

	rr = s.do(t, http.MethodDelete, "/user/me/avatar", token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodGet, "/user/me/avatar", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAvatar_TooLarge(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "alice")

	rr := s.upload(t, token, bytes.Repeat([]byte{0xff}, 10<<20))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "large_file", decodeBody[handler.ErrorResponse](t, rr).Error)
}

func TestAvatar_NotAnImage(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "alice")

	rr := s.upload(t, token, []byte("definitely not a png"))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "invalid_image", decodeBody[handler.ErrorResponse](t, rr).Error)
}

func TestDeleteAccount_Cascades(t *testing.T) {
	s := newTestServer(t)
	account, token := s.register(t, "alice")
	task := s.createTask(t, token, "write report", model.TaskStatusToDo)
	rr := s.do(t, http.MethodPost, "/task/"+task.ID.String()+"/comment", token, map[string]string{"text": "started"})
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, http.StatusCreated, s.upload(t, token, testPNG(t, 8, 8)).Code)

	rr = s.do(t, http.MethodDelete, "/user/me", token, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodGet, "/user/"+account.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodGet, "/user/"+account.ID.String()+"/avatar", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// the token is still valid until it expires, but owns nothing
	rr = s.do(t, http.MethodGet, "/task/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[[]model.Task](t, rr))

	rr = s.do(t, http.MethodPatch, "/task/"+task.ID.String(), token, map[string]string{"name": "ghost task"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodPost, "/auth/sign_in", "", model.Credentials{Login: "alice", Password: "correct horse"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
