package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sakif/taskflow/internal/auth"
	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/repository/sqlstore"
)

// =========================================================================
// HELPERS
// =========================================================================

// Services are exercised against a real in-memory SQLite store: the rules
// under test (uniqueness, cascades, one transaction per call) live as much
// in the schema as in Go.
func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.Open(context.Background(), sqlstore.Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testPasswords keeps Argon2 cheap so tests stay fast.
func testPasswords() *auth.PasswordService {
	return auth.NewPasswordServiceWithParams(auth.Argon2Params{
		Memory:      64,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
}

func testTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	require.NoError(t, err)
	return ts
}

type testEnv struct {
	store    *sqlstore.Store
	accounts *AccountService
	auth     *AuthService
	tasks    *TaskService
	comments *CommentService
	tokens   *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newTestStore(t)
	passwords := testPasswords()
	tokens := testTokens(t)
	logger := testLogger()
	return &testEnv{
		store:    store,
		accounts: NewAccountService(store, passwords, logger),
		auth:     NewAuthService(store, tokens, passwords, nil, logger),
		tasks:    NewTaskService(store, logger),
		comments: NewCommentService(store, logger),
		tokens:   tokens,
	}
}

func (e *testEnv) mustCreateAccount(t *testing.T, name string) *model.Account {
	t.Helper()
	a, err := e.accounts.Create(context.Background(), model.AccountCreate{
		Name:     name,
		Email:    name + "@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return a
}

func (e *testEnv) mustCreateTask(t *testing.T, owner uuid.UUID, name string) *model.Task {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), owner, model.TaskCreate{
		Name:        name,
		Description: "some description",
		Status:      model.TaskStatusToDo,
	})
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T {
	return &v
}
