package sqlstore

import (
	"context"
	"fmt"
)

// Schema statements are idempotent and run on every Open. Constraint names
// are shared between dialects so uniqueViolation can map either backend.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL,
		CONSTRAINT accounts_name_key UNIQUE (name),
		CONSTRAINT accounts_email_key UNIQUE (email)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_created_at ON accounts(created_at, id)`,
	`CREATE TABLE IF NOT EXISTS avatars (
		id         TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		file       BLOB,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		CONSTRAINT avatars_account_id_key UNIQUE (account_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		account_id  TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		description TEXT NOT NULL,
		status      TEXT NOT NULL CHECK (status IN ('to_do', 'in_progress', 'done')),
		deadline    DATETIME,
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_account_id ON tasks(account_id, created_at, id)`,
	`CREATE TABLE IF NOT EXISTS task_comments (
		id         TEXT PRIMARY KEY,
		task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		text       TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_task_comments_task_id ON task_comments(task_id, created_at, id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		CONSTRAINT accounts_name_key UNIQUE (name),
		CONSTRAINT accounts_email_key UNIQUE (email)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_created_at ON accounts(created_at, id)`,
	`CREATE TABLE IF NOT EXISTS avatars (
		id         UUID PRIMARY KEY,
		account_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		file       BYTEA,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT avatars_account_id_key UNIQUE (account_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          UUID PRIMARY KEY,
		account_id  UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		description TEXT NOT NULL,
		status      TEXT NOT NULL CHECK (status IN ('to_do', 'in_progress', 'done')),
		deadline    TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_account_id ON tasks(account_id, created_at, id)`,
	`CREATE TABLE IF NOT EXISTS task_comments (
		id         UUID PRIMARY KEY,
		task_id    UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		account_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		text       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_task_comments_task_id ON task_comments(task_id, created_at, id)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for i, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
