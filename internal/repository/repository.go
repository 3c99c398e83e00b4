// Package repository declares the storage contracts the service layer runs
// against. The only implementation lives in repository/sqlstore; services
// depend on these interfaces so their tests can swap in fakes.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sakif/taskflow/internal/model"
)

// Store runs units of work atomically.
//
// WithinTx begins a transaction, hands fn a Tx bound to it and commits if fn
// returns nil. Any error from fn, or a panic, rolls the transaction back.
// Failing to begin or commit surfaces as apperror.ErrStore.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes every repository bound to one open transaction.
type Tx interface {
	Accounts() AccountRepository
	Avatars() AvatarRepository
	Tasks() TaskRepository
	Comments() CommentRepository
}

// AccountRepository persists accounts.
//
// Lookups return apperror.ErrNotFound for a missing row. Create and Update
// return apperror.ErrConflict when a UNIQUE constraint on name or email
// rejects the write.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByName(ctx context.Context, name string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	// NameTaken and EmailTaken ignore the row whose id is exclude; pass
	// uuid.Nil to check every row.
	NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	SearchByName(ctx context.Context, substring string, page model.Page) ([]model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AvatarRepository persists the single avatar row of an account.
type AvatarRepository interface {
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.Avatar, error)
	// Upsert inserts the account's avatar or replaces its file in a single
	// statement, so two first uploads racing each other both succeed.
	Upsert(ctx context.Context, accountID uuid.UUID, file []byte) (*model.Avatar, error)
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, filter model.TaskFilter, page model.Page) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	ListByTask(ctx context.Context, taskID uuid.UUID, page model.Page) ([]model.Comment, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
