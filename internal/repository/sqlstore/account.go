package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/repository"
)

var _ repository.AccountRepository = (*accountRepo)(nil)

type accountRepo struct {
	tx *tx
}

const accountColumns = `id, name, email, password_hash, created_at, updated_at`

func scanAccount(row scanner) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}

// Create assigns the id and timestamps and inserts the row.
func (r *accountRepo) Create(ctx context.Context, a *model.Account) error {
	a.ID = uuid.New()
	now := r.tx.now()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := r.tx.exec(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Email, a.PasswordHash, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return accountWriteError("inserting account", a, err)
	}
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return r.getOne(ctx, "account", id.String(), `WHERE id = ?`, id)
}

func (r *accountRepo) GetByName(ctx context.Context, name string) (*model.Account, error) {
	return r.getOne(ctx, "account with name", name, `WHERE name = ?`, name)
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.getOne(ctx, "account with email", email, `WHERE email = ?`, email)
}

func (r *accountRepo) getOne(ctx context.Context, resource, key, where string, arg any) (*model.Account, error) {
	a, err := scanAccount(r.tx.queryRow(ctx, `SELECT `+accountColumns+` FROM accounts `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound(resource, key)
	}
	if err != nil {
		return nil, apperror.Store("getting account", err)
	}
	return a, nil
}

func (r *accountRepo) NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	return r.taken(ctx, `name = ?`, name, exclude)
}

func (r *accountRepo) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	return r.taken(ctx, `email = ?`, email, exclude)
}

func (r *accountRepo) taken(ctx context.Context, cond string, value string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := r.tx.queryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE `+cond+` AND id <> ?)`,
		value, exclude,
	).Scan(&exists)
	if err != nil {
		return false, apperror.Store("checking account uniqueness", err)
	}
	return exists, nil
}

// SearchByName returns accounts whose name contains substring, matched
// case-sensitively, ordered by (created_at, id).
func (r *accountRepo) SearchByName(ctx context.Context, substring string, page model.Page) ([]model.Account, error) {
	rows, err := r.tx.query(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE `+r.tx.dialect.contains+`
		 ORDER BY created_at, id
		 LIMIT ? OFFSET ?`,
		substring, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, apperror.Store("searching accounts", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, apperror.Store("scanning account", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("iterating accounts", err)
	}
	return accounts, nil
}

// Update writes every mutable column and stamps updated_at.
func (r *accountRepo) Update(ctx context.Context, a *model.Account) error {
	a.UpdatedAt = r.tx.now()

	res, err := r.tx.exec(ctx,
		`UPDATE accounts SET name = ?, email = ?, password_hash = ?, updated_at = ? WHERE id = ?`,
		a.Name, a.Email, a.PasswordHash, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return accountWriteError("updating account", a, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return apperror.Store("updating account", err)
	} else if n == 0 {
		return apperror.NotFound("account", a.ID.String())
	}
	return nil
}

// Delete removes the account; the schema cascades to its avatar, tasks and
// comments.
func (r *accountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.tx.execOne(ctx, "deleting account", apperror.NotFound("account", id.String()),
		`DELETE FROM accounts WHERE id = ?`, id)
}

// accountWriteError maps a UNIQUE violation to a Conflict on the offending
// field and anything else to a store failure.
func accountWriteError(op string, a *model.Account, err error) error {
	field, ok := uniqueViolation(err)
	if !ok {
		return apperror.Store(op, err)
	}
	switch field {
	case "name":
		return apperror.Conflict("name", a.Name)
	case "email":
		return apperror.Conflict("email", a.Email)
	default:
		return apperror.Conflict(field, "")
	}
}
