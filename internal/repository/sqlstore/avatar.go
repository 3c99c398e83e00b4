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

var _ repository.AvatarRepository = (*avatarRepo)(nil)

type avatarRepo struct {
	tx *tx
}

func (r *avatarRepo) GetByAccount(ctx context.Context, accountID uuid.UUID) (*model.Avatar, error) {
	var av model.Avatar
	err := r.tx.queryRow(ctx,
		`SELECT id, account_id, file, created_at, updated_at FROM avatars WHERE account_id = ?`,
		accountID,
	).Scan(&av.ID, &av.AccountID, &av.File, &av.CreatedAt, &av.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("avatar for account", accountID.String())
	}
	if err != nil {
		return nil, apperror.Store("getting avatar", err)
	}
	av.CreatedAt = av.CreatedAt.UTC()
	av.UpdatedAt = av.UpdatedAt.UTC()
	return &av, nil
}

// Upsert relies on avatars_account_id_key: a conflicting insert turns into
// an update of file and updated_at, keeping the original id and created_at.
func (r *avatarRepo) Upsert(ctx context.Context, accountID uuid.UUID, file []byte) (*model.Avatar, error) {
	now := r.tx.now()
	_, err := r.tx.exec(ctx,
		`INSERT INTO avatars (id, account_id, file, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (account_id) DO UPDATE SET file = excluded.file, updated_at = excluded.updated_at`,
		uuid.New(), accountID, file, now, now,
	)
	if err != nil {
		return nil, apperror.Store("upserting avatar", err)
	}
	return r.GetByAccount(ctx, accountID)
}

func (r *avatarRepo) DeleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	return r.tx.execOne(ctx, "deleting avatar", apperror.NotFound("avatar for account", accountID.String()),
		`DELETE FROM avatars WHERE account_id = ?`, accountID)
}
