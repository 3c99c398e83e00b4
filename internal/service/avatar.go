package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/repository"
)

// DefaultAvatarMaxBytes caps raw uploads at 5 MiB.
const DefaultAvatarMaxBytes int64 = 5 << 20

// ImageNormalizer converts an uploaded image into the stored representation.
// *imaging.Normalizer implements it.
type ImageNormalizer interface {
	Normalize(raw []byte) ([]byte, error)
}

// AvatarService stores one normalized image per account.
type AvatarService struct {
	store    repository.Store
	images   ImageNormalizer
	maxBytes int64
	logger   *slog.Logger
}

func NewAvatarService(store repository.Store, images ImageNormalizer, maxBytes int64, logger *slog.Logger) *AvatarService {
	if maxBytes <= 0 {
		maxBytes = DefaultAvatarMaxBytes
	}
	return &AvatarService{
		store:    store,
		images:   images,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// MaxBytes is the largest raw upload Set accepts.
func (s *AvatarService) MaxBytes() int64 {
	return s.maxBytes
}

// Set normalizes raw and stores it as owner's avatar, creating the row on
// first upload. It returns the stored bytes.
func (s *AvatarService) Set(ctx context.Context, owner uuid.UUID, raw []byte) ([]byte, error) {
	if int64(len(raw)) > s.maxBytes {
		return nil, apperror.LargeFile(s.maxBytes)
	}

	file, err := s.images.Normalize(raw)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if _, err := tx.Accounts().GetByID(ctx, owner); err != nil {
			return err
		}

		_, err := tx.Avatars().Upsert(ctx, owner, file)
		return err
	})
	if err != nil {
		logFailure(s.logger, "failed to store avatar", err, slog.String("owner", owner.String()))
		return nil, err
	}

	s.logger.Info("avatar stored",
		slog.String("owner", owner.String()),
		slog.Int("bytes", len(file)),
	)
	return file, nil
}

// GetByOwner returns the stored image. A row without a file counts as
// missing.
func (s *AvatarService) GetByOwner(ctx context.Context, owner uuid.UUID) ([]byte, error) {
	var avatar *model.Avatar
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		avatar, err = tx.Avatars().GetByAccount(ctx, owner)
		return err
	})
	if err != nil {
		logFailure(s.logger, "failed to get avatar", err, slog.String("owner", owner.String()))
		return nil, err
	}
	if avatar.File == nil {
		return nil, apperror.NotFound("avatar for account", owner.String())
	}
	return avatar.File, nil
}

func (s *AvatarService) Delete(ctx context.Context, owner uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.Avatars().DeleteByAccount(ctx, owner)
	})
	if err != nil {
		logFailure(s.logger, "failed to delete avatar", err, slog.String("owner", owner.String()))
		return err
	}

	s.logger.Info("avatar deleted", slog.String("owner", owner.String()))
	return nil
}
