package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/auth"
	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/repository"
)

// AccountService manages the account lifecycle.
//
// Name and email uniqueness is checked inside the same transaction as the
// write. The checks give a precise Conflict on the common path; the UNIQUE
// constraints catch the concurrent race and the store maps that to the same
// Conflict.
type AccountService struct {
	store     repository.Store
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAccountService(store repository.Store, passwords *auth.PasswordService, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:     store,
		passwords: passwords,
		logger:    logger,
	}
}

// Create registers a new account. The first conflict wins: name is checked
// before email.
func (s *AccountService) Create(ctx context.Context, in model.AccountCreate) (*model.Account, error) {
	var account *model.Account

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		accounts := tx.Accounts()
		if err := checkUnique(ctx, accounts, &in.Name, &in.Email, uuid.Nil); err != nil {
			return err
		}

		hash, err := s.passwords.Hash(in.Password)
		if err != nil {
			return err
		}

		account = &model.Account{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: hash,
		}
		return accounts.Create(ctx, account)
	})
	if err != nil {
		logFailure(s.logger, "failed to create account", err, slog.String("name", in.Name))
		return nil, err
	}

	s.logger.Info("account created",
		slog.String("id", account.ID.String()),
		slog.String("name", account.Name),
	)
	return account, nil
}

// GetByID returns apperror.ErrNotFound if the account does not exist.
func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account *model.Account
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		account, err = tx.Accounts().GetByID(ctx, id)
		return err
	})
	if err != nil {
		logFailure(s.logger, "failed to get account", err, slog.String("id", id.String()))
		return nil, err
	}
	return account, nil
}

// SearchByName lists accounts whose name contains substring. An empty
// result is not an error.
func (s *AccountService) SearchByName(ctx context.Context, substring string, page model.Page) ([]model.Account, error) {
	var accounts []model.Account
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		accounts, err = tx.Accounts().SearchByName(ctx, substring, page)
		return err
	})
	if err != nil {
		logFailure(s.logger, "failed to search accounts", err)
		return nil, err
	}
	return accounts, nil
}

// Update applies a partial update. A name or email already used by this
// same account is not a conflict.
func (s *AccountService) Update(ctx context.Context, id uuid.UUID, patch model.AccountPatch) (*model.Account, error) {
	var account *model.Account

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		accounts := tx.Accounts()

		var err error
		account, err = accounts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := checkUnique(ctx, accounts, patch.Name, patch.Email, id); err != nil {
			return err
		}

		if patch.Name != nil {
			account.Name = *patch.Name
		}
		if patch.Email != nil {
			account.Email = *patch.Email
		}
		if patch.Password != nil {
			hash, err := s.passwords.Hash(*patch.Password)
			if err != nil {
				return err
			}
			account.PasswordHash = hash
		}
		return accounts.Update(ctx, account)
	})
	if err != nil {
		logFailure(s.logger, "failed to update account", err, slog.String("id", id.String()))
		return nil, err
	}

	s.logger.Info("account updated", slog.String("id", id.String()))
	return account, nil
}

// Delete removes the account together with its avatar, tasks and comments.
func (s *AccountService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.Accounts().Delete(ctx, id)
	})
	if err != nil {
		logFailure(s.logger, "failed to delete account", err, slog.String("id", id.String()))
		return err
	}

	s.logger.Info("account deleted", slog.String("id", id.String()))
	return nil
}

// checkUnique returns a Conflict for the first supplied value another
// account already uses. nil values are skipped.
func checkUnique(ctx context.Context, accounts repository.AccountRepository, name, email *string, self uuid.UUID) error {
	if name != nil {
		taken, err := accounts.NameTaken(ctx, *name, self)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("name", *name)
		}
	}
	if email != nil {
		taken, err := accounts.EmailTaken(ctx, *email, self)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("email", *email)
		}
	}
	return nil
}
