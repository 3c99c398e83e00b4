package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/auth"
	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/repository"
)

// GitHubExchanger trades an OAuth authorization code for a GitHub profile.
// *auth.GitHubProvider implements it.
type GitHubExchanger interface {
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// AuthService exchanges credentials for bearer tokens.
//
//	AuthHandler (HTTP) → AuthService → AccountRepository (lookup)
//	                                 ↘ PasswordService (verify)
//	                                 ↘ TokenService (issue)
type AuthService struct {
	store     repository.Store
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	github    GitHubExchanger // nil when GitHub sign-in is not configured
	logger    *slog.Logger
}

func NewAuthService(
	store repository.Store,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	github GitHubExchanger,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		passwords: passwords,
		github:    github,
		logger:    logger,
	}
}

// SignIn verifies login (the account name) and password. An unknown login
// and a wrong password produce the same InvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, creds model.Credentials) (*model.Token, error) {
	var account *model.Account
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		account, err = tx.Accounts().GetByName(ctx, creds.Login)
		return err
	})
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return nil, apperror.InvalidCredentials("invalid login or password")
	case err != nil:
		logFailure(s.logger, "failed to look up account for sign-in", err)
		return nil, err
	}

	if !s.passwords.Verify(creds.Password, account.PasswordHash) {
		return nil, apperror.InvalidCredentials("invalid login or password")
	}

	return s.issue(account, "password")
}

// GitHubEnabled reports whether SignInWithGitHub can be used.
func (s *AuthService) GitHubEnabled() bool {
	return s.github != nil
}

// SignInWithGitHub completes the OAuth callback. The GitHub primary
// verified email must belong to an existing account; accounts are never
// created from GitHub.
func (s *AuthService) SignInWithGitHub(ctx context.Context, code string) (*model.Token, error) {
	if s.github == nil {
		return nil, apperror.InvalidCredentials("GitHub sign-in is not configured")
	}

	ghUser, err := s.github.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("GitHub code exchange failed", slog.String("error", err.Error()))
		return nil, apperror.InvalidCredentials("GitHub authorization failed")
	}
	if ghUser.Email == "" {
		return nil, apperror.InvalidCredentials("GitHub account has no verified email")
	}

	var account *model.Account
	err = s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		account, err = tx.Accounts().GetByEmail(ctx, ghUser.Email)
		return err
	})
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return nil, apperror.InvalidCredentials("no account uses this GitHub email")
	case err != nil:
		logFailure(s.logger, "failed to look up account for GitHub sign-in", err)
		return nil, err
	}

	return s.issue(account, "github")
}

func (s *AuthService) issue(account *model.Account, method string) (*model.Token, error) {
	token, err := s.tokens.Issue(account.ID, 0)
	if err != nil {
		logFailure(s.logger, "failed to issue token", err, slog.String("id", account.ID.String()))
		return nil, err
	}

	s.logger.Info("account signed in",
		slog.String("id", account.ID.String()),
		slog.String("method", method),
	)
	return &model.Token{Token: token}, nil
}
