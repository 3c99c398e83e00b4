// Package service contains the business logic layer of the application.
//
//	Handler (HTTP)  → parses requests, validates payloads, writes responses
//	Service         → ownership and uniqueness rules, one transaction per call
//	Repository      → reads/writes rows inside that transaction
//
// Services hold only injected, immutable dependencies, so one instance is
// shared by every request goroutine. They depend on repository.Store, not on
// sqlstore, which keeps them testable against fakes as well as a real
// in-memory database.
package service

import (
	"errors"
	"log/slog"

	"github.com/sakif/taskflow/internal/apperror"
)

// internal reports whether err is a failure the client cannot fix. Those
// are logged at Error; NotFound, Forbidden and friends are normal outcomes.
func internal(err error) bool {
	return errors.Is(err, apperror.ErrStore) ||
		errors.Is(err, apperror.ErrHashing) ||
		errors.Is(err, apperror.ErrToken)
}

func logFailure(logger *slog.Logger, msg string, err error, attrs ...any) {
	if !internal(err) {
		return
	}
	logger.Error(msg, append(attrs, slog.String("error", err.Error()))...)
}
