// Package apperror defines the typed failures returned by the service layer.
//
// Every failure is an *AppError wrapping one of the sentinel errors below.
// Callers branch with errors.Is(err, apperror.ErrNotFound) and friends; the
// HTTP layer maps each sentinel to a status code.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrHashing            = errors.New("hashing error")
	ErrToken              = errors.New("token error")
	ErrLargeFile          = errors.New("file too large")
	ErrInvalidImage       = errors.New("invalid image")
	ErrStore              = errors.New("store error")
)

// FieldError is one entry of a field-level validation report.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Err     error        // sentinel kind
	Message string       // Human-readable error message
	Field   string       // Optional: field causing the error
	Value   string       // Optional: offending value (conflicts)
	Fields  []FieldError // Optional: full validation report
	Cause   error        // Optional: underlying failure, never shown to clients
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// apperror.ErrStore as well as, say, context.DeadlineExceeded.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Kind returns the sentinel this error was built from.
func (e *AppError) Kind() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Fields:  []FieldError{{Field: field, Message: message}},
	}
}

// Invalid bundles a multi-field validation report into one error.
func Invalid(fields []FieldError) *AppError {
	msg := "validation failed"
	if len(fields) > 0 {
		msg = fmt.Sprintf("validation failed: %s: %s", fields[0].Field, fields[0].Message)
	}
	return &AppError{
		Err:     ErrValidation,
		Message: msg,
		Fields:  fields,
	}
}

// Conflict reports a uniqueness violation on field.
func Conflict(field, value string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("record with %s=%s already exists", field, value),
		Field:   field,
		Value:   value,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidCredentials covers failed sign-ins and every token verification
// failure. The message is for logs; clients must not branch on it.
func InvalidCredentials(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: message,
	}
}

func Hashing(cause error) *AppError {
	return &AppError{
		Err:     ErrHashing,
		Message: "error with hashing value",
		Cause:   cause,
	}
}

func Token(cause error) *AppError {
	return &AppError{
		Err:     ErrToken,
		Message: "error with creating token",
		Cause:   cause,
	}
}

func LargeFile(limit int64) *AppError {
	return &AppError{
		Err:     ErrLargeFile,
		Message: fmt.Sprintf("file is too large (limit %d bytes)", limit),
	}
}

func InvalidImage(cause error) *AppError {
	msg := "invalid image"
	if cause != nil {
		msg = "invalid image: " + cause.Error()
	}
	return &AppError{
		Err:     ErrInvalidImage,
		Message: msg,
		Cause:   cause,
	}
}

// Store wraps an underlying storage failure. op names what was being done,
// e.g. "inserting task".
func Store(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStore,
		Message: fmt.Sprintf("store: %s: %v", op, cause),
		Cause:   cause,
	}
}
