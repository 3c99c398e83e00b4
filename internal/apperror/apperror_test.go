package apperror

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("task", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("name", "archdrdr"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrInvalidCredentials",
			err:       InvalidCredentials("bad token"),
			target:    ErrInvalidCredentials,
			wantMatch: true,
		},
		{
			name:      "Store wraps ErrStore",
			err:       Store("inserting task", errors.New("disk full")),
			target:    ErrStore,
			wantMatch: true,
		},
		{
			name:      "Store exposes its cause",
			err:       Store("beginning transaction", context.DeadlineExceeded),
			target:    context.DeadlineExceeded,
			wantMatch: true,
		},
		{
			name:      "wrapped with fmt.Errorf still matches",
			err:       fmt.Errorf("creating task: %w", Forbidden("not yours")),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("task", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "LargeFile does NOT match ErrInvalidImage",
			err:       LargeFile(10),
			target:    ErrInvalidImage,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("task", "abc123"),
			wantMessage: "task not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "name is required"),
			wantMessage: "name is required",
		},
		{
			name:        "Conflict message includes field and value",
			err:         Conflict("email", "a@x.com"),
			wantMessage: "record with email=a@x.com already exists",
		},
		{
			name:        "LargeFile message includes the limit",
			err:         LargeFile(5),
			wantMessage: "file is too large (limit 5 bytes)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestKind(t *testing.T) {
	err := NotFound("task", "abc123")
	if err.Kind() != ErrNotFound {
		t.Errorf("Kind() = %v, want %v", err.Kind(), ErrNotFound)
	}
}

func TestConflictFields(t *testing.T) {
	err := Conflict("name", "archdrdr")

	if err.Field != "name" {
		t.Errorf("Field = %q, want %q", err.Field, "name")
	}
	if err.Value != "archdrdr" {
		t.Errorf("Value = %q, want %q", err.Value, "archdrdr")
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid([]FieldError{
		{Field: "name", Message: "too short"},
		{Field: "email", Message: "not an email"},
	})

	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Invalid() should wrap ErrValidation")
	}
	if len(err.Fields) != 2 {
		t.Fatalf("len(Fields) = %d, want 2", len(err.Fields))
	}
	if err.Message != "validation failed: name: too short" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestSentinelsAreLowerCase(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrValidation, ErrConflict, ErrForbidden, ErrInvalidCredentials,
		ErrHashing, ErrToken, ErrLargeFile, ErrInvalidImage, ErrStore,
	}
	for _, err := range sentinels {
		if msg := err.Error(); msg != strings.ToLower(msg) {
			t.Errorf("sentinel %q should be lower case", msg)
		}
	}
}
