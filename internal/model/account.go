// Package model defines the data structures used throughout the application.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Account limits shared by validation and the schema.
const (
	AccountNameMinLength = 3
	AccountNameMaxLength = 16
	EmailMaxLength       = 320
	PasswordMinLength    = 8
	PasswordMaxLength    = 128
)

// Account is a registered user.
//
// PasswordHash is the Argon2id PHC string; it never leaves the server, so
// it is excluded from JSON.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountCreate is the registration payload.
type AccountCreate struct {
	Name     string `json:"name"     validate:"required,min=3,max=16,account_name"`
	Email    string `json:"email"    validate:"required,max=320,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// AccountPatch is a partial update; nil fields are left unchanged.
type AccountPatch struct {
	Name     *string `json:"name"     validate:"omitnil,min=3,max=16,account_name"`
	Email    *string `json:"email"    validate:"omitnil,max=320,email"`
	Password *string `json:"password" validate:"omitnil,min=8,max=128"`
}

// Credentials is the sign-in payload. Login is the account name.
type Credentials struct {
	Login    string `json:"login"    validate:"required,min=3,max=16,account_name"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Token is returned by sign-in.
type Token struct {
	Token string `json:"token"`
}
