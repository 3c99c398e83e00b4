package model

import (
	"time"

	"github.com/google/uuid"
)

// Avatar is the single profile image of an account. File is nil until the
// first upload.
type Avatar struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	File      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}
