package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	CommentTextMinLength = 4
	CommentTextMaxLength = 4096
)

// Comment is a note attached to a task. AccountID duplicates the task's
// owner at write time, for audit.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	AccountID uuid.UUID `json:"account_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommentCreate struct {
	Text string `json:"text" validate:"required,min=4,max=4096"`
}

type CommentPatch struct {
	Text *string `json:"text" validate:"omitnil,min=4,max=4096"`
}
