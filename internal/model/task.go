package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TaskNameMinLength        = 4
	TaskNameMaxLength        = 512
	TaskDescriptionMinLength = 4
	TaskDescriptionMaxLength = 4096
)

// TaskStatus is the workflow state of a task. Any status may move to any
// other status.
type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "to_do"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// ParseTaskStatus converts a query-string value into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown task status %q", s)
	}
	return status, nil
}

// Task is a unit of work owned by exactly one account.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	AccountID   uuid.UUID  `json:"account_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskCreate is the payload for a new task. The owner comes from the token,
// never from the body.
type TaskCreate struct {
	Name        string     `json:"name"        validate:"required,min=4,max=512"`
	Description string     `json:"description" validate:"required,min=4,max=4096"`
	Status      TaskStatus `json:"status"      validate:"required,task_status"`
	Deadline    *time.Time `json:"deadline"`
}

// TaskPatch is a partial update; nil fields are left unchanged.
//
// JSON cannot tell "deadline absent" from "deadline: null" with a plain
// pointer, so UnmarshalJSON sets ClearDeadline for an explicit null.
type TaskPatch struct {
	Name          *string     `json:"name"        validate:"omitnil,min=4,max=512"`
	Description   *string     `json:"description" validate:"omitnil,min=4,max=4096"`
	Status        *TaskStatus `json:"status"      validate:"omitnil,task_status"`
	Deadline      *time.Time  `json:"deadline"`
	ClearDeadline bool        `json:"-"`
}

func (p *TaskPatch) UnmarshalJSON(data []byte) error {
	type plain TaskPatch
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if d, ok := raw["deadline"]; ok && string(d) == "null" {
		v.ClearDeadline = true
	}
	*p = TaskPatch(v)
	return nil
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil &&
		p.Deadline == nil && !p.ClearDeadline
}

// Apply merges the patch into t. It does not touch UpdatedAt.
func (p TaskPatch) Apply(t *Task) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	switch {
	case p.ClearDeadline:
		t.Deadline = nil
	case p.Deadline != nil:
		d := *p.Deadline
		t.Deadline = &d
	}
}

// TaskFilter narrows a task listing. A nil Status hides done tasks.
type TaskFilter struct {
	Status *TaskStatus
}
