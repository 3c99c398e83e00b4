package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/repository"
)

// TaskService enforces single-owner access to tasks. Every lookup runs in
// the order NotFound, then Forbidden: a task that does not exist is reported
// as missing even to a caller who could never have owned it.
type TaskService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewTaskService(store repository.Store, logger *slog.Logger) *TaskService {
	return &TaskService{store: store, logger: logger}
}

// Create stamps owner on the new task; the payload cannot choose it.
func (s *TaskService) Create(ctx context.Context, owner uuid.UUID, in model.TaskCreate) (*model.Task, error) {
	task := &model.Task{
		AccountID:   owner,
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Deadline:    in.Deadline,
	}

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		// A token can outlive its account.
		if _, err := tx.Accounts().GetByID(ctx, owner); err != nil {
			return err
		}
		return tx.Tasks().Create(ctx, task)
	})
	if err != nil {
		logFailure(s.logger, "failed to create task", err, slog.String("owner", owner.String()))
		return nil, err
	}

	s.logger.Info("task created",
		slog.String("id", task.ID.String()),
		slog.String("owner", owner.String()),
	)
	return task, nil
}

// List returns the owner's tasks. Done tasks are hidden unless the filter
// asks for a status explicitly.
func (s *TaskService) List(ctx context.Context, owner uuid.UUID, filter model.TaskFilter, page model.Page) ([]model.Task, error) {
	var tasks []model.Task
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		tasks, err = tx.Tasks().ListByAccount(ctx, owner, filter, page)
		return err
	})
	if err != nil {
		logFailure(s.logger, "failed to list tasks", err, slog.String("owner", owner.String()))
		return nil, err
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, owner, id uuid.UUID, patch model.TaskPatch) (*model.Task, error) {
	var task *model.Task

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		task, err = ownedTask(ctx, tx.Tasks(), owner, id)
		if err != nil {
			return err
		}
		patch.Apply(task)
		return tx.Tasks().Update(ctx, task)
	})
	if err != nil {
		logFailure(s.logger, "failed to update task", err, slog.String("id", id.String()))
		return nil, err
	}

	s.logger.Info("task updated", slog.String("id", id.String()))
	return task, nil
}

// Delete removes the task and, through the schema, its comments.
func (s *TaskService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if _, err := ownedTask(ctx, tx.Tasks(), owner, id); err != nil {
			return err
		}
		return tx.Tasks().Delete(ctx, id)
	})
	if err != nil {
		logFailure(s.logger, "failed to delete task", err, slog.String("id", id.String()))
		return err
	}

	s.logger.Info("task deleted", slog.String("id", id.String()))
	return nil
}

// ownedTask loads a task and checks that owner holds it.
func ownedTask(ctx context.Context, tasks repository.TaskRepository, owner, id uuid.UUID) (*model.Task, error) {
	task, err := tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.AccountID != owner {
		return nil, apperror.Forbidden("task belongs to another account")
	}
	return task, nil
}
