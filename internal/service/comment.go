package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/repository"
)

// CommentService manages comments nested under tasks. Authorization goes
// outermost first: the parent task must exist and belong to the caller
// before the comment itself is looked at.
type CommentService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewCommentService(store repository.Store, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, logger: logger}
}

func (s *CommentService) Create(ctx context.Context, owner, taskID uuid.UUID, in model.CommentCreate) (*model.Comment, error) {
	var comment *model.Comment

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if _, err := ownedTask(ctx, tx.Tasks(), owner, taskID); err != nil {
			return err
		}
		comment = &model.Comment{
			TaskID:    taskID,
			AccountID: owner,
			Text:      in.Text,
		}
		return tx.Comments().Create(ctx, comment)
	})
	if err != nil {
		logFailure(s.logger, "failed to create comment", err, slog.String("task_id", taskID.String()))
		return nil, err
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID.String()),
		slog.String("task_id", taskID.String()),
	)
	return comment, nil
}

func (s *CommentService) List(ctx context.Context, owner, taskID uuid.UUID, page model.Page) ([]model.Comment, error) {
	var comments []model.Comment

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if _, err := ownedTask(ctx, tx.Tasks(), owner, taskID); err != nil {
			return err
		}
		var err error
		comments, err = tx.Comments().ListByTask(ctx, taskID, page)
		return err
	})
	if err != nil {
		logFailure(s.logger, "failed to list comments", err, slog.String("task_id", taskID.String()))
		return nil, err
	}
	return comments, nil
}

func (s *CommentService) Update(ctx context.Context, owner, taskID, id uuid.UUID, patch model.CommentPatch) (*model.Comment, error) {
	var comment *model.Comment

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		comment, err = ownedComment(ctx, tx, owner, taskID, id)
		if err != nil {
			return err
		}
		if patch.Text != nil {
			comment.Text = *patch.Text
		}
		return tx.Comments().Update(ctx, comment)
	})
	if err != nil {
		logFailure(s.logger, "failed to update comment", err, slog.String("id", id.String()))
		return nil, err
	}

	s.logger.Info("comment updated", slog.String("id", id.String()))
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, owner, taskID, id uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if _, err := ownedComment(ctx, tx, owner, taskID, id); err != nil {
			return err
		}
		return tx.Comments().Delete(ctx, id)
	})
	if err != nil {
		logFailure(s.logger, "failed to delete comment", err, slog.String("id", id.String()))
		return err
	}

	s.logger.Info("comment deleted", slog.String("id", id.String()))
	return nil
}

// ownedComment checks the parent task, then the comment. A comment that
// exists but hangs off another task is Forbidden, not NotFound.
func ownedComment(ctx context.Context, tx repository.Tx, owner, taskID, id uuid.UUID) (*model.Comment, error) {
	if _, err := ownedTask(ctx, tx.Tasks(), owner, taskID); err != nil {
		return nil, err
	}
	comment, err := tx.Comments().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AccountID != owner || comment.TaskID != taskID {
		return nil, apperror.Forbidden("comment belongs to another task or account")
	}
	return comment, nil
}
