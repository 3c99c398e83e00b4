package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/repository"
)

var _ repository.CommentRepository = (*commentRepo)(nil)

type commentRepo struct {
	tx *tx
}

const commentColumns = `id, task_id, account_id, text, created_at, updated_at`

func scanComment(row scanner) (*model.Comment, error) {
	var c model.Comment
	if err := row.Scan(&c.ID, &c.TaskID, &c.AccountID, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func (r *commentRepo) Create(ctx context.Context, c *model.Comment) error {
	c.ID = uuid.New()
	now := r.tx.now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.tx.exec(ctx,
		`INSERT INTO task_comments (`+commentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.TaskID, c.AccountID, c.Text, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return apperror.Store("inserting comment", err)
	}
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	c, err := scanComment(r.tx.queryRow(ctx, `SELECT `+commentColumns+` FROM task_comments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("comment", id.String())
	}
	if err != nil {
		return nil, apperror.Store("getting comment", err)
	}
	return c, nil
}

func (r *commentRepo) ListByTask(ctx context.Context, taskID uuid.UUID, page model.Page) ([]model.Comment, error) {
	rows, err := r.tx.query(ctx,
		`SELECT `+commentColumns+` FROM task_comments
		 WHERE task_id = ?
		 ORDER BY created_at, id
		 LIMIT ? OFFSET ?`,
		taskID, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, apperror.Store("listing comments", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, apperror.Store("scanning comment", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("iterating comments", err)
	}
	return comments, nil
}

// Update rewrites the text only; task_id and account_id are fixed at
// creation.
func (r *commentRepo) Update(ctx context.Context, c *model.Comment) error {
	c.UpdatedAt = r.tx.now()
	return r.tx.execOne(ctx, "updating comment", apperror.NotFound("comment", c.ID.String()),
		`UPDATE task_comments SET text = ?, updated_at = ? WHERE id = ?`,
		c.Text, c.UpdatedAt, c.ID,
	)
}

func (r *commentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.tx.execOne(ctx, "deleting comment", apperror.NotFound("comment", id.String()),
		`DELETE FROM task_comments WHERE id = ?`, id)
}
