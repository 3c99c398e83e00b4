package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/taskflow/internal/apperror"
	"github.com/sakif/taskflow/internal/model"
	"github.com/sakif/taskflow/internal/repository"
)

var _ repository.TaskRepository = (*taskRepo)(nil)

type taskRepo struct {
	tx *tx
}

const taskColumns = `id, account_id, name, description, status, deadline, created_at, updated_at`

func scanTask(row scanner) (*model.Task, error) {
	var (
		t        model.Task
		deadline sql.NullTime
	)
	err := row.Scan(&t.ID, &t.AccountID, &t.Name, &t.Description, &t.Status,
		&deadline, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		d := deadline.Time.UTC()
		t.Deadline = &d
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// deadlineArg binds an optional deadline; nil becomes NULL.
func deadlineArg(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.UTC()
}

func (r *taskRepo) Create(ctx context.Context, t *model.Task) error {
	t.ID = uuid.New()
	now := r.tx.now()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.tx.exec(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Name, t.Description, t.Status,
		deadlineArg(t.Deadline), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return apperror.Store("inserting task", err)
	}
	return nil
}

func (r *taskRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	t, err := scanTask(r.tx.queryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("task", id.String())
	}
	if err != nil {
		return nil, apperror.Store("getting task", err)
	}
	return t, nil
}

// ListByAccount pages through one account's tasks. Without a status filter
// done tasks are hidden.
func (r *taskRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, filter model.TaskFilter, page model.Page) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE account_id = ?`
	args := []any{accountID}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	} else {
		query += ` AND status <> ?`
		args = append(args, model.TaskStatusDone)
	}
	query += ` ORDER BY created_at, id LIMIT ? OFFSET ?`
	args = append(args, page.Limit, page.Offset)

	rows, err := r.tx.query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Store("listing tasks", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, apperror.Store("scanning task", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("iterating tasks", err)
	}
	return tasks, nil
}

// Update writes the mutable columns. account_id never changes.
func (r *taskRepo) Update(ctx context.Context, t *model.Task) error {
	t.UpdatedAt = r.tx.now()
	return r.tx.execOne(ctx, "updating task", apperror.NotFound("task", t.ID.String()),
		`UPDATE tasks SET name = ?, description = ?, status = ?, deadline = ?, updated_at = ? WHERE id = ?`,
		t.Name, t.Description, t.Status, deadlineArg(t.Deadline), t.UpdatedAt, t.ID,
	)
}

func (r *taskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.tx.execOne(ctx, "deleting task", apperror.NotFound("task", id.String()),
		`DELETE FROM tasks WHERE id = ?`, id)
}
