package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"task-manager/internal/domain"
)

// TaskRepository define la persistencia de tareas dentro de una lista.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) error
	ListByList(ctx context.Context, listID string) ([]domain.Task, error)
	Update(ctx context.Context, id, listID string, patch domain.TaskPatch) error
	Delete(ctx context.Context, id, listID string) (domain.Task, error)
	DeleteByList(ctx context.Context, listID string) (int64, error)
}

type PgTaskRepository struct {
	pool *pgxpool.Pool
}

func NewPgTaskRepository(pool *pgxpool.Pool) *PgTaskRepository {
	return &PgTaskRepository{pool: pool}
}

func (r *PgTaskRepository) Create(ctx context.Context, task domain.Task) error {
	const query = `
		INSERT INTO tasks (id, title, list_id, completed, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		task.ListID,
		task.Completed,
		task.CreatedAt,
	)
	return err
}

func (r *PgTaskRepository) ListByList(ctx context.Context, listID string) ([]domain.Task, error) {
	const query = `
		SELECT id, title, list_id, completed, created_at
		FROM tasks
		WHERE list_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.pool.Query(ctx, query, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.ListID, &t.Completed, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *PgTaskRepository) Update(ctx context.Context, id, listID string, patch domain.TaskPatch) error {
	const query = `
		UPDATE tasks
		SET title = COALESCE($3, title),
		    completed = COALESCE($4, completed)
		WHERE id = $1 AND list_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, listID, patch.Title, patch.Completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgTaskRepository) Delete(ctx context.Context, id, listID string) (domain.Task, error) {
	const query = `
		DELETE FROM tasks
		WHERE id = $1 AND list_id = $2
		RETURNING id, title, list_id, completed, created_at
	`
	var t domain.Task
	err := r.pool.QueryRow(ctx, query, id, listID).Scan(&t.ID, &t.Title, &t.ListID, &t.Completed, &t.CreatedAt)
	if err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (r *PgTaskRepository) DeleteByList(ctx context.Context, listID string) (int64, error) {
	const query = `DELETE FROM tasks WHERE list_id = $1`
	tag, err := r.pool.Exec(ctx, query, listID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
