package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"task-manager/internal/domain"
)

// ListRepository define la persistencia de listas. Toda lectura o escritura
// puntual filtra por dueño, así una lista ajena se comporta como inexistente.
type ListRepository interface {
	Create(ctx context.Context, list domain.List) error
	ListByUser(ctx context.Context, userID string) ([]domain.List, error)
	GetOwned(ctx context.Context, id, userID string) (domain.List, error)
	UpdateOwned(ctx context.Context, id, userID string, patch domain.ListPatch) error
	DeleteOwned(ctx context.Context, id, userID string) (domain.List, error)
}

type PgListRepository struct {
	pool *pgxpool.Pool
}

func NewPgListRepository(pool *pgxpool.Pool) *PgListRepository {
	return &PgListRepository{pool: pool}
}

func (r *PgListRepository) Create(ctx context.Context, list domain.List) error {
	const query = `
		INSERT INTO lists (id, title, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		list.ID,
		list.Title,
		list.UserID,
		list.CreatedAt,
	)
	return err
}

func (r *PgListRepository) ListByUser(ctx context.Context, userID string) ([]domain.List, error) {
	const query = `
		SELECT id, title, user_id, created_at
		FROM lists
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := make([]domain.List, 0)
	for rows.Next() {
		var l domain.List
		if err := rows.Scan(&l.ID, &l.Title, &l.UserID, &l.CreatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *PgListRepository) GetOwned(ctx context.Context, id, userID string) (domain.List, error) {
	const query = `
		SELECT id, title, user_id, created_at
		FROM lists
		WHERE id = $1 AND user_id = $2
	`
	var l domain.List
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(&l.ID, &l.Title, &l.UserID, &l.CreatedAt)
	if err != nil {
		return domain.List{}, err
	}
	return l, nil
}

func (r *PgListRepository) UpdateOwned(ctx context.Context, id, userID string, patch domain.ListPatch) error {
	const query = `
		UPDATE lists
		SET title = COALESCE($3, title)
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, userID, patch.Title)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgListRepository) DeleteOwned(ctx context.Context, id, userID string) (domain.List, error) {
	const query = `
		DELETE FROM lists
		WHERE id = $1 AND user_id = $2
		RETURNING id, title, user_id, created_at
	`
	var l domain.List
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(&l.ID, &l.Title, &l.UserID, &l.CreatedAt)
	if err != nil {
		return domain.List{}, err
	}
	return l, nil
}
