package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"task-manager/internal/domain"
)

// ErrEmailExists se devuelve cuando el email ya pertenece a otro usuario.
var ErrEmailExists = errors.New("email already exists")

const pgUniqueViolation = "23505"

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByIDAndToken(ctx context.Context, id, token string) (domain.User, error)
	// AppendSession agrega la sesión al final del set de forma atómica, descartando
	// antes las sesiones con expiresAt <= pruneBefore (0 conserva todas).
	AppendSession(ctx context.Context, userID string, session domain.Session, pruneBefore int64) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
// Las sesiones viven embebidas en el documento del usuario como un arreglo jsonb.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, sessions, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	sessions := user.Sessions
	if sessions == nil {
		sessions = []domain.Session{}
	}
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		sessions,
		user.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrEmailExists
	}
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, email, password_hash, sessions, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `
		SELECT id, email, password_hash, sessions, created_at
		FROM users
		WHERE email = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) GetByIDAndToken(ctx context.Context, id, token string) (domain.User, error) {
	const query = `
		SELECT id, email, password_hash, sessions, created_at
		FROM users
		WHERE id = $1
		  AND sessions @> jsonb_build_array(jsonb_build_object('token', $2::text))
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id, token))
}

func (r *PgUserRepository) AppendSession(ctx context.Context, userID string, session domain.Session, pruneBefore int64) error {
	const query = `
		UPDATE users
		SET sessions = COALESCE((
				SELECT jsonb_agg(s.elem ORDER BY s.idx)
				FROM jsonb_array_elements(users.sessions) WITH ORDINALITY AS s(elem, idx)
				WHERE (s.elem->>'expiresAt')::bigint > $4
			), '[]'::jsonb)
			|| jsonb_build_array(jsonb_build_object('token', $2::text, 'expiresAt', $3::bigint))
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, userID, session.Token, session.ExpiresAt, pruneBefore)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) scanOne(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Sessions,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
