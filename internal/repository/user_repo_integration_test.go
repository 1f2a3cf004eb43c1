package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/internal/db"
	"task-manager/internal/domain"
)

// Los tests de Postgres corren solo con TASK_MANAGER_TEST_DATABASE_URL definido.

func mustTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TASK_MANAGER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TASK_MANAGER_TEST_DATABASE_URL is not set; skipping Postgres integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, db.Migrate(ctx, pool))
	return pool
}

func mustCreateTestUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, repo *PgUserRepository) domain.User {
	t.Helper()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, user))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, user.ID)
	})
	return user
}

func TestPgUserRepository_CreateRejectsDuplicateEmail(t *testing.T) {
	pool := mustTestPool(t)
	ctx := context.Background()
	repo := NewPgUserRepository(pool)
	user := mustCreateTestUser(ctx, t, pool, repo)

	err := repo.Create(ctx, domain.User{ID: uuid.NewString(), Email: user.Email, PasswordHash: "x", CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestPgUserRepository_AppendSessionPrunesAndKeepsOrder(t *testing.T) {
	pool := mustTestPool(t)
	ctx := context.Background()
	repo := NewPgUserRepository(pool)
	user := mustCreateTestUser(ctx, t, pool, repo)

	require.NoError(t, repo.AppendSession(ctx, user.ID, domain.Session{Token: "old", ExpiresAt: 100}, 0))
	require.NoError(t, repo.AppendSession(ctx, user.ID, domain.Session{Token: "live-1", ExpiresAt: 5000}, 0))
	require.NoError(t, repo.AppendSession(ctx, user.ID, domain.Session{Token: "live-2", ExpiresAt: 6000}, 1000))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stored.Sessions, 2)
	assert.Equal(t, "live-1", stored.Sessions[0].Token)
	assert.Equal(t, "live-2", stored.Sessions[1].Token)
	assert.Equal(t, int64(6000), stored.Sessions[1].ExpiresAt)
}

func TestPgUserRepository_AppendSessionMissingUser(t *testing.T) {
	pool := mustTestPool(t)
	repo := NewPgUserRepository(pool)

	err := repo.AppendSession(context.Background(), uuid.NewString(), domain.Session{Token: "t", ExpiresAt: 1}, 0)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestPgUserRepository_GetByIDAndToken(t *testing.T) {
	pool := mustTestPool(t)
	ctx := context.Background()
	repo := NewPgUserRepository(pool)
	user := mustCreateTestUser(ctx, t, pool, repo)
	other := mustCreateTestUser(ctx, t, pool, repo)

	require.NoError(t, repo.AppendSession(ctx, user.ID, domain.Session{Token: "abc", ExpiresAt: 5000}, 0))

	found, err := repo.GetByIDAndToken(ctx, user.ID, "abc")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.GetByIDAndToken(ctx, user.ID, "ab")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = repo.GetByIDAndToken(ctx, other.ID, "abc")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestPgUserRepository_ConcurrentAppendSession(t *testing.T) {
	pool := mustTestPool(t)
	ctx := context.Background()
	repo := NewPgUserRepository(pool)
	user := mustCreateTestUser(ctx, t, pool, repo)

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.AppendSession(ctx, user.ID, domain.Session{Token: uuid.NewString(), ExpiresAt: 5000}, 1000)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	seen := make(map[string]bool, n)
	for _, s := range stored.Sessions {
		seen[s.Token] = true
	}
	assert.Len(t, seen, n)
}
