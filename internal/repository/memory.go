package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"task-manager/internal/domain"
)

var (
	_ UserRepository = (*PgUserRepository)(nil)
	_ UserRepository = (*MemoryUserRepository)(nil)
	_ ListRepository = (*PgListRepository)(nil)
	_ ListRepository = (*MemoryListRepository)(nil)
	_ TaskRepository = (*PgTaskRepository)(nil)
	_ TaskRepository = (*MemoryTaskRepository)(nil)
)

// MemoryUserRepository guarda usuarios en memoria. Se usa en desarrollo cuando no
// hay DATABASE_URL y en tests; reporta pgx.ErrNoRows igual que la versión Postgres.
type MemoryUserRepository struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return ErrEmailExists
	}
	user.Sessions = cloneSessions(user.Sessions)
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(id)
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return r.getLocked(id)
}

func (r *MemoryUserRepository) GetByIDAndToken(_ context.Context, id, token string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, err := r.getLocked(id)
	if err != nil {
		return domain.User{}, err
	}
	for _, s := range user.Sessions {
		if s.Token == token {
			return user, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (r *MemoryUserRepository) AppendSession(_ context.Context, userID string, session domain.Session, pruneBefore int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	kept := make([]domain.Session, 0, len(user.Sessions)+1)
	for _, s := range user.Sessions {
		if s.ExpiresAt > pruneBefore {
			kept = append(kept, s)
		}
	}
	user.Sessions = append(kept, session)
	r.byID[userID] = user
	return nil
}

func (r *MemoryUserRepository) getLocked(id string) (domain.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	user.Sessions = cloneSessions(user.Sessions)
	return user, nil
}

func cloneSessions(in []domain.Session) []domain.Session {
	out := make([]domain.Session, len(in))
	copy(out, in)
	return out
}

// MemoryListRepository guarda listas en memoria respetando el orden de inserción.
type MemoryListRepository struct {
	mu    sync.Mutex
	lists []domain.List
}

func NewMemoryListRepository() *MemoryListRepository {
	return &MemoryListRepository{}
}

func (r *MemoryListRepository) Create(_ context.Context, list domain.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, list)
	return nil
}

func (r *MemoryListRepository) ListByUser(_ context.Context, userID string) ([]domain.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.List, 0)
	for _, l := range r.lists {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *MemoryListRepository) GetOwned(_ context.Context, id, userID string) (domain.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOwned(id, userID)
	if i < 0 {
		return domain.List{}, pgx.ErrNoRows
	}
	return r.lists[i], nil
}

func (r *MemoryListRepository) UpdateOwned(_ context.Context, id, userID string, patch domain.ListPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOwned(id, userID)
	if i < 0 {
		return pgx.ErrNoRows
	}
	if patch.Title != nil {
		r.lists[i].Title = *patch.Title
	}
	return nil
}

func (r *MemoryListRepository) DeleteOwned(_ context.Context, id, userID string) (domain.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOwned(id, userID)
	if i < 0 {
		return domain.List{}, pgx.ErrNoRows
	}
	removed := r.lists[i]
	r.lists = append(r.lists[:i], r.lists[i+1:]...)
	return removed, nil
}

func (r *MemoryListRepository) indexOwned(id, userID string) int {
	for i, l := range r.lists {
		if l.ID == id && l.UserID == userID {
			return i
		}
	}
	return -1
}

// MemoryTaskRepository guarda tareas en memoria respetando el orden de inserción.
type MemoryTaskRepository struct {
	mu    sync.Mutex
	tasks []domain.Task
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{}
}

func (r *MemoryTaskRepository) Create(_ context.Context, task domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *MemoryTaskRepository) ListByList(_ context.Context, listID string) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Task, 0)
	for _, t := range r.tasks {
		if t.ListID == listID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, id, listID string, patch domain.TaskPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id, listID)
	if i < 0 {
		return pgx.ErrNoRows
	}
	if patch.Title != nil {
		r.tasks[i].Title = *patch.Title
	}
	if patch.Completed != nil {
		r.tasks[i].Completed = *patch.Completed
	}
	return nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id, listID string) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id, listID)
	if i < 0 {
		return domain.Task{}, pgx.ErrNoRows
	}
	removed := r.tasks[i]
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return removed, nil
}

func (r *MemoryTaskRepository) DeleteByList(_ context.Context, listID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.tasks[:0]
	var removed int64
	for _, t := range r.tasks {
		if t.ListID == listID {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	r.tasks = kept
	return removed, nil
}

func (r *MemoryTaskRepository) index(id, listID string) int {
	for i, t := range r.tasks {
		if t.ID == id && t.ListID == listID {
			return i
		}
	}
	return -1
}
