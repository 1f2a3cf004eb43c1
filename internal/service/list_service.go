package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
)

var (
	ErrInvalidTitle = errors.New("title is required")
	ErrListNotFound = errors.New("list not found")
	ErrTaskNotFound = errors.New("task not found")
)

// ListService aplica las reglas de pertenencia sobre las listas de un usuario.
type ListService struct {
	logger *zap.Logger
	lists  repository.ListRepository
	tasks  repository.TaskRepository
}

func NewListService(logger *zap.Logger, lists repository.ListRepository, tasks repository.TaskRepository) *ListService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListService{logger: logger, lists: lists, tasks: tasks}
}

func (s *ListService) Lists(ctx context.Context, userID string) ([]domain.List, error) {
	return s.lists.ListByUser(ctx, userID)
}

func (s *ListService) Create(ctx context.Context, userID, title string) (domain.List, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.List{}, ErrInvalidTitle
	}
	list := domain.List{
		ID:        uuid.NewString(),
		Title:     title,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.lists.Create(ctx, list); err != nil {
		return domain.List{}, err
	}
	return list, nil
}

func (s *ListService) Update(ctx context.Context, userID, listID string, patch domain.ListPatch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return ErrInvalidTitle
		}
		patch.Title = &title
	}
	if err := s.lists.UpdateOwned(ctx, listID, userID, patch); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrListNotFound
		}
		return err
	}
	return nil
}

// Delete borra primero las tareas y después la lista, así un fallo intermedio
// deja la lista en pie y el borrado puede reintentarse.
func (s *ListService) Delete(ctx context.Context, userID, listID string) (domain.List, error) {
	list, err := s.owned(ctx, userID, listID)
	if err != nil {
		return domain.List{}, err
	}
	n, err := s.tasks.DeleteByList(ctx, list.ID)
	if err != nil {
		return domain.List{}, fmt.Errorf("delete tasks of list %s: %w", list.ID, err)
	}
	removed, err := s.lists.DeleteOwned(ctx, list.ID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.List{}, ErrListNotFound
		}
		return domain.List{}, err
	}
	s.logger.Debug("list deleted", zap.String("list_id", removed.ID), zap.Int64("tasks_deleted", n))
	return removed, nil
}

// owned resuelve la lista solo si pertenece al usuario.
func (s *ListService) owned(ctx context.Context, userID, listID string) (domain.List, error) {
	list, err := s.lists.GetOwned(ctx, listID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.List{}, ErrListNotFound
		}
		return domain.List{}, err
	}
	return list, nil
}
