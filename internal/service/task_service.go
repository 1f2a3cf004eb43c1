package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
)

// TaskService opera tareas solo dentro de listas del usuario autenticado.
type TaskService struct {
	lists *ListService
	tasks repository.TaskRepository
}

func NewTaskService(lists *ListService, tasks repository.TaskRepository) *TaskService {
	return &TaskService{lists: lists, tasks: tasks}
}

func (s *TaskService) Tasks(ctx context.Context, userID, listID string) ([]domain.Task, error) {
	if _, err := s.lists.owned(ctx, userID, listID); err != nil {
		return nil, err
	}
	return s.tasks.ListByList(ctx, listID)
}

func (s *TaskService) Create(ctx context.Context, userID, listID, title string) (domain.Task, error) {
	list, err := s.lists.owned(ctx, userID, listID)
	if err != nil {
		return domain.Task{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Task{}, ErrInvalidTitle
	}
	task := domain.Task{
		ID:        uuid.NewString(),
		Title:     title,
		ListID:    list.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, userID, listID, taskID string, patch domain.TaskPatch) error {
	if _, err := s.lists.owned(ctx, userID, listID); err != nil {
		return err
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return ErrInvalidTitle
		}
		patch.Title = &title
	}
	if err := s.tasks.Update(ctx, taskID, listID, patch); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (s *TaskService) Delete(ctx context.Context, userID, listID, taskID string) (domain.Task, error) {
	if _, err := s.lists.owned(ctx, userID, listID); err != nil {
		return domain.Task{}, err
	}
	removed, err := s.tasks.Delete(ctx, taskID, listID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	return removed, nil
}
