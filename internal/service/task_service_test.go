package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/internal/domain"
)

func TestTaskService_CreateUnderForeignListIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	listSvc, taskSvc, tasks := newTestResourceServices()
	list, err := listSvc.Create(ctx, "user-b", "Private")
	require.NoError(t, err)

	_, err = taskSvc.Create(ctx, "user-a", list.ID, "Sneaky")
	assert.ErrorIs(t, err, ErrListNotFound)

	stored, err := tasks.ListByList(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestTaskService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	listSvc, taskSvc, _ := newTestResourceServices()
	list, err := listSvc.Create(ctx, "user-a", "Home")
	require.NoError(t, err)

	task, err := taskSvc.Create(ctx, "user-a", list.ID, " Dishes ")
	require.NoError(t, err)
	assert.Equal(t, "Dishes", task.Title)
	assert.Equal(t, list.ID, task.ListID)
	assert.False(t, task.Completed)

	_, err = taskSvc.Create(ctx, "user-a", list.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTitle)

	got, err := taskSvc.Tasks(ctx, "user-a", list.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = taskSvc.Tasks(ctx, "user-b", list.ID)
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestTaskService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	listSvc, taskSvc, _ := newTestResourceServices()
	list, err := listSvc.Create(ctx, "user-a", "Home")
	require.NoError(t, err)
	task, err := taskSvc.Create(ctx, "user-a", list.ID, "Dishes")
	require.NoError(t, err)

	done := true
	require.NoError(t, taskSvc.Update(ctx, "user-a", list.ID, task.ID, domain.TaskPatch{Completed: &done}))
	assert.ErrorIs(t, taskSvc.Update(ctx, "user-b", list.ID, task.ID, domain.TaskPatch{Completed: &done}), ErrListNotFound)
	assert.ErrorIs(t, taskSvc.Update(ctx, "user-a", list.ID, "missing", domain.TaskPatch{Completed: &done}), ErrTaskNotFound)

	got, err := taskSvc.Tasks(ctx, "user-a", list.ID)
	require.NoError(t, err)
	assert.True(t, got[0].Completed)

	_, err = taskSvc.Delete(ctx, "user-b", list.ID, task.ID)
	assert.ErrorIs(t, err, ErrListNotFound)

	removed, err := taskSvc.Delete(ctx, "user-a", list.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, removed.ID)

	_, err = taskSvc.Delete(ctx, "user-a", list.ID, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
