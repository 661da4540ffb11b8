package tasks

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/todoapp-go/apperror"
)

// memoryTaskStore is an in-memory Store mirroring the owner-scoped
// semantics of the pgx implementation.
type memoryTaskStore struct {
	tasks  map[int64]*Task
	nextID int64
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{tasks: make(map[int64]*Task), nextID: 1}
}

func (m *memoryTaskStore) FindByIDAndOwner(ctx context.Context, id, owner int64) (*Task, error) {
	task, ok := m.tasks[id]
	if !ok || task.UserID != owner {
		return nil, nil
	}
	copy := *task
	return &copy, nil
}

func (m *memoryTaskStore) ListByOwner(ctx context.Context, owner int64) ([]Task, error) {
	tasks := []Task{}
	for id := int64(1); id < m.nextID; id++ {
		if task, ok := m.tasks[id]; ok && task.UserID == owner {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func (m *memoryTaskStore) Insert(ctx context.Context, task *Task) (*Task, error) {
	now := time.Now()
	task.ID = m.nextID
	task.CreatedAt = now
	task.UpdatedAt = now
	m.nextID++
	stored := *task
	m.tasks[task.ID] = &stored
	return task, nil
}

func (m *memoryTaskStore) UpdateFields(ctx context.Context, id, owner int64, patch Patch) (*Task, error) {
	task, ok := m.tasks[id]
	if !ok || task.UserID != owner {
		return nil, nil
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = patch.Description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	task.UpdatedAt = time.Now()
	copy := *task
	return &copy, nil
}

func (m *memoryTaskStore) Delete(ctx context.Context, id, owner int64) (bool, error) {
	task, ok := m.tasks[id]
	if !ok || task.UserID != owner {
		return false, nil
	}
	delete(m.tasks, id)
	return true, nil
}

func newTestService() *Service {
	return NewService(newMemoryTaskStore(), zap.NewNop())
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateTask(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	task, err := svc.Create(ctx, 1, CreateRequest{Title: "buy milk"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, int64(1), task.UserID)
	assert.Equal(t, "buy milk", task.Title)
	assert.Nil(t, task.Description)
	assert.False(t, task.Completed, "completed defaults to false")
	assert.False(t, task.CreatedAt.IsZero())
}

func TestCreateTaskValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"empty title", CreateRequest{Title: ""}},
		{"title too long", CreateRequest{Title: strings.Repeat("x", 201)}},
		{"description too long", CreateRequest{Title: "ok", Description: strPtr(strings.Repeat("x", 1001))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, tt.req)
			require.Error(t, err)
			assert.True(t, apperror.IsValidationError(err))
		})
	}
}

func TestListTasksIsOwnerScoped(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateRequest{Title: "alice task"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, CreateRequest{Title: "bob task"})
	require.NoError(t, err)

	resp, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "alice task", resp.Tasks[0].Title)

	empty, err := svc.List(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, empty.Tasks)
}

func TestGetTask(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateRequest{Title: "buy milk"})
	require.NoError(t, err)

	task, err := svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, task.ID)

	// Another owner sees the same 404 as a missing row.
	_, err = svc.Get(ctx, 2, created.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Get(ctx, 1, 999)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateTaskPartial(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateRequest{
		Title:       "buy milk",
		Description: strPtr("two liters"),
	})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	updated, err := svc.Update(ctx, 1, created.ID, Patch{Completed: boolPtr(true)})
	require.NoError(t, err)

	// Only the patched field changes; timestamps record the update.
	assert.True(t, updated.Completed)
	assert.Equal(t, "buy milk", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "two liters", *updated.Description)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
}

func TestUpdateTaskValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateRequest{Title: "buy milk"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, 1, created.ID, Patch{Title: strPtr("")})
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))

	_, err = svc.Update(ctx, 1, created.ID, Patch{Title: strPtr(strings.Repeat("x", 201))})
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))
}

func TestUpdateTaskNotFound(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateRequest{Title: "buy milk"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, 2, created.ID, Patch{Completed: boolPtr(true)})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteTask(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateRequest{Title: "buy milk"})
	require.NoError(t, err)

	// Another owner cannot delete it.
	err = svc.Delete(ctx, 2, created.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	require.NoError(t, svc.Delete(ctx, 1, created.ID))

	err = svc.Delete(ctx, 1, created.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
