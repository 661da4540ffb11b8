package tasks

import (
	"context"

	"go.uber.org/zap"

	"github.com/user/todoapp-go/apperror"
)

// taskNotFoundMsg is shared by every row-level miss. Lookups are already
// owner-scoped, so a task under another owner produces the same 404 as a
// task that does not exist.
const taskNotFoundMsg = "task not found"

// Service implements task CRUD over a Store. Callers must pass an owner id
// that the auth middleware has verified against both the token and the
// path.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new task Service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create validates the request and inserts a task for the owner. The owner
// always comes from the verified identity, never from the request body.
func (s *Service) Create(ctx context.Context, owner int64, req CreateRequest) (*Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	task := &Task{
		UserID:      owner,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
	created, err := s.store.Insert(ctx, task)
	if err != nil {
		s.logger.Error("failed to insert task", zap.Int64("user_id", owner), zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to create task", err)
	}
	return created, nil
}

// List returns all tasks belonging to the owner.
func (s *Service) List(ctx context.Context, owner int64) (*ListResponse, error) {
	tasks, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		s.logger.Error("failed to list tasks", zap.Int64("user_id", owner), zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to list tasks", err)
	}
	return &ListResponse{Tasks: tasks}, nil
}

// Get fetches one task scoped to the owner.
func (s *Service) Get(ctx context.Context, owner, id int64) (*Task, error) {
	task, err := s.store.FindByIDAndOwner(ctx, id, owner)
	if err != nil {
		s.logger.Error("failed to get task", zap.Int64("task_id", id), zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to get task", err)
	}
	if task == nil {
		return nil, apperror.NewNotFoundError(taskNotFoundMsg, nil)
	}
	return task, nil
}

// Update applies a partial update to one of the owner's tasks. Provided
// fields are validated like creation; absent fields stay untouched.
// updated_at is advanced by the store on every successful update.
func (s *Service) Update(ctx context.Context, owner, id int64, patch Patch) (*Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		s.logger.Debug("empty patch, only touching updated_at", zap.Int64("task_id", id))
	}

	task, err := s.store.UpdateFields(ctx, id, owner, patch)
	if err != nil {
		s.logger.Error("failed to update task", zap.Int64("task_id", id), zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to update task", err)
	}
	if task == nil {
		return nil, apperror.NewNotFoundError(taskNotFoundMsg, nil)
	}
	return task, nil
}

// Delete removes one of the owner's tasks.
func (s *Service) Delete(ctx context.Context, owner, id int64) error {
	deleted, err := s.store.Delete(ctx, id, owner)
	if err != nil {
		s.logger.Error("failed to delete task", zap.Int64("task_id", id), zap.Error(err))
		return apperror.NewDatabaseError("failed to delete task", err)
	}
	if !deleted {
		return apperror.NewNotFoundError(taskNotFoundMsg, nil)
	}
	return nil
}
