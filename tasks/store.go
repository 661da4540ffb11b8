package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence boundary for tasks. Every query is scoped by
// owner; there are no cross-owner reads, joins or aggregates. Lookups
// return (nil, nil) when no row matches both id and owner, which makes a
// task owned by someone else indistinguishable from an absent one.
type Store interface {
	FindByIDAndOwner(ctx context.Context, id, owner int64) (*Task, error)
	ListByOwner(ctx context.Context, owner int64) ([]Task, error)
	Insert(ctx context.Context, task *Task) (*Task, error)
	UpdateFields(ctx context.Context, id, owner int64, patch Patch) (*Task, error)
	Delete(ctx context.Context, id, owner int64) (bool, error)
}

// PgxStore implements Store against a pgx connection pool.
type PgxStore struct {
	db *pgxpool.Pool
}

// NewPgxStore creates a task Store backed by the given pool.
func NewPgxStore(db *pgxpool.Pool) *PgxStore {
	return &PgxStore{db: db}
}

const taskColumns = `id, user_id, title, description, completed, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var task Task
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDAndOwner fetches one task scoped to its owner.
func (s *PgxStore) FindByIDAndOwner(ctx context.Context, id, owner int64) (*Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1 AND user_id = $2`, taskColumns)
	task, err := scanTask(s.db.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// ListByOwner returns all tasks belonging to the owner, oldest first.
func (s *PgxStore) ListByOwner(ctx context.Context, owner int64) ([]Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE user_id = $1 ORDER BY id`, taskColumns)
	rows, err := s.db.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// Insert persists a new task and fills in its generated id and timestamps.
// A single INSERT keeps creation atomic at the store boundary.
func (s *PgxStore) Insert(ctx context.Context, task *Task) (*Task, error) {
	query := `INSERT INTO tasks (user_id, title, description, completed)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`
	err := s.db.QueryRow(ctx, query, task.UserID, task.Title, task.Description, task.Completed).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateFields applies a patch with an explicit SET clause per provided
// field. updated_at is always advanced, even for a patch that repeats the
// current values. Returns (nil, nil) when no row matches id and owner.
func (s *PgxStore) UpdateFields(ctx context.Context, id, owner int64, patch Patch) (*Task, error) {
	setClauses := []string{"updated_at = now()"}
	args := []interface{}{}
	argID := 1

	if patch.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *patch.Title)
		argID++
	}
	if patch.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, *patch.Description)
		argID++
	}
	if patch.Completed != nil {
		setClauses = append(setClauses, fmt.Sprintf("completed = $%d", argID))
		args = append(args, *patch.Completed)
		argID++
	}

	args = append(args, id, owner)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argID, argID+1, taskColumns)

	task, err := scanTask(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// Delete removes the task scoped to its owner and reports whether a row was
// actually deleted.
func (s *PgxStore) Delete(ctx context.Context, id, owner int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, owner)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
