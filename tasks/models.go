// Package tasks implements per-user task CRUD. Every operation is scoped to
// an owner that the auth middleware has already verified against both the
// token and the URL path; the store never sees an unverified identity.
package tasks

import (
	"time"
	"unicode/utf8"

	"github.com/user/todoapp-go/apperror"
)

// Field length limits, counted in runes.
const (
	titleMaxLen       = 200
	descriptionMaxLen = 1000
)

// Task represents a single todo item owned by exactly one user. UserID is
// immutable after creation; no update path exists for it.
type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRequest is the payload for creating a task. Completed defaults to
// false when omitted.
type CreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Completed   bool    `json:"completed"`
}

// Patch describes a partial update: one optional slot per mutable field.
// A nil slot means "leave unchanged". There is deliberately no slot for the
// owner.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// ListResponse wraps the task list payload.
type ListResponse struct {
	Tasks []Task `json:"tasks"`
}

// validateTitle enforces the 1-200 rune title constraint.
func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n == 0 {
		return apperror.NewValidationError("title must not be empty", nil)
	}
	if n > titleMaxLen {
		return apperror.NewValidationError("title must be at most 200 characters", nil)
	}
	return nil
}

// validateDescription enforces the 1000 rune description limit.
func validateDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > descriptionMaxLen {
		return apperror.NewValidationError("description must be at most 1000 characters", nil)
	}
	return nil
}

// Validate checks a create request against the field constraints.
func (r CreateRequest) Validate() error {
	if err := validateTitle(r.Title); err != nil {
		return err
	}
	return validateDescription(r.Description)
}

// Validate checks the provided fields of a patch against the same
// constraints as creation. Absent fields are not checked.
func (p Patch) Validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	return validateDescription(p.Description)
}
