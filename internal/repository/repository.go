package repository

import (
	"context"
	"errors"

	"simple-todo/internal/models"
)

var (
	// ErrNotFound means no record matched the lookup, including lookups
	// whose id has the wrong shape for the backend.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a unique field is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore persists accounts.
type UserStore interface {
	// Create stores u and returns it with the assigned id.
	Create(ctx context.Context, u models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
}

// TaskStore persists todos. Every method is scoped by ownerID; a task owned
// by someone else behaves exactly like a missing one.
type TaskStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error)
	// Create stores t and returns it with the assigned id.
	Create(ctx context.Context, t models.Task) (models.Task, error)
	Update(ctx context.Context, ownerID, id string, patch models.TaskPatch) (models.Task, error)
	Delete(ctx context.Context, ownerID, id string) (models.Task, error)
}
