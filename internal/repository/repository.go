package repository

import (
	"time"

	"github.com/hmasuda/todo-api/internal/models"
)

// TodoRepository defines the interface for todo data access
type TodoRepository interface {
	// Create creates a new todo
	Create(todo *models.Todo) error

	// FindByOwnerAndID finds a todo by ID, scoped to its owner
	FindByOwnerAndID(ownerID, id uint64) (*models.Todo, error)

	// List retrieves todos matching the filter, newest first
	List(filter TodoFilter) ([]models.Todo, int64, error)

	// Update persists all fields of a todo
	Update(todo *models.Todo) error

	// Delete permanently deletes a todo
	Delete(id uint64) error

	// CountByOwner counts all todos owned by a user
	CountByOwner(ownerID uint64) (int64, error)

	// Reorder reassigns sort positions for every todo owned by ownerID to
	// match the position of its id within orderedIDs. Runs in a single
	// transaction; on failure no position is changed.
	Reorder(ownerID uint64, orderedIDs []uint64) error

	// FindDueRecurring returns recurring todos whose next occurrence is due
	FindDueRecurring(now time.Time) ([]models.Todo, error)

	// UpdateNextRecurrence advances the next-occurrence pointer on a source todo
	UpdateNextRecurrence(id uint64, next time.Time) error

	// DeleteCompletedBefore permanently deletes completed one-off todos whose
	// date is strictly before cutoff. Returns the number of rows deleted.
	DeleteCompletedBefore(cutoff time.Time) (int64, error)
}

// TodoFilter holds filtering options for listing todos
type TodoFilter struct {
	OwnerID   uint64
	Completed *bool
	Page      int
	PageSize  int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}
