package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/hmasuda/todo-api/internal/constants"
	"github.com/hmasuda/todo-api/internal/models"
	"github.com/hmasuda/todo-api/internal/repository"
)

var (
	ErrTextRequired      = errors.New("text is required")
	ErrTextTooLong       = errors.New("text must be at most 500 characters")
	ErrInvalidRecurrence = errors.New("recurrence must be daily or weekly")
	ErrDateRequired      = errors.New("date is required when recurrence is set")
	ErrTodoNotFound      = errors.New("todo not found")
)

// TodoService handles todo business logic
type TodoService struct {
	todoRepo repository.TodoRepository
}

// NewTodoService creates a new TodoService
func NewTodoService(todoRepo repository.TodoRepository) *TodoService {
	return &TodoService{
		todoRepo: todoRepo,
	}
}

// ListTodosInput represents filters for listing todos
type ListTodosInput struct {
	OwnerID   uint64
	Completed *bool
	Page      int
	PageSize  int
}

// CreateTodoInput represents input for creating a todo
type CreateTodoInput struct {
	OwnerID    uint64
	Text       string
	Completed  bool
	Date       *time.Time
	Recurrence *models.Recurrence
}

// UpdateTodoInput represents input for updating a todo. Pointer fields are
// applied only when set; the Clear flags distinguish "set to null" from
// "not provided".
type UpdateTodoInput struct {
	Text            *string
	Completed       *bool
	Date            *time.Time
	ClearDate       bool
	Recurrence      *models.Recurrence
	ClearRecurrence bool
}

// ListTodos returns the todos owned by a user, newest first
func (s *TodoService) ListTodos(input ListTodosInput) ([]models.Todo, int64, error) {
	filter := repository.TodoFilter{
		OwnerID:   input.OwnerID,
		Completed: input.Completed,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}

	todos, total, err := s.todoRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list todos: %w", err)
	}

	return todos, total, nil
}

// GetTodo returns a single todo owned by the caller
func (s *TodoService) GetTodo(ownerID, id uint64) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByOwnerAndID(ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	return todo, nil
}

// CreateTodo creates a new todo after validation
func (s *TodoService) CreateTodo(input CreateTodoInput) (*models.Todo, error) {
	text := strings.TrimSpace(input.Text)
	if err := validateText(text); err != nil {
		return nil, err
	}
	if err := validateRecurrence(input.Recurrence, input.Date); err != nil {
		return nil, err
	}

	todo := &models.Todo{
		Text:       text,
		Completed:  input.Completed,
		OwnerID:    input.OwnerID,
		Date:       input.Date,
		Recurrence: input.Recurrence,
	}

	if err := s.todoRepo.Create(todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return todo, nil
}

// UpdateTodo applies a partial update to a todo owned by the caller
func (s *TodoService) UpdateTodo(ownerID, id uint64, input UpdateTodoInput) (*models.Todo, error) {
	todo, err := s.GetTodo(ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Text != nil {
		text := strings.TrimSpace(*input.Text)
		if err := validateText(text); err != nil {
			return nil, err
		}
		todo.Text = text
	}
	if input.Completed != nil {
		todo.Completed = *input.Completed
	}
	if input.ClearDate {
		todo.Date = nil
	} else if input.Date != nil {
		todo.Date = input.Date
	}
	if input.ClearRecurrence {
		todo.Recurrence = nil
		// A former source must stop generating instances.
		todo.NextRecurrence = nil
	} else if input.Recurrence != nil {
		todo.Recurrence = input.Recurrence
	}

	if err := validateRecurrence(todo.Recurrence, todo.Date); err != nil {
		return nil, err
	}

	if err := s.todoRepo.Update(todo); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return todo, nil
}

// DeleteTodo permanently deletes a todo owned by the caller
func (s *TodoService) DeleteTodo(ownerID, id uint64) error {
	todo, err := s.GetTodo(ownerID, id)
	if err != nil {
		return err
	}

	if err := s.todoRepo.Delete(todo.ID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return nil
}

// Reorder reassigns the sort positions of the caller's todos to match the
// given id sequence. Unknown ids are ignored; owned todos missing from the
// sequence drop to position 0.
func (s *TodoService) Reorder(ownerID uint64, orderedIDs []uint64) error {
	if err := s.todoRepo.Reorder(ownerID, orderedIDs); err != nil {
		return fmt.Errorf("failed to reorder todos: %w", err)
	}
	return nil
}

func validateText(text string) error {
	if text == "" {
		return ErrTextRequired
	}
	if utf8.RuneCountInString(text) > constants.MaxTodoTextLength {
		return ErrTextTooLong
	}
	return nil
}

func validateRecurrence(rec *models.Recurrence, date *time.Time) error {
	if rec == nil {
		return nil
	}
	if !rec.Valid() {
		return ErrInvalidRecurrence
	}
	if date == nil {
		return ErrDateRequired
	}
	return nil
}
