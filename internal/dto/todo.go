package dto

import (
	"time"

	"github.com/hmasuda/todo-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// TodoDTO represents a todo in API responses
type TodoDTO struct {
	ID                  uint64             `json:"id"`
	Text                string             `json:"text"`
	Completed           bool               `json:"completed"`
	OwnerID             uint64             `json:"owner_id"`
	Date                *time.Time         `json:"date"`
	Recurrence          *models.Recurrence `json:"recurrence"`
	NextRecurrence      *time.Time         `json:"next_recurrence,omitempty"`
	OriginalTodoID      *uint64            `json:"original_todo_id,omitempty"`
	IsRecurringInstance bool               `json:"is_recurring_instance"`
	Order               int                `json:"order"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// TodoListResponse represents a paginated list of todos
type TodoListResponse struct {
	Todos      []TodoDTO `json:"todos"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Email: user.Email,
	}
}

// ToTodoDTO converts a Todo model to TodoDTO
func ToTodoDTO(todo models.Todo) TodoDTO {
	return TodoDTO{
		ID:                  todo.ID,
		Text:                todo.Text,
		Completed:           todo.Completed,
		OwnerID:             todo.OwnerID,
		Date:                todo.Date,
		Recurrence:          todo.Recurrence,
		NextRecurrence:      todo.NextRecurrence,
		OriginalTodoID:      todo.OriginalTodoID,
		IsRecurringInstance: todo.IsRecurringInstance,
		Order:               todo.Order,
		CreatedAt:           todo.CreatedAt,
		UpdatedAt:           todo.UpdatedAt,
	}
}

// ToTodoListResponse converts a slice of todos to TodoListResponse
func ToTodoListResponse(todos []models.Todo, page, pageSize int, totalCount int64) TodoListResponse {
	items := make([]TodoDTO, len(todos))
	for i, todo := range todos {
		items[i] = ToTodoDTO(todo)
	}

	return TodoListResponse{
		Todos:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}
