package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hmasuda/todo-api/internal/dto"
	apierrors "github.com/hmasuda/todo-api/internal/errors"
	"github.com/hmasuda/todo-api/internal/middleware"
	"github.com/hmasuda/todo-api/internal/models"
	"github.com/hmasuda/todo-api/internal/services"
	"github.com/hmasuda/todo-api/internal/utils"
)

// TodoHandler coordinates todo-related HTTP handlers.
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
	}
}

// ListTodos returns the caller's todos, newest first.
func (h *TodoHandler) ListTodos(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTodosInput{
		OwnerID:  userID,
		Page:     params.Page,
		PageSize: params.Limit,
	}

	if completedStr := c.Query("completed"); completedStr != "" {
		completed, err := strconv.ParseBool(completedStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid completed filter")
			return
		}
		input.Completed = &completed
	}

	todos, total, err := h.todoService.ListTodos(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch todos")
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoListResponse(todos, params.Page, params.Limit, total))
}

// GetTodo returns a single todo owned by the caller.
func (h *TodoHandler) GetTodo(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	todo, err := h.todoService.GetTodo(userID, id)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// CreateTodo creates a new todo for the caller.
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTodoRequest struct {
		Text       string             `json:"text" binding:"required"`
		Completed  bool               `json:"completed"`
		Date       *time.Time         `json:"date"`
		Recurrence *models.Recurrence `json:"recurrence"`
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	todo, err := h.todoService.CreateTodo(services.CreateTodoInput{
		OwnerID:    userID,
		Text:       req.Text,
		Completed:  req.Completed,
		Date:       req.Date,
		Recurrence: req.Recurrence,
	})
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTodoDTO(*todo))
}

// UpdateTodo applies a partial update to a todo. Raw JSON is inspected so
// an explicit null can clear the date or recurrence.
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTodoInput

	if text, ok := rawReq["text"]; ok {
		textStr, ok := text.(string)
		if !ok {
			apierrors.BadRequest(c, "text must be a string")
			return
		}
		input.Text = &textStr
	}
	if completed, ok := rawReq["completed"]; ok {
		completedBool, ok := completed.(bool)
		if !ok {
			apierrors.BadRequest(c, "completed must be a boolean")
			return
		}
		input.Completed = &completedBool
	}
	if date, ok := rawReq["date"]; ok {
		if date == nil {
			input.ClearDate = true
		} else {
			dateStr, ok := date.(string)
			if !ok {
				apierrors.BadRequest(c, "date must be an RFC3339 timestamp")
				return
			}
			parsed, err := time.Parse(time.RFC3339, dateStr)
			if err != nil {
				apierrors.BadRequest(c, "date must be an RFC3339 timestamp")
				return
			}
			input.Date = &parsed
		}
	}
	if rec, ok := rawReq["recurrence"]; ok {
		if rec == nil {
			input.ClearRecurrence = true
		} else {
			recStr, ok := rec.(string)
			if !ok {
				apierrors.BadRequest(c, "recurrence must be a string")
				return
			}
			recurrence := models.Recurrence(recStr)
			input.Recurrence = &recurrence
		}
	}

	todo, err := h.todoService.UpdateTodo(userID, id, input)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// DeleteTodo permanently deletes a todo owned by the caller.
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.todoService.DeleteTodo(userID, id); err != nil {
		respondTodoError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReorderTodos reassigns the positions of the caller's todos to match the
// submitted id sequence.
func (h *TodoHandler) ReorderTodos(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type ReorderRequest struct {
		IDs []uint64 `json:"ids" binding:"required"`
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "ids must be an array of todo ids")
		return
	}

	if err := h.todoService.Reorder(userID, req.IDs); err != nil {
		apierrors.OperationFailed(c, "Failed to reorder todos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Todos reordered"})
}

func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid todo id")
		return 0, false
	}
	return id, true
}

func respondTodoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTextRequired),
		errors.Is(err, services.ErrTextTooLong),
		errors.Is(err, services.ErrInvalidRecurrence),
		errors.Is(err, services.ErrDateRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
