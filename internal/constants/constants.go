package constants

// Context keys
const (
	ContextKeyUserID = "user_id"
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Validation limits
const (
	MinPasswordLength = 8
	MaxTodoTextLength = 500
)
