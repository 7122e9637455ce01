package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hmasuda/todo-api/internal/auth"
	"github.com/hmasuda/todo-api/internal/constants"
	apierrors "github.com/hmasuda/todo-api/internal/errors"
	"github.com/hmasuda/todo-api/internal/repository"
)

// RequireAuth checks the Authorization header for a valid bearer token and
// stores the owner id in the request context. The user is re-checked
// against the store so tokens for deleted accounts stop working.
func RequireAuth(tokens *auth.TokenManager, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		if _, err := userRepo.FindByID(claims.UserID); err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
