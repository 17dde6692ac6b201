package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/shahrfin/municipal_budget_app/internal/core/domain"
)

// GetUserFromContext retrieves the authenticated user from the Gin context.
// It returns the user and a boolean indicating if it was found. The auth
// middleware loads the full user so handlers can pass role information down
// to the workflow services without a second lookup.
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	userVal := c.Request.Context().Value(userCtxKey)
	if userVal == nil {
		return nil, false
	}
	user, ok := userVal.(*domain.User)
	if !ok {
		return nil, false
	}
	return user, true
}

// GetUserIDFromContext retrieves the authenticated user's ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	user, ok := GetUserFromContext(c)
	if !ok {
		return "", false
	}
	return user.UserID, true
}

// GetSessionIDFromContext retrieves the session ID the auth middleware
// extracted from the bearer token.
func GetSessionIDFromContext(c *gin.Context) (string, bool) {
	sessionVal := c.Request.Context().Value(sessionCtxKey)
	if sessionVal == nil {
		return "", false
	}
	sessionID, ok := sessionVal.(string)
	return sessionID, ok
}
