package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
)

// userIDKey is the key used to store the authenticated user's ID in the Gin context.
const userIDKey = contextKey("userID")

// principalKey holds the *domain.Principal resolved by RequireRoles.
const principalKey = contextKey("principal")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if v, ok := c.Request.Context().Value(userIDKey).(string); ok {
			return v, true
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	return userID, ok
}

// GetPrincipalFromContext returns the principal stored by RequireRoles, if any.
func GetPrincipalFromContext(c *gin.Context) (*domain.Principal, bool) {
	v, exists := c.Get(string(principalKey))
	if !exists {
		return nil, false
	}
	p, ok := v.(*domain.Principal)
	return p, ok
}
