package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
)

// RequireRoles resolves the authenticated user and rejects the request unless
// they hold one of roles. With no roles any existing user passes.
// Must run after AuthMiddleware.
func RequireRoles(identity portssvc.IdentitySvc, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		principal, err := identity.ResolvePrincipal(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthorizedPrincipal) {
				logger.Warn("Token subject no longer resolves to a user")
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
				return
			}
			logger.Error("Failed to resolve principal", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if len(roles) > 0 && !principal.HasAnyRole(roles...) {
			logger.Warn("Principal lacks required role", slog.Any("required_roles", roles))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		c.Set(string(principalKey), principal)
		c.Next()
	}
}
