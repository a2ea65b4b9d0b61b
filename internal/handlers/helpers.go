package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	"github.com/SscSPs/lecturer_claims_app/internal/middleware"
)

func getLogger(c *gin.Context) *slog.Logger {
	return middleware.GetLoggerFromContext(c)
}

// requireUserID fetches the authenticated user id or writes a 401.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok || userID == "" {
		getLogger(c).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return userID, true
}

// optionalStatus parses a status query parameter; an empty value means no filter.
func optionalStatus(raw string) (*domain.ClaimStatus, error) {
	if raw == "" {
		return nil, nil
	}
	s, err := domain.ParseClaimStatus(raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
