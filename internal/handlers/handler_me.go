package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/dto"
	"github.com/SscSPs/lecturer_claims_app/internal/middleware"
)

// getMe godoc
// @Summary Current user
// @Description Returns the caller, their roles and the page the UI should land on.
// @Tags users
// @Produce json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /me [get]
func getMe(identity portssvc.IdentitySvc, users portssvc.UserSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := middleware.GetPrincipalFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}
		user, err := users.GetUserByID(c.Request.Context(), principal.UserID)
		if err != nil {
			handleServiceError(c, err, "load current user")
			return
		}
		c.JSON(http.StatusOK, dto.MeResponse{
			User:    dto.ToUserResponse(user),
			Landing: identity.Landing(*principal),
		})
	}
}
