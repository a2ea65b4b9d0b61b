package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/dto"
)

// reviewHandler serves coordinators and managers.
type reviewHandler struct {
	claimService portssvc.ClaimSvcFacade
}

func registerReviewRoutes(rg *gin.RouterGroup, cs portssvc.ClaimSvcFacade) {
	h := &reviewHandler{claimService: cs}

	rg.GET("/pending", h.pendingQueue)
	rg.GET("/claims", h.listClaims)
	rg.POST("/claims/:claimID/approve", h.approveClaim)
	rg.POST("/claims/:claimID/reject", h.rejectClaim)
}

// pendingQueue godoc
// @Summary Pending claims queue
// @Description Lists pending claims, oldest first.
// @Tags review
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Continuation token"
// @Success 200 {object} dto.ListClaimsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /review/pending [get]
func (h *reviewHandler) pendingQueue(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListClaimsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	page, err := h.claimService.PendingQueue(c.Request.Context(), userID, params)
	if err != nil {
		handleServiceError(c, err, "load pending claims")
		return
	}
	c.JSON(http.StatusOK, dto.ToListClaimsResponse(page))
}

// listClaims godoc
// @Summary List claims by status
// @Description Lists all claims, newest first, optionally filtered by status.
// @Tags review
// @Produce json
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Continuation token"
// @Success 200 {object} dto.ListClaimsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /review/claims [get]
func (h *reviewHandler) listClaims(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListClaimsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	page, err := h.claimService.ListClaims(c.Request.Context(), userID, params)
	if err != nil {
		handleServiceError(c, err, "list claims")
		return
	}
	c.JSON(http.StatusOK, dto.ToListClaimsResponse(page))
}

// approveClaim godoc
// @Summary Approve a claim
// @Tags review
// @Produce json
// @Param claimID path string true "Claim ID"
// @Success 200 {object} dto.ClaimResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Claim is no longer pending"
// @Security BearerAuth
// @Router /review/claims/{claimID}/approve [post]
func (h *reviewHandler) approveClaim(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	claim, err := h.claimService.ApproveClaim(c.Request.Context(), c.Param("claimID"), userID)
	if err != nil {
		handleServiceError(c, err, "approve claim")
		return
	}
	getLogger(c).Info("Claim approved", slog.String("claim_id", claim.ClaimID))
	c.JSON(http.StatusOK, dto.ToClaimResponse(claim))
}

// rejectClaim godoc
// @Summary Reject a claim
// @Tags review
// @Accept json
// @Produce json
// @Param claimID path string true "Claim ID"
// @Param reason body dto.RejectClaimRequest false "Optional reason"
// @Success 200 {object} dto.ClaimResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Claim is no longer pending"
// @Security BearerAuth
// @Router /review/claims/{claimID}/reject [post]
func (h *reviewHandler) rejectClaim(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.RejectClaimRequest
	// The body is optional.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	claim, err := h.claimService.RejectClaim(c.Request.Context(), c.Param("claimID"), userID, req.Reason)
	if err != nil {
		handleServiceError(c, err, "reject claim")
		return
	}
	getLogger(c).Info("Claim rejected", slog.String("claim_id", claim.ClaimID))
	c.JSON(http.StatusOK, dto.ToClaimResponse(claim))
}
