package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/dto"
)

// hrHandler serves the HR dashboard, reports and lecturer administration.
type hrHandler struct {
	reportingService portssvc.ReportingSvcFacade
	claimService     portssvc.ClaimSvcFacade
	userService      portssvc.UserSvcFacade
}

func registerHRRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &hrHandler{
		reportingService: services.Reporting,
		claimService:     services.Claim,
		userService:      services.User,
	}

	rg.GET("/dashboard", h.dashboard)
	rg.GET("/reports/summary", h.paymentSummary)
	rg.GET("/reports/summary.csv", h.paymentSummaryCSV)
	rg.POST("/claims/approve", h.bulkApprove)
	rg.GET("/lecturers", h.listLecturers)
	rg.PUT("/lecturers/:userID", h.updateLecturerContact)
}

func reportStatus(c *gin.Context) (domain.ClaimStatus, bool) {
	var params dto.ReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return "", false
	}
	status, err := domain.ParseClaimStatus(params.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return "", false
	}
	return status, true
}

// dashboard godoc
// @Summary HR dashboard
// @Tags hr
// @Produce json
// @Param status query string false "Filter the claim list by status"
// @Success 200 {object} dto.HRDashboardResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /hr/dashboard [get]
func (h *hrHandler) dashboard(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.DashboardParams
	_ = c.ShouldBindQuery(&params)
	filter, err := optionalStatus(params.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	d, err := h.reportingService.HRDashboard(c.Request.Context(), filter, userID)
	if err != nil {
		handleServiceError(c, err, "load dashboard")
		return
	}
	c.JSON(http.StatusOK, dto.ToHRDashboardResponse(d))
}

// paymentSummary godoc
// @Summary Payment summary
// @Description Groups claims of a status per lecturer with totals.
// @Tags hr
// @Produce json
// @Param status query string false "Claim status" default(APPROVED)
// @Success 200 {object} dto.PaymentReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /hr/reports/summary [get]
func (h *hrHandler) paymentSummary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	status, ok := reportStatus(c)
	if !ok {
		return
	}
	report, err := h.reportingService.PaymentSummary(c.Request.Context(), status, userID)
	if err != nil {
		handleServiceError(c, err, "generate payment summary")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentReportResponse(report))
}

// paymentSummaryCSV godoc
// @Summary Payment summary as CSV
// @Tags hr
// @Produce text/csv
// @Param status query string false "Claim status" default(APPROVED)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /hr/reports/summary.csv [get]
func (h *hrHandler) paymentSummaryCSV(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	status, ok := reportStatus(c)
	if !ok {
		return
	}
	// Buffered so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.reportingService.ExportPaymentSummaryCSV(c.Request.Context(), status, userID, &buf); err != nil {
		handleServiceError(c, err, "export payment summary")
		return
	}
	filename := fmt.Sprintf("payment-summary-%s.csv", strings.ToLower(string(status)))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// bulkApprove godoc
// @Summary Approve several claims
// @Description Each claim is approved independently; the response reports the outcome per claim.
// @Tags hr
// @Accept json
// @Produce json
// @Param request body dto.BulkApproveRequest true "Claim IDs"
// @Success 200 {array} dto.BulkApproveResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /hr/claims/approve [post]
func (h *hrHandler) bulkApprove(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	results, err := h.claimService.BulkApprove(c.Request.Context(), req.ClaimIDs, userID)
	if err != nil {
		handleServiceError(c, err, "approve claims")
		return
	}
	getLogger(c).Info("Bulk approval processed", slog.Int("requested", len(req.ClaimIDs)))
	c.JSON(http.StatusOK, results)
}

// listLecturers godoc
// @Summary List lecturers
// @Tags hr
// @Produce json
// @Success 200 {object} dto.ListUsersResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /hr/lecturers [get]
func (h *hrHandler) listLecturers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	users, err := h.userService.ListLecturers(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "list lecturers")
		return
	}
	c.JSON(http.StatusOK, dto.ToListUserResponse(users))
}

// updateLecturerContact godoc
// @Summary Update a lecturer's contact details
// @Tags hr
// @Accept json
// @Produce json
// @Param userID path string true "Lecturer user ID"
// @Param contact body dto.UpdateLecturerContactRequest true "Email and phone"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already in use"
// @Security BearerAuth
// @Router /hr/lecturers/{userID} [put]
func (h *hrHandler) updateLecturerContact(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateLecturerContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	user, err := h.userService.UpdateLecturerContact(c.Request.Context(), c.Param("userID"), req, userID)
	if err != nil {
		handleServiceError(c, err, "update lecturer contact")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}
