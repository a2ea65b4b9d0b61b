package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/dto"
)

// claimHandler serves the lecturer side of the claim lifecycle.
type claimHandler struct {
	claimService portssvc.ClaimSvcFacade
}

func newClaimHandler(cs portssvc.ClaimSvcFacade) *claimHandler {
	return &claimHandler{claimService: cs}
}

// registerClaimRoutes expects rg to already require the Lecturer role for writes.
func registerClaimRoutes(rg *gin.RouterGroup, cs portssvc.ClaimSvcFacade, lecturerOnly gin.HandlerFunc) {
	h := newClaimHandler(cs)

	claims := rg.Group("/claims")
	{
		claims.POST("", lecturerOnly, h.submitClaim)
		claims.GET("/mine", lecturerOnly, h.listMyClaims)
		claims.GET("/:claimID", h.getClaim)
		claims.PUT("/:claimID", lecturerOnly, h.editClaim)
		claims.DELETE("/:claimID", lecturerOnly, h.deleteClaim)
	}
	rg.GET("/documents/:documentID", h.downloadDocument)
}

// uploadedFiles collects files posted under "files" or "files[]".
func uploadedFiles(form *multipart.Form) []dto.UploadedFile {
	if form == nil {
		return nil
	}
	var headers []*multipart.FileHeader
	headers = append(headers, form.File["files"]...)
	headers = append(headers, form.File["files[]"]...)

	files := make([]dto.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		files = append(files, dto.UploadedFile{
			FileName: fh.Filename,
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return files
}

// submitClaim godoc
// @Summary Submit a claim
// @Description Submits hours worked with optional supporting documents. The total is computed server-side.
// @Tags claims
// @Accept multipart/form-data
// @Produce json
// @Param hoursWorked formData string true "Hours worked"
// @Param hourlyRate formData string true "Hourly rate"
// @Param notes formData string false "Notes"
// @Param files formData file false "Supporting documents"
// @Success 201 {object} dto.ClaimResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "A claim was already submitted today"
// @Failure 422 {object} ErrorResponse "A file was rejected"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims [post]
func (h *claimHandler) submitClaim(c *gin.Context) {
	logger := getLogger(c)
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var form dto.SubmitClaimForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warn("Failed to bind claim form", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	req, err := form.ToRequest()
	if err != nil {
		handleServiceError(c, err, "submit claim")
		return
	}

	var files []dto.UploadedFile
	if mf, err := c.MultipartForm(); err == nil {
		files = uploadedFiles(mf)
	}

	logger.Info("Received claim submission", slog.Int("file_count", len(files)))
	claim, err := h.claimService.SubmitClaim(c.Request.Context(), userID, req, files)
	if err != nil {
		handleServiceError(c, err, "submit claim")
		return
	}
	c.JSON(http.StatusCreated, dto.ToClaimResponse(claim))
}

// listMyClaims godoc
// @Summary List my claims
// @Description Lists the caller's claims, newest first.
// @Tags claims
// @Produce json
// @Success 200 {array} dto.ClaimResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims/mine [get]
func (h *claimHandler) listMyClaims(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	claims, err := h.claimService.ListMyClaims(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "list claims")
		return
	}
	c.JSON(http.StatusOK, dto.ToListClaimResponse(claims))
}

// getClaim godoc
// @Summary Get a claim
// @Description Returns a claim to its owner or to a reviewer.
// @Tags claims
// @Produce json
// @Param claimID path string true "Claim ID"
// @Success 200 {object} dto.ClaimResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /claims/{claimID} [get]
func (h *claimHandler) getClaim(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	claim, err := h.claimService.GetClaim(c.Request.Context(), c.Param("claimID"), userID)
	if err != nil {
		handleServiceError(c, err, "retrieve claim")
		return
	}
	c.JSON(http.StatusOK, dto.ToClaimResponse(claim))
}

// editClaim godoc
// @Summary Edit a pending claim
// @Tags claims
// @Accept json
// @Produce json
// @Param claimID path string true "Claim ID"
// @Param claim body dto.EditClaimRequest true "New hours, rate and notes"
// @Success 200 {object} dto.ClaimResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Claim is no longer pending"
// @Security BearerAuth
// @Router /claims/{claimID} [put]
func (h *claimHandler) editClaim(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.EditClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		getLogger(c).Warn("Failed to bind JSON for EditClaim", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	claim, err := h.claimService.EditClaim(c.Request.Context(), c.Param("claimID"), req, userID)
	if err != nil {
		handleServiceError(c, err, "edit claim")
		return
	}
	c.JSON(http.StatusOK, dto.ToClaimResponse(claim))
}

// deleteClaim godoc
// @Summary Delete a pending claim
// @Description Removes the claim, its document records and stored files.
// @Tags claims
// @Param claimID path string true "Claim ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Claim is no longer pending"
// @Security BearerAuth
// @Router /claims/{claimID} [delete]
func (h *claimHandler) deleteClaim(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.claimService.DeleteClaim(c.Request.Context(), c.Param("claimID"), userID); err != nil {
		handleServiceError(c, err, "delete claim")
		return
	}
	c.Status(http.StatusNoContent)
}

// downloadDocument godoc
// @Summary Download a supporting document
// @Tags claims
// @Produce octet-stream
// @Param documentID path string true "Document ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /documents/{documentID} [get]
func (h *claimHandler) downloadDocument(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	doc, body, err := h.claimService.OpenDocument(c.Request.Context(), c.Param("documentID"), userID)
	if err != nil {
		handleServiceError(c, err, "open document")
		return
	}
	defer body.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, doc.SizeBytes, contentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", doc.OriginalFileName),
	})
}
