package dto

import (
	"fmt"
	"io"
	"time"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SubmitClaimForm is the multipart form posted by lecturers.
// TotalAmount is accepted for client compatibility and discarded.
type SubmitClaimForm struct {
	HoursWorked string `form:"hoursWorked" binding:"required"`
	HourlyRate  string `form:"hourlyRate" binding:"required"`
	Notes       string `form:"notes"`
	TotalAmount string `form:"totalAmount"`
}

// ToRequest parses the numeric form fields.
func (f SubmitClaimForm) ToRequest() (SubmitClaimRequest, error) {
	hours, err := decimal.NewFromString(f.HoursWorked)
	if err != nil {
		return SubmitClaimRequest{}, fmt.Errorf("%w: hoursWorked must be a number", apperrors.ErrValidation)
	}
	rate, err := decimal.NewFromString(f.HourlyRate)
	if err != nil {
		return SubmitClaimRequest{}, fmt.Errorf("%w: hourlyRate must be a number", apperrors.ErrValidation)
	}
	return SubmitClaimRequest{HoursWorked: hours, HourlyRate: rate, Notes: f.Notes}, nil
}

// SubmitClaimRequest carries the fields the claim service trusts from a submission.
type SubmitClaimRequest struct {
	HoursWorked decimal.Decimal
	HourlyRate  decimal.Decimal
	Notes       string
}

// UploadedFile is one file from a submission. Open may be called once.
type UploadedFile struct {
	FileName string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// EditClaimRequest replaces the editable fields of a pending claim.
type EditClaimRequest struct {
	HoursWorked decimal.Decimal `json:"hoursWorked" binding:"required"`
	HourlyRate  decimal.Decimal `json:"hourlyRate" binding:"required"`
	Notes       string          `json:"notes"`
}

// RejectClaimRequest optionally explains a rejection.
type RejectClaimRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// BulkApproveRequest lists claims HR wants approved in one go.
type BulkApproveRequest struct {
	ClaimIDs []string `json:"claimIDs" binding:"required,min=1,max=100,dive,required"`
}

// BulkApproveResult is the per-claim outcome of a bulk approval.
type BulkApproveResult struct {
	ClaimID  string `json:"claimID"`
	Approved bool   `json:"approved"`
	Error    string `json:"error,omitempty"`
}

// ListClaimsParams defines query parameters for listing claims.
type ListClaimsParams struct {
	Status    string  `form:"status"`
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// DocumentResponse describes a supporting document without its storage reference.
type DocumentResponse struct {
	DocumentID       string    `json:"documentID"`
	OriginalFileName string    `json:"originalFileName"`
	ContentType      string    `json:"contentType"`
	SizeBytes        int64     `json:"sizeBytes"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

// ClaimResponse defines the data returned for a claim.
type ClaimResponse struct {
	ClaimID         string             `json:"claimID"`
	LecturerID      string             `json:"lecturerID"`
	HoursWorked     decimal.Decimal    `json:"hoursWorked"`
	HourlyRate      decimal.Decimal    `json:"hourlyRate"`
	TotalAmount     decimal.Decimal    `json:"totalAmount"`
	Notes           string             `json:"notes"`
	SubmittedAt     time.Time          `json:"submittedAt"`
	Status          domain.ClaimStatus `json:"status"`
	RequiresReview  bool               `json:"requiresReview"`
	ReviewedAt      *time.Time         `json:"reviewedAt,omitempty"`
	ReviewerID      *string            `json:"reviewerID,omitempty"`
	RejectionReason *string            `json:"rejectionReason,omitempty"`
	Documents       []DocumentResponse `json:"documents"`
}

// ListClaimsResponse wraps a page of claims.
type ListClaimsResponse struct {
	Claims    []ClaimResponse `json:"claims"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToClaimResponse converts a domain.Claim to ClaimResponse DTO
func ToClaimResponse(c *domain.Claim) ClaimResponse {
	docs := make([]DocumentResponse, len(c.Documents))
	for i, d := range c.Documents {
		docs[i] = DocumentResponse{
			DocumentID:       d.DocumentID,
			OriginalFileName: d.OriginalFileName,
			ContentType:      d.ContentType,
			SizeBytes:        d.SizeBytes,
			UploadedAt:       d.UploadedAt,
		}
	}
	return ClaimResponse{
		ClaimID:         c.ClaimID,
		LecturerID:      c.LecturerID,
		HoursWorked:     c.HoursWorked,
		HourlyRate:      c.HourlyRate,
		TotalAmount:     c.TotalAmount,
		Notes:           c.Notes,
		SubmittedAt:     c.SubmittedAt,
		Status:          c.Status,
		RequiresReview:  c.RequiresReview,
		ReviewedAt:      c.ReviewedAt,
		ReviewerID:      c.ReviewerID,
		RejectionReason: c.RejectionReason,
		Documents:       docs,
	}
}

// ToListClaimResponse converts a slice of domain.Claim to a slice of ClaimResponse DTOs
func ToListClaimResponse(claims []domain.Claim) []ClaimResponse {
	res := make([]ClaimResponse, len(claims))
	for i := range claims {
		res[i] = ToClaimResponse(&claims[i])
	}
	return res
}

// ToListClaimsResponse converts a page of claims.
func ToListClaimsResponse(page *domain.ClaimPage) ListClaimsResponse {
	return ListClaimsResponse{
		Claims:    ToListClaimResponse(page.Claims),
		NextToken: page.NextToken,
	}
}
