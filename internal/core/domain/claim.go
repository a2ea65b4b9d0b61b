package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ClaimStatus is the review state of a claim.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "PENDING"
	ClaimStatusApproved ClaimStatus = "APPROVED"
	ClaimStatusRejected ClaimStatus = "REJECTED"
)

// SystemReviewerID is recorded as the reviewer of claims approved at submission time.
const SystemReviewerID = "system:auto-approval"

// ParseClaimStatus accepts any casing of a known status.
func ParseClaimStatus(s string) (ClaimStatus, error) {
	switch ClaimStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case ClaimStatusPending:
		return ClaimStatusPending, nil
	case ClaimStatusApproved:
		return ClaimStatusApproved, nil
	case ClaimStatusRejected:
		return ClaimStatusRejected, nil
	}
	return "", fmt.Errorf("%w: unknown claim status %q", apperrors.ErrValidation, s)
}

// IsTerminal reports whether no further transitions are allowed.
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusApproved || s == ClaimStatusRejected
}

// CanTransitionTo reports whether s -> next is an edge of the claim state machine.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	return s == ClaimStatusPending && next.IsTerminal()
}

// Claim is a lecturer's request for payment for hours worked.
type Claim struct {
	ClaimID         string               `json:"claimID"`
	LecturerID      string               `json:"lecturerID"`
	HoursWorked     decimal.Decimal      `json:"hoursWorked"`
	HourlyRate      decimal.Decimal      `json:"hourlyRate"`
	TotalAmount     decimal.Decimal      `json:"totalAmount"`
	Notes           string               `json:"notes"`
	SubmittedAt     time.Time            `json:"submittedAt"`
	SubmissionDay   time.Time            `json:"submissionDay"`
	Status          ClaimStatus          `json:"status"`
	RequiresReview  bool                 `json:"requiresReview"`
	ReviewedAt      *time.Time           `json:"reviewedAt,omitempty"`
	ReviewerID      *string              `json:"reviewerID,omitempty"`
	RejectionReason *string              `json:"rejectionReason,omitempty"`
	LastUpdatedAt   time.Time            `json:"lastUpdatedAt"`
	Documents       []SupportingDocument `json:"documents"`
}

// ComputeTotal returns hours * rate. Totals are never taken from callers.
func ComputeTotal(hours, rate decimal.Decimal) decimal.Decimal {
	return hours.Mul(rate)
}

// RecomputeTotal refreshes TotalAmount from the current hours and rate.
func (c *Claim) RecomputeTotal() {
	c.TotalAmount = ComputeTotal(c.HoursWorked, c.HourlyRate)
}

// IsOwnedBy reports whether userID submitted the claim.
func (c Claim) IsOwnedBy(userID string) bool {
	return c.LecturerID == userID
}

// Editable reports whether the owner may still change or delete the claim.
func (c Claim) Editable() bool {
	return c.Status == ClaimStatusPending
}

// ApplyReview moves a pending claim to a terminal status and stamps the reviewer.
// A blank reason is stored as nil.
func (c *Claim) ApplyReview(next ClaimStatus, reviewerID string, at time.Time, reason string) error {
	if !c.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: claim %s is %s", apperrors.ErrInvalidStateTransition, c.ClaimID, c.Status)
	}
	c.Status = next
	c.ReviewedAt = &at
	c.ReviewerID = &reviewerID
	c.RejectionReason = nil
	if r := strings.TrimSpace(reason); r != "" && next == ClaimStatusRejected {
		c.RejectionReason = &r
	}
	c.LastUpdatedAt = at
	return nil
}

// SupportingDocument is a file attached to a claim.
type SupportingDocument struct {
	DocumentID       string    `json:"documentID"`
	ClaimID          string    `json:"claimID"`
	OriginalFileName string    `json:"originalFileName"`
	StoredReference  string    `json:"-"`
	ContentType      string    `json:"contentType"`
	SizeBytes        int64     `json:"sizeBytes"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

// ClaimFilter narrows claim listings.
type ClaimFilter struct {
	Status      *ClaimStatus
	LecturerID  string
	OldestFirst bool
	Limit       int
	NextToken   *string
}

// ClaimPage is a page of claims with an optional continuation token.
type ClaimPage struct {
	Claims    []Claim `json:"claims"`
	NextToken *string `json:"nextToken,omitempty"`
}
