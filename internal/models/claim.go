package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Claim represents a row of the claims table.
type Claim struct {
	ClaimID         string          `db:"claim_id"`
	LecturerID      string          `db:"lecturer_id"`
	HoursWorked     decimal.Decimal `db:"hours_worked"`
	HourlyRate      decimal.Decimal `db:"hourly_rate"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	Notes           string          `db:"notes"`
	SubmittedAt     time.Time       `db:"submitted_at"`
	SubmissionDay   time.Time       `db:"submission_day"`
	Status          string          `db:"status"`
	RequiresReview  bool            `db:"requires_review"`
	ReviewedAt      *time.Time      `db:"reviewed_at"`
	ReviewerID      *string         `db:"reviewer_id"`
	RejectionReason *string         `db:"rejection_reason"`
	LastUpdatedAt   time.Time       `db:"last_updated_at"`
}

// SupportingDocument represents a row of the supporting_documents table.
type SupportingDocument struct {
	DocumentID       string    `db:"document_id"`
	ClaimID          string    `db:"claim_id"`
	OriginalFileName string    `db:"original_file_name"`
	StoredReference  string    `db:"stored_reference"`
	ContentType      string    `db:"content_type"`
	SizeBytes        int64     `db:"size_bytes"`
	UploadedAt       time.Time `db:"uploaded_at"`
}
