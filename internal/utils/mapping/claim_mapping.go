package mapping

import (
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	"github.com/SscSPs/lecturer_claims_app/internal/models"
)

// ToModelClaim converts a domain Claim to a model Claim
func ToModelClaim(d domain.Claim) models.Claim {
	return models.Claim{
		ClaimID:         d.ClaimID,
		LecturerID:      d.LecturerID,
		HoursWorked:     d.HoursWorked,
		HourlyRate:      d.HourlyRate,
		TotalAmount:     d.TotalAmount,
		Notes:           d.Notes,
		SubmittedAt:     d.SubmittedAt,
		SubmissionDay:   d.SubmissionDay,
		Status:          string(d.Status),
		RequiresReview:  d.RequiresReview,
		ReviewedAt:      d.ReviewedAt,
		ReviewerID:      d.ReviewerID,
		RejectionReason: d.RejectionReason,
		LastUpdatedAt:   d.LastUpdatedAt,
	}
}

// ToDomainClaim converts a model Claim to a domain Claim without documents.
// The total is always derived from hours and rate, never taken from the row.
func ToDomainClaim(m models.Claim) domain.Claim {
	return domain.Claim{
		ClaimID:         m.ClaimID,
		LecturerID:      m.LecturerID,
		HoursWorked:     m.HoursWorked,
		HourlyRate:      m.HourlyRate,
		TotalAmount:     domain.ComputeTotal(m.HoursWorked, m.HourlyRate),
		Notes:           m.Notes,
		SubmittedAt:     m.SubmittedAt,
		SubmissionDay:   m.SubmissionDay,
		Status:          domain.ClaimStatus(m.Status),
		RequiresReview:  m.RequiresReview,
		ReviewedAt:      m.ReviewedAt,
		ReviewerID:      m.ReviewerID,
		RejectionReason: m.RejectionReason,
		LastUpdatedAt:   m.LastUpdatedAt,
		Documents:       []domain.SupportingDocument{},
	}
}

// ToModelDocument converts a domain SupportingDocument to a model SupportingDocument
func ToModelDocument(d domain.SupportingDocument) models.SupportingDocument {
	return models.SupportingDocument{
		DocumentID:       d.DocumentID,
		ClaimID:          d.ClaimID,
		OriginalFileName: d.OriginalFileName,
		StoredReference:  d.StoredReference,
		ContentType:      d.ContentType,
		SizeBytes:        d.SizeBytes,
		UploadedAt:       d.UploadedAt,
	}
}

// ToDomainDocument converts a model SupportingDocument to a domain SupportingDocument
func ToDomainDocument(m models.SupportingDocument) domain.SupportingDocument {
	return domain.SupportingDocument{
		DocumentID:       m.DocumentID,
		ClaimID:          m.ClaimID,
		OriginalFileName: m.OriginalFileName,
		StoredReference:  m.StoredReference,
		ContentType:      m.ContentType,
		SizeBytes:        m.SizeBytes,
		UploadedAt:       m.UploadedAt,
	}
}
