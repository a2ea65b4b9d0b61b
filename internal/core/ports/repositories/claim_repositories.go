package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
)

// ClaimReader defines read operations for claims
type ClaimReader interface {
	// FindClaimByID retrieves a claim with its documents. Returns apperrors.ErrNotFound if absent.
	FindClaimByID(ctx context.Context, claimID string) (*domain.Claim, error)

	// FindClaimsByLecturer returns every claim owned by lecturerID, newest first.
	FindClaimsByLecturer(ctx context.Context, lecturerID string) ([]domain.Claim, error)

	// FindClaimsByStatus returns all claims in status without pagination.
	FindClaimsByStatus(ctx context.Context, status domain.ClaimStatus) ([]domain.Claim, error)

	// ListClaims returns a page of claims matching filter.
	ListClaims(ctx context.Context, filter domain.ClaimFilter) (*domain.ClaimPage, error)

	// ExistsForLecturerOnDay reports whether lecturerID already has a claim for day.
	ExistsForLecturerOnDay(ctx context.Context, lecturerID string, day time.Time) (bool, error)
}

// ClaimWriter defines write operations for claims
type ClaimWriter interface {
	// CreateClaim inserts the claim and its documents atomically.
	// Returns apperrors.ErrDuplicateSubmission when the lecturer already has a claim that day.
	CreateClaim(ctx context.Context, claim domain.Claim, docs []domain.SupportingDocument) error

	// UpdateClaimReview moves a pending claim to a terminal status.
	// Returns apperrors.ErrNotFound or apperrors.ErrInvalidStateTransition when no pending row matched.
	UpdateClaimReview(ctx context.Context, claim domain.Claim) error

	// UpdatePendingClaim replaces hours, rate, total and notes of a pending claim.
	UpdatePendingClaim(ctx context.Context, claim domain.Claim) error

	// DeleteClaim removes a pending claim and its document rows, returning the removed documents.
	DeleteClaim(ctx context.Context, claimID string) ([]domain.SupportingDocument, error)
}

// DocumentReader defines read operations for supporting documents
type DocumentReader interface {
	FindDocumentsByClaim(ctx context.Context, claimID string) ([]domain.SupportingDocument, error)
	FindDocumentByID(ctx context.Context, documentID string) (*domain.SupportingDocument, error)
}

// ClaimRepositoryFacade combines all claim-related repository interfaces
type ClaimRepositoryFacade interface {
	ClaimReader
	ClaimWriter
	DocumentReader
}
