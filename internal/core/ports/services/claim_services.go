package services

import (
	"context"
	"io"

	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	"github.com/SscSPs/lecturer_claims_app/internal/dto"
)

// ClaimSubmitterSvc defines the lecturer submission operation
type ClaimSubmitterSvc interface {
	// SubmitClaim validates, stores and routes a new claim for lecturerID.
	SubmitClaim(ctx context.Context, lecturerID string, req dto.SubmitClaimRequest, files []dto.UploadedFile) (*domain.Claim, error)
}

// ClaimReaderSvc defines read operations on claims
type ClaimReaderSvc interface {
	// GetClaim returns a claim visible to the requesting user.
	GetClaim(ctx context.Context, claimID string, requestingUserID string) (*domain.Claim, error)

	// ListMyClaims returns the requesting lecturer's claims, newest first.
	ListMyClaims(ctx context.Context, requestingUserID string) ([]domain.Claim, error)

	// PendingQueue returns pending claims, oldest first.
	PendingQueue(ctx context.Context, requestingUserID string, params dto.ListClaimsParams) (*domain.ClaimPage, error)

	// ListClaims returns claims optionally filtered by status, newest first.
	ListClaims(ctx context.Context, requestingUserID string, params dto.ListClaimsParams) (*domain.ClaimPage, error)

	// OpenDocument returns a supporting document and its bytes. The caller closes the reader.
	OpenDocument(ctx context.Context, documentID string, requestingUserID string) (*domain.SupportingDocument, io.ReadCloser, error)
}

// ClaimReviewerSvc defines reviewer transitions
type ClaimReviewerSvc interface {
	ApproveClaim(ctx context.Context, claimID string, reviewerID string) (*domain.Claim, error)
	RejectClaim(ctx context.Context, claimID string, reviewerID string, reason string) (*domain.Claim, error)

	// BulkApprove approves each listed claim independently on behalf of HR.
	BulkApprove(ctx context.Context, claimIDs []string, requestingUserID string) ([]dto.BulkApproveResult, error)
}

// ClaimOwnerSvc defines the owner-only changes allowed while a claim is pending
type ClaimOwnerSvc interface {
	EditClaim(ctx context.Context, claimID string, req dto.EditClaimRequest, requestingUserID string) (*domain.Claim, error)
	DeleteClaim(ctx context.Context, claimID string, requestingUserID string) error
}

// ClaimSvcFacade combines all claim-related service interfaces
type ClaimSvcFacade interface {
	ClaimSubmitterSvc
	ClaimReaderSvc
	ClaimReviewerSvc
	ClaimOwnerSvc
}
