package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portsrepo "github.com/SscSPs/lecturer_claims_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/dto"
	"github.com/SscSPs/lecturer_claims_app/internal/metrics"
)

// Roles allowed to read any claim.
var claimOverseerRoles = []domain.Role{domain.RoleCoordinator, domain.RoleManager, domain.RoleHR, domain.RoleAdmin}

// claimService runs the claim lifecycle: submission, review, owner edits and deletion.
type claimService struct {
	BaseService
	claimRepo portsrepo.ClaimRepositoryFacade
	store     portsrepo.DocumentStore
	policy    domain.ClaimPolicy
	location  *time.Location
	now       func() time.Time
}

// ClaimServiceOption is a functional option for configuring the claim service
type ClaimServiceOption func(*claimService)

// WithClaimPolicy overrides the default validation and routing bounds.
func WithClaimPolicy(policy domain.ClaimPolicy) ClaimServiceOption {
	return func(s *claimService) {
		s.policy = policy
	}
}

// WithSubmissionLocation sets the timezone whose calendar day the daily throttle uses.
func WithSubmissionLocation(loc *time.Location) ClaimServiceOption {
	return func(s *claimService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClaimClock replaces time.Now, mainly for tests.
func WithClaimClock(now func() time.Time) ClaimServiceOption {
	return func(s *claimService) {
		s.now = now
	}
}

// NewClaimService creates a new claim service.
func NewClaimService(claimRepo portsrepo.ClaimRepositoryFacade, store portsrepo.DocumentStore, identity portssvc.IdentitySvc, options ...ClaimServiceOption) portssvc.ClaimSvcFacade {
	svc := &claimService{
		BaseService: BaseService{Identity: identity},
		claimRepo:   claimRepo,
		store:       store,
		policy:      domain.DefaultClaimPolicy(),
		location:    time.UTC,
		now:         time.Now,
	}
	for _, opt := range options {
		opt(svc)
	}
	return svc
}

var _ portssvc.ClaimSvcFacade = (*claimService)(nil)

// SubmitClaim validates and stores a claim, deciding whether it needs human review.
func (s *claimService) SubmitClaim(ctx context.Context, lecturerID string, req dto.SubmitClaimRequest, files []dto.UploadedFile) (*domain.Claim, error) {
	if _, err := s.AuthorizeUser(ctx, lecturerID, domain.RoleLecturer); err != nil {
		metrics.RecordSubmissionFailure("unauthorized")
		return nil, err
	}

	if err := s.policy.Validate(req.HoursWorked, req.HourlyRate, req.Notes); err != nil {
		metrics.RecordSubmissionFailure("validation")
		return nil, err
	}
	// Reject the whole batch before anything is written.
	for _, f := range files {
		if err := s.policy.ValidateUpload(f.FileName, f.Size); err != nil {
			metrics.RecordSubmissionFailure("file_rejected")
			return nil, err
		}
	}

	now := s.now().UTC()
	day := domain.SubmissionDay(now, s.location)

	exists, err := s.claimRepo.ExistsForLecturerOnDay(ctx, lecturerID, day)
	if err != nil {
		s.LogError(ctx, err, "Failed to check daily submission", slog.String("lecturer_id", lecturerID))
		return nil, fmt.Errorf("failed to check existing submissions: %w", err)
	}
	if exists {
		metrics.RecordSubmissionFailure("duplicate")
		return nil, fmt.Errorf("%w: lecturer %s already has a claim for %s", apperrors.ErrDuplicateSubmission, lecturerID, day.Format(time.DateOnly))
	}

	claim := domain.Claim{
		ClaimID:       uuid.NewString(),
		LecturerID:    lecturerID,
		HoursWorked:   req.HoursWorked,
		HourlyRate:    req.HourlyRate,
		Notes:         strings.TrimSpace(req.Notes),
		SubmittedAt:   now,
		SubmissionDay: day,
		LastUpdatedAt: now,
	}
	claim.RecomputeTotal()
	claim.RequiresReview = s.policy.RequiresReview(claim.HoursWorked, claim.HourlyRate, len(files))
	claim.Status = s.policy.InitialStatus(claim.RequiresReview)
	if claim.Status == domain.ClaimStatusApproved {
		reviewer := domain.SystemReviewerID
		claim.ReviewerID = &reviewer
		claim.ReviewedAt = &now
	}

	docs, err := s.storeFiles(ctx, claim.ClaimID, files, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrFileRejected) {
			metrics.RecordSubmissionFailure("file_rejected")
		}
		return nil, err
	}

	if err := s.claimRepo.CreateClaim(ctx, claim, docs); err != nil {
		s.discardStored(ctx, docs)
		if errors.Is(err, apperrors.ErrDuplicateSubmission) {
			metrics.RecordSubmissionFailure("duplicate")
			return nil, err
		}
		s.LogError(ctx, err, "Failed to persist claim", slog.String("claim_id", claim.ClaimID))
		return nil, fmt.Errorf("failed to save claim: %w", err)
	}
	claim.Documents = docs

	metrics.RecordClaimSubmitted(string(claim.Status))
	s.LogInfo(ctx, "Claim submitted",
		slog.String("claim_id", claim.ClaimID),
		slog.String("lecturer_id", lecturerID),
		slog.String("status", string(claim.Status)),
		slog.Bool("requires_review", claim.RequiresReview),
		slog.Int("documents", len(docs)))
	return &claim, nil
}

// storeFiles writes every upload, deleting what was already written if one fails.
func (s *claimService) storeFiles(ctx context.Context, claimID string, files []dto.UploadedFile, now time.Time) ([]domain.SupportingDocument, error) {
	docs := make([]domain.SupportingDocument, 0, len(files))
	for _, f := range files {
		doc, err := s.storeFile(ctx, claimID, f, now)
		if err != nil {
			s.discardStored(ctx, docs)
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *claimService) storeFile(ctx context.Context, claimID string, f dto.UploadedFile, now time.Time) (domain.SupportingDocument, error) {
	rc, err := f.Open()
	if err != nil {
		return domain.SupportingDocument{}, fmt.Errorf("%w: could not read %q: %v", apperrors.ErrFileRejected, f.FileName, err)
	}
	defer rc.Close()

	obj, err := s.store.Save(ctx, rc, f.FileName, s.policy.MaxFileBytes)
	if err != nil {
		if errors.Is(err, apperrors.ErrFileRejected) {
			return domain.SupportingDocument{}, err
		}
		s.LogError(ctx, err, "Failed to store document", slog.String("file_name", f.FileName))
		return domain.SupportingDocument{}, fmt.Errorf("failed to store %q: %w", f.FileName, err)
	}

	return domain.SupportingDocument{
		DocumentID:       uuid.NewString(),
		ClaimID:          claimID,
		OriginalFileName: filepath.Base(f.FileName),
		StoredReference:  obj.Reference,
		ContentType:      obj.ContentType,
		SizeBytes:        obj.SizeBytes,
		UploadedAt:       now,
	}, nil
}

// discardStored deletes stored objects best-effort; failures are logged and counted.
func (s *claimService) discardStored(ctx context.Context, docs []domain.SupportingDocument) {
	for _, d := range docs {
		if err := s.store.Delete(ctx, d.StoredReference); err != nil {
			metrics.RecordDocumentCleanupFailure()
			s.LogError(ctx, err, "Failed to delete stored document",
				slog.String("claim_id", d.ClaimID),
				slog.String("reference", d.StoredReference))
		}
	}
}

// GetClaim returns a claim to its owner or to an overseeing role.
func (s *claimService) GetClaim(ctx context.Context, claimID string, requestingUserID string) (*domain.Claim, error) {
	principal, err := s.AuthorizeUser(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	claim, err := s.claimRepo.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !canView(*principal, *claim) {
		return nil, fmt.Errorf("%w: claim %s belongs to another lecturer", apperrors.ErrUnauthorizedPrincipal, claimID)
	}
	return claim, nil
}

func canView(p domain.Principal, c domain.Claim) bool {
	return c.IsOwnedBy(p.UserID) || p.HasAnyRole(claimOverseerRoles...)
}

// ListMyClaims returns the caller's claims, newest first.
func (s *claimService) ListMyClaims(ctx context.Context, requestingUserID string) ([]domain.Claim, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, domain.RoleLecturer); err != nil {
		return nil, err
	}
	claims, err := s.claimRepo.FindClaimsByLecturer(ctx, requestingUserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list lecturer claims", slog.String("lecturer_id", requestingUserID))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	return claims, nil
}

// PendingQueue lists pending claims oldest first for reviewers.
func (s *claimService) PendingQueue(ctx context.Context, requestingUserID string, params dto.ListClaimsParams) (*domain.ClaimPage, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, domain.ReviewerRoles...); err != nil {
		return nil, err
	}
	pending := domain.ClaimStatusPending
	return s.claimRepo.ListClaims(ctx, domain.ClaimFilter{
		Status:      &pending,
		OldestFirst: true,
		Limit:       params.Limit,
		NextToken:   params.NextToken,
	})
}

// ListClaims lists claims newest first, optionally by status.
func (s *claimService) ListClaims(ctx context.Context, requestingUserID string, params dto.ListClaimsParams) (*domain.ClaimPage, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, claimOverseerRoles...); err != nil {
		return nil, err
	}
	filter := domain.ClaimFilter{Limit: params.Limit, NextToken: params.NextToken}
	if params.Status != "" {
		status, err := domain.ParseClaimStatus(params.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	return s.claimRepo.ListClaims(ctx, filter)
}

// OpenDocument streams a supporting document to anyone allowed to view its claim.
func (s *claimService) OpenDocument(ctx context.Context, documentID string, requestingUserID string) (*domain.SupportingDocument, io.ReadCloser, error) {
	principal, err := s.AuthorizeUser(ctx, requestingUserID)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.claimRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	claim, err := s.claimRepo.FindClaimByID(ctx, doc.ClaimID)
	if err != nil {
		return nil, nil, err
	}
	if !canView(*principal, *claim) {
		return nil, nil, fmt.Errorf("%w: document %s belongs to another lecturer", apperrors.ErrUnauthorizedPrincipal, documentID)
	}
	rc, err := s.store.Open(ctx, doc.StoredReference)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to open stored document", slog.String("document_id", documentID))
		}
		return nil, nil, err
	}
	return doc, rc, nil
}

// ApproveClaim moves a pending claim to Approved.
func (s *claimService) ApproveClaim(ctx context.Context, claimID string, reviewerID string) (*domain.Claim, error) {
	if _, err := s.AuthorizeUser(ctx, reviewerID, domain.ReviewerRoles...); err != nil {
		return nil, err
	}
	return s.review(ctx, claimID, reviewerID, domain.ClaimStatusApproved, "")
}

// RejectClaim moves a pending claim to Rejected with an optional reason.
func (s *claimService) RejectClaim(ctx context.Context, claimID string, reviewerID string, reason string) (*domain.Claim, error) {
	if _, err := s.AuthorizeUser(ctx, reviewerID, domain.ReviewerRoles...); err != nil {
		return nil, err
	}
	return s.review(ctx, claimID, reviewerID, domain.ClaimStatusRejected, reason)
}

// review applies a transition; the repository update only matches pending rows,
// so the loser of a concurrent approve/reject gets ErrInvalidStateTransition.
func (s *claimService) review(ctx context.Context, claimID, reviewerID string, next domain.ClaimStatus, reason string) (*domain.Claim, error) {
	claim, err := s.claimRepo.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if err := claim.ApplyReview(next, reviewerID, s.now().UTC(), reason); err != nil {
		s.LogWarn(ctx, "Ignoring review of non-pending claim",
			slog.String("claim_id", claimID),
			slog.String("current_status", string(claim.Status)),
			slog.String("requested_status", string(next)))
		return nil, err
	}
	if err := s.claimRepo.UpdateClaimReview(ctx, *claim); err != nil {
		if errors.Is(err, apperrors.ErrInvalidStateTransition) || errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Claim changed during review", slog.String("claim_id", claimID), slog.String("error", err.Error()))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to record review", slog.String("claim_id", claimID))
		return nil, fmt.Errorf("failed to update claim: %w", err)
	}

	metrics.RecordTransition(strings.ToLower(string(next)))
	s.LogInfo(ctx, "Claim reviewed",
		slog.String("claim_id", claimID),
		slog.String("reviewer_id", reviewerID),
		slog.String("status", string(next)))
	return claim, nil
}

// BulkApprove lets HR approve several pending claims. Business-rule failures are
// reported per claim; an infrastructure failure stops the batch.
func (s *claimService) BulkApprove(ctx context.Context, claimIDs []string, requestingUserID string) ([]dto.BulkApproveResult, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, domain.RoleHR); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(claimIDs))
	results := make([]dto.BulkApproveResult, 0, len(claimIDs))
	for _, id := range claimIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		_, err := s.review(ctx, id, requestingUserID, domain.ClaimStatusApproved, "")
		switch {
		case err == nil:
			results = append(results, dto.BulkApproveResult{ClaimID: id, Approved: true})
		case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrInvalidStateTransition):
			results = append(results, dto.BulkApproveResult{ClaimID: id, Error: err.Error()})
		default:
			return results, err
		}
	}
	return results, nil
}

// EditClaim lets the owner change a pending claim. The total is recomputed.
func (s *claimService) EditClaim(ctx context.Context, claimID string, req dto.EditClaimRequest, requestingUserID string) (*domain.Claim, error) {
	claim, err := s.ownedPendingClaim(ctx, claimID, requestingUserID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Validate(req.HoursWorked, req.HourlyRate, req.Notes); err != nil {
		return nil, err
	}

	claim.HoursWorked = req.HoursWorked
	claim.HourlyRate = req.HourlyRate
	claim.Notes = strings.TrimSpace(req.Notes)
	claim.RecomputeTotal()
	claim.LastUpdatedAt = s.now().UTC()

	if err := s.claimRepo.UpdatePendingClaim(ctx, *claim); err != nil {
		if errors.Is(err, apperrors.ErrInvalidStateTransition) || errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update claim", slog.String("claim_id", claimID))
		return nil, fmt.Errorf("failed to update claim: %w", err)
	}
	s.LogInfo(ctx, "Claim edited", slog.String("claim_id", claimID))
	return claim, nil
}

// DeleteClaim removes a pending claim owned by the caller. Rows go first; stored
// objects are removed afterwards and a failed object delete only leaks the file.
func (s *claimService) DeleteClaim(ctx context.Context, claimID string, requestingUserID string) error {
	if _, err := s.ownedPendingClaim(ctx, claimID, requestingUserID); err != nil {
		return err
	}

	docs, err := s.claimRepo.DeleteClaim(ctx, claimID)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidStateTransition) || errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		s.LogError(ctx, err, "Failed to delete claim", slog.String("claim_id", claimID))
		return fmt.Errorf("failed to delete claim: %w", err)
	}
	s.discardStored(ctx, docs)

	s.LogInfo(ctx, "Claim deleted", slog.String("claim_id", claimID), slog.Int("documents", len(docs)))
	return nil
}

func (s *claimService) ownedPendingClaim(ctx context.Context, claimID, requestingUserID string) (*domain.Claim, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID); err != nil {
		return nil, err
	}
	claim, err := s.claimRepo.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !claim.IsOwnedBy(requestingUserID) {
		return nil, fmt.Errorf("%w: only the submitting lecturer may change claim %s", apperrors.ErrUnauthorizedPrincipal, claimID)
	}
	if !claim.Editable() {
		return nil, fmt.Errorf("%w: claim %s is %s", apperrors.ErrInvalidStateTransition, claimID, claim.Status)
	}
	return claim, nil
}
