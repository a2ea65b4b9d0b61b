package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/dto"
)

// --- Mock ClaimService ---
type MockClaimService struct {
	mock.Mock
}

func (m *MockClaimService) claimResult(args mock.Arguments) (*domain.Claim, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}

func (m *MockClaimService) SubmitClaim(ctx context.Context, lecturerID string, req dto.SubmitClaimRequest, files []dto.UploadedFile) (*domain.Claim, error) {
	return m.claimResult(m.Called(ctx, lecturerID, req, files))
}
func (m *MockClaimService) GetClaim(ctx context.Context, claimID string, requestingUserID string) (*domain.Claim, error) {
	return m.claimResult(m.Called(ctx, claimID, requestingUserID))
}
func (m *MockClaimService) ListMyClaims(ctx context.Context, requestingUserID string) ([]domain.Claim, error) {
	args := m.Called(ctx, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}
func (m *MockClaimService) PendingQueue(ctx context.Context, requestingUserID string, params dto.ListClaimsParams) (*domain.ClaimPage, error) {
	args := m.Called(ctx, requestingUserID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClaimPage), args.Error(1)
}
func (m *MockClaimService) ListClaims(ctx context.Context, requestingUserID string, params dto.ListClaimsParams) (*domain.ClaimPage, error) {
	args := m.Called(ctx, requestingUserID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClaimPage), args.Error(1)
}
func (m *MockClaimService) OpenDocument(ctx context.Context, documentID string, requestingUserID string) (*domain.SupportingDocument, io.ReadCloser, error) {
	args := m.Called(ctx, documentID, requestingUserID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.SupportingDocument), args.Get(1).(io.ReadCloser), args.Error(2)
}
func (m *MockClaimService) ApproveClaim(ctx context.Context, claimID string, reviewerID string) (*domain.Claim, error) {
	return m.claimResult(m.Called(ctx, claimID, reviewerID))
}
func (m *MockClaimService) RejectClaim(ctx context.Context, claimID string, reviewerID string, reason string) (*domain.Claim, error) {
	return m.claimResult(m.Called(ctx, claimID, reviewerID, reason))
}
func (m *MockClaimService) BulkApprove(ctx context.Context, claimIDs []string, requestingUserID string) ([]dto.BulkApproveResult, error) {
	args := m.Called(ctx, claimIDs, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.BulkApproveResult), args.Error(1)
}
func (m *MockClaimService) EditClaim(ctx context.Context, claimID string, req dto.EditClaimRequest, requestingUserID string) (*domain.Claim, error) {
	return m.claimResult(m.Called(ctx, claimID, req, requestingUserID))
}
func (m *MockClaimService) DeleteClaim(ctx context.Context, claimID string, requestingUserID string) error {
	return m.Called(ctx, claimID, requestingUserID).Error(0)
}

var _ portssvc.ClaimSvcFacade = (*MockClaimService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) PaymentSummary(ctx context.Context, status domain.ClaimStatus, requestingUserID string) (*domain.PaymentReport, error) {
	args := m.Called(ctx, status, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentReport), args.Error(1)
}
func (m *MockReportingService) HRDashboard(ctx context.Context, statusFilter *domain.ClaimStatus, requestingUserID string) (*domain.HRDashboard, error) {
	args := m.Called(ctx, statusFilter, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HRDashboard), args.Error(1)
}
func (m *MockReportingService) ExportPaymentSummaryCSV(ctx context.Context, status domain.ClaimStatus, requestingUserID string, w io.Writer) error {
	args := m.Called(ctx, status, requestingUserID, w)
	if args.Error(0) == nil {
		_, _ = io.WriteString(w, args.String(1))
	}
	return args.Error(0)
}

var _ portssvc.ReportingSvcFacade = (*MockReportingService)(nil)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) userResult(args mock.Arguments) (*domain.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return m.userResult(m.Called(ctx, userID))
}
func (m *MockUserService) ListLecturers(ctx context.Context, requestingUserID string) ([]domain.User, error) {
	args := m.Called(ctx, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	return m.userResult(m.Called(ctx, req))
}
func (m *MockUserService) UpdateLecturerContact(ctx context.Context, lecturerID string, req dto.UpdateLecturerContactRequest, requestingUserID string) (*domain.User, error) {
	return m.userResult(m.Called(ctx, lecturerID, req, requestingUserID))
}
func (m *MockUserService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	return m.userResult(m.Called(ctx, email, password))
}
func (m *MockUserService) SignInExternal(ctx context.Context, identity domain.ExternalIdentity) (*domain.User, error) {
	return m.userResult(m.Called(ctx, identity))
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Stubs ---

type stubIdentity struct {
	principals map[string]domain.Principal
}

func (s stubIdentity) ResolvePrincipal(_ context.Context, userID string) (*domain.Principal, error) {
	p, ok := s.principals[userID]
	if !ok {
		return nil, apperrors.ErrUnauthorizedPrincipal
	}
	return &p, nil
}
func (s stubIdentity) HasRole(p domain.Principal, r domain.Role) bool { return p.HasRole(r) }
func (s stubIdentity) Landing(p domain.Principal) string             { return domain.DefaultLandingTable.Landing(p) }
func (s stubIdentity) Invalidate(string)                             {}

type stubTokens struct{}

func (stubTokens) GenerateAccessToken(_ context.Context, user *domain.User) (string, time.Time, error) {
	return "token-for-" + user.UserID, time.Unix(1700000000, 0), nil
}

type stubGoogle struct{}

func (stubGoogle) GenerateStateString(context.Context) (string, error) { return "state-123", nil }
func (stubGoogle) GetGoogleLoginURL(_ context.Context, state string) string {
	return "https://accounts.example.test/auth?state=" + state
}
func (stubGoogle) ExchangeCode(_ context.Context, code string) (*domain.ExternalIdentity, error) {
	if code != "good-code" {
		return nil, apperrors.ErrUnauthorized
	}
	return &domain.ExternalIdentity{Provider: domain.AuthProviderGoogle, ProviderUserID: "g-1", Email: "lec@claims.test", EmailVerified: true}, nil
}
