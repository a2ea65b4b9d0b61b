package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/dto"
	"github.com/SscSPs/lecturer_claims_app/internal/handlers"
	"github.com/SscSPs/lecturer_claims_app/internal/middleware"
	"github.com/SscSPs/lecturer_claims_app/internal/platform/config"
	"github.com/SscSPs/lecturer_claims_app/internal/utils"
)

const (
	lecturerID    = "lec-1"
	coordinatorID = "coord-1"
	hrID          = "hr-1"
)

type HandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	jwtSecret string
	claims    *MockClaimService
	reporting *MockReportingService
	users     *MockUserService
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.jwtSecret = "handler-test-secret-that-is-long-enough"
	suite.claims = new(MockClaimService)
	suite.reporting = new(MockReportingService)
	suite.users = new(MockUserService)

	cfg := &config.Config{
		JWTSecret:     suite.jwtSecret,
		RateLimit:     "1000-M",
		AuthRateLimit: "1000-M",
		IsProduction:  true,
	}
	services := &portssvc.ServiceContainer{
		Claim:     suite.claims,
		Reporting: suite.reporting,
		User:      suite.users,
		Identity: stubIdentity{principals: map[string]domain.Principal{
			lecturerID:    {UserID: lecturerID, Roles: []domain.Role{domain.RoleLecturer}},
			coordinatorID: {UserID: coordinatorID, Roles: []domain.Role{domain.RoleCoordinator}},
			hrID:          {UserID: hrID, Roles: []domain.Role{domain.RoleHR}},
		}},
		Token:       stubTokens{},
		GoogleOAuth: stubGoogle{},
	}

	suite.router = gin.New()
	suite.router.Use(middleware.StructuredLoggingMiddleware(slog.Default()))
	suite.Require().NoError(handlers.RegisterRoutes(suite.router, cfg, services))
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.claims.AssertExpectations(suite.T())
	suite.reporting.AssertExpectations(suite.T())
	suite.users.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) token(userID string) string {
	token, err := utils.GenerateJWT(userID, suite.jwtSecret, time.Hour, "claims-test")
	suite.Require().NoError(err)
	return token
}

func (suite *HandlerTestSuite) do(req *http.Request, userID string) *httptest.ResponseRecorder {
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.token(userID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlerTestSuite) jsonRequest(method, path string, body any) *http.Request {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sampleClaim(status domain.ClaimStatus) *domain.Claim {
	return &domain.Claim{
		ClaimID:     "claim-1",
		LecturerID:  lecturerID,
		HoursWorked: decimal.NewFromInt(10),
		HourlyRate:  decimal.NewFromInt(250),
		TotalAmount: decimal.NewFromInt(2500),
		Status:      status,
		SubmittedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (suite *HandlerTestSuite) multipartSubmission(fields map[string]string, files map[string]string) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		suite.Require().NoError(mw.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		suite.Require().NoError(err)
		_, err = io.WriteString(fw, content)
		suite.Require().NoError(err)
	}
	suite.Require().NoError(mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// --- Claims ---

func (suite *HandlerTestSuite) TestSubmitClaim_Created() {
	suite.claims.On("SubmitClaim", mock.Anything, lecturerID,
		mock.MatchedBy(func(req dto.SubmitClaimRequest) bool {
			return req.HoursWorked.Equal(decimal.NewFromInt(10)) && req.HourlyRate.Equal(decimal.NewFromInt(250)) && req.Notes == "March"
		}),
		mock.MatchedBy(func(files []dto.UploadedFile) bool {
			return len(files) == 1 && files[0].FileName == "hours.pdf"
		}),
	).Return(sampleClaim(domain.ClaimStatusApproved), nil).Once()

	req := suite.multipartSubmission(
		map[string]string{"hoursWorked": "10", "hourlyRate": "250", "notes": "March", "totalAmount": "999999"},
		map[string]string{"hours.pdf": "%PDF-1.4"},
	)
	w := suite.do(req, lecturerID)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.ClaimResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("claim-1", resp.ClaimID)
	suite.True(resp.TotalAmount.Equal(decimal.NewFromInt(2500)))
}

func (suite *HandlerTestSuite) TestSubmitClaim_NonNumericHours() {
	req := suite.multipartSubmission(map[string]string{"hoursWorked": "ten", "hourlyRate": "250"}, nil)
	w := suite.do(req, lecturerID)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestSubmitClaim_SecondSubmissionConflicts() {
	suite.claims.On("SubmitClaim", mock.Anything, lecturerID, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: lecturer %s", apperrors.ErrDuplicateSubmission, lecturerID)).Once()

	w := suite.do(suite.multipartSubmission(map[string]string{"hoursWorked": "1", "hourlyRate": "1"}, nil), lecturerID)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestSubmitClaim_RejectedFile() {
	suite.claims.On("SubmitClaim", mock.Anything, lecturerID, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: extension .exe is not allowed", apperrors.ErrFileRejected)).Once()

	req := suite.multipartSubmission(map[string]string{"hoursWorked": "1", "hourlyRate": "1"}, map[string]string{"run.exe": "MZ"})
	w := suite.do(req, lecturerID)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlerTestSuite) TestSubmitClaim_CoordinatorForbidden() {
	w := suite.do(suite.multipartSubmission(map[string]string{"hoursWorked": "1", "hourlyRate": "1"}, nil), coordinatorID)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestRequiresAuthentication() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/claims/mine", nil), "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestListMyClaimsIsNotShadowedByClaimID() {
	suite.claims.On("ListMyClaims", mock.Anything, lecturerID).
		Return([]domain.Claim{*sampleClaim(domain.ClaimStatusPending)}, nil).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/claims/mine", nil), lecturerID)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.ClaimResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp, 1)
}

func (suite *HandlerTestSuite) TestGetClaim_NotVisible() {
	suite.claims.On("GetClaim", mock.Anything, "claim-9", lecturerID).
		Return(nil, fmt.Errorf("%w: claim claim-9", apperrors.ErrUnauthorizedPrincipal)).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/claims/claim-9", nil), lecturerID)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteClaim() {
	suite.claims.On("DeleteClaim", mock.Anything, "claim-1", lecturerID).Return(nil).Once()
	suite.claims.On("DeleteClaim", mock.Anything, "claim-2", lecturerID).
		Return(fmt.Errorf("%w: claim claim-2 is APPROVED", apperrors.ErrInvalidStateTransition)).Once()

	w := suite.do(httptest.NewRequest(http.MethodDelete, "/api/v1/claims/claim-1", nil), lecturerID)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do(httptest.NewRequest(http.MethodDelete, "/api/v1/claims/claim-2", nil), lecturerID)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestDownloadDocument() {
	doc := &domain.SupportingDocument{DocumentID: "doc-1", OriginalFileName: "hours.pdf", ContentType: "application/pdf", SizeBytes: 8}
	suite.claims.On("OpenDocument", mock.Anything, "doc-1", coordinatorID).
		Return(doc, io.NopCloser(strings.NewReader("%PDF-1.4")), nil).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/documents/doc-1", nil), coordinatorID)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("application/pdf", w.Header().Get("Content-Type"))
	suite.Contains(w.Header().Get("Content-Disposition"), `filename="hours.pdf"`)
	suite.Equal("%PDF-1.4", w.Body.String())
}

// --- Review ---

func (suite *HandlerTestSuite) TestApprove_LecturerForbidden() {
	w := suite.do(httptest.NewRequest(http.MethodPost, "/api/v1/review/claims/claim-1/approve", nil), lecturerID)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestApprove_SecondReviewConflicts() {
	suite.claims.On("ApproveClaim", mock.Anything, "claim-1", coordinatorID).Return(sampleClaim(domain.ClaimStatusApproved), nil).Once()
	suite.claims.On("ApproveClaim", mock.Anything, "claim-1", coordinatorID).
		Return(nil, fmt.Errorf("%w: claim claim-1 is APPROVED", apperrors.ErrInvalidStateTransition)).Once()

	w := suite.do(httptest.NewRequest(http.MethodPost, "/api/v1/review/claims/claim-1/approve", nil), coordinatorID)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(httptest.NewRequest(http.MethodPost, "/api/v1/review/claims/claim-1/approve", nil), coordinatorID)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestReject_ReasonIsOptional() {
	suite.claims.On("RejectClaim", mock.Anything, "claim-1", coordinatorID, "").Return(sampleClaim(domain.ClaimStatusRejected), nil).Once()
	suite.claims.On("RejectClaim", mock.Anything, "claim-2", coordinatorID, "missing timesheet").Return(sampleClaim(domain.ClaimStatusRejected), nil).Once()

	w := suite.do(httptest.NewRequest(http.MethodPost, "/api/v1/review/claims/claim-1/reject", nil), coordinatorID)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	req := suite.jsonRequest(http.MethodPost, "/api/v1/review/claims/claim-2/reject", dto.RejectClaimRequest{Reason: "missing timesheet"})
	w = suite.do(req, coordinatorID)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *HandlerTestSuite) TestPendingQueue_PassesPaging() {
	suite.claims.On("PendingQueue", mock.Anything, coordinatorID,
		mock.MatchedBy(func(p dto.ListClaimsParams) bool {
			return p.Limit == 5 && p.NextToken != nil && *p.NextToken == "abc"
		}),
	).Return(&domain.ClaimPage{Claims: []domain.Claim{}}, nil).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/review/pending?limit=5&nextToken=abc", nil), coordinatorID)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *HandlerTestSuite) TestPendingQueue_LimitOutOfRange() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/review/pending?limit=1000", nil), coordinatorID)
	suite.Equal(http.StatusBadRequest, w.Code)
}

// --- HR ---

func (suite *HandlerTestSuite) TestPaymentSummaryCSV() {
	csvBody := "lecturer_id,lecturer_name,claim_count,total_hours,total_amount\nTOTAL,,0,0.00,0.00\n"
	suite.reporting.On("ExportPaymentSummaryCSV", mock.Anything, domain.ClaimStatusApproved, hrID, mock.Anything).
		Return(nil, csvBody).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/hr/reports/summary.csv", nil), hrID)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Header().Get("Content-Type"), "text/csv")
	suite.Contains(w.Header().Get("Content-Disposition"), "payment-summary-approved.csv")
	suite.Equal(csvBody, w.Body.String())
}

func (suite *HandlerTestSuite) TestPaymentSummary_UnknownStatus() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/hr/reports/summary?status=paid", nil), hrID)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestDashboard_StatusFilter() {
	suite.reporting.On("HRDashboard", mock.Anything,
		mock.MatchedBy(func(s *domain.ClaimStatus) bool { return s != nil && *s == domain.ClaimStatusPending }),
		hrID,
	).Return(&domain.HRDashboard{Claims: []domain.Claim{}, Lecturers: []domain.User{}, TotalPayment: decimal.Zero}, nil).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/hr/dashboard?status=pending", nil), hrID)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *HandlerTestSuite) TestDashboard_CoordinatorForbidden() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/hr/dashboard", nil), coordinatorID)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestBulkApprove() {
	results := []dto.BulkApproveResult{{ClaimID: "a", Approved: true}, {ClaimID: "b", Approved: false, Error: "not pending"}}
	suite.claims.On("BulkApprove", mock.Anything, []string{"a", "b"}, hrID).Return(results, nil).Once()

	w := suite.do(suite.jsonRequest(http.MethodPost, "/api/v1/hr/claims/approve", dto.BulkApproveRequest{ClaimIDs: []string{"a", "b"}}), hrID)

	suite.Equal(http.StatusOK, w.Code)
	var got []dto.BulkApproveResult
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Equal(results, got)
}

func (suite *HandlerTestSuite) TestBulkApprove_EmptyList() {
	w := suite.do(suite.jsonRequest(http.MethodPost, "/api/v1/hr/claims/approve", dto.BulkApproveRequest{ClaimIDs: []string{}}), hrID)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestUpdateLecturerContact_Duplicate() {
	req := dto.UpdateLecturerContactRequest{Email: "taken@claims.test", Phone: "123"}
	suite.users.On("UpdateLecturerContact", mock.Anything, lecturerID, req, hrID).
		Return(nil, fmt.Errorf("%w: email taken", apperrors.ErrDuplicate)).Once()

	w := suite.do(suite.jsonRequest(http.MethodPut, "/api/v1/hr/lecturers/"+lecturerID, req), hrID)
	suite.Equal(http.StatusConflict, w.Code)
}

// --- Auth ---

func (suite *HandlerTestSuite) TestLogin_InvalidCredentials() {
	suite.users.On("AuthenticateUser", mock.Anything, "lec@claims.test", "wrong-password").
		Return(nil, fmt.Errorf("%w: bad credentials", apperrors.ErrUnauthorized)).Once()

	w := suite.do(suite.jsonRequest(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "lec@claims.test", Password: "wrong-password"}), "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestLogin_ReturnsLanding() {
	user := &domain.User{UserID: coordinatorID, Roles: []domain.Role{domain.RoleCoordinator, domain.RoleLecturer}}
	suite.users.On("AuthenticateUser", mock.Anything, "coord@claims.test", "secret-pass").Return(user, nil).Once()

	w := suite.do(suite.jsonRequest(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Email: "coord@claims.test", Password: "secret-pass"}), "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.LoginResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("token-for-"+coordinatorID, resp.Token)
	suite.Equal("/review/pending", resp.Landing)
}

func (suite *HandlerTestSuite) TestGoogleCallback() {
	suite.users.On("SignInExternal", mock.Anything, mock.MatchedBy(func(ext domain.ExternalIdentity) bool {
		return ext.ProviderUserID == "g-1"
	})).Return(&domain.User{UserID: lecturerID, Roles: []domain.Role{domain.RoleLecturer}}, nil).Once()

	w := suite.do(suite.jsonRequest(http.MethodPost, "/api/v1/auth/google/callback", dto.ExchangeCodeRequest{Code: "good-code"}), "")
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.do(suite.jsonRequest(http.MethodPost, "/api/v1/auth/google/callback", dto.ExchangeCodeRequest{Code: "stale"}), "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestMe() {
	suite.users.On("GetUserByID", mock.Anything, lecturerID).
		Return(&domain.User{UserID: lecturerID, Email: "lec@claims.test", Roles: []domain.Role{domain.RoleLecturer}}, nil).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/me", nil), lecturerID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.MeResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("/claims/mine", resp.Landing)
	suite.Equal("lec@claims.test", resp.User.Email)
}

func (suite *HandlerTestSuite) TestHealthAndMetrics() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	suite.Equal(http.StatusOK, w.Code)
}
