package services_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	"github.com/SscSPs/lecturer_claims_app/internal/core/services"
)

var reportTime = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func approvedClaim(id, lecturer, hours, rate string) domain.Claim {
	return domain.Claim{ClaimID: id, LecturerID: lecturer, HoursWorked: dec(hours), HourlyRate: dec(rate), Status: domain.ClaimStatusApproved}
}

func newReportingFixture() (*MockClaimRepository, *MockUserRepository, *fakeIdentity) {
	identity := newFakeIdentity()
	identity.add(hrID, "HR", domain.RoleHR)
	identity.add(lecturerID, "Lecturer", domain.RoleLecturer)
	return new(MockClaimRepository), new(MockUserRepository), identity
}

func TestPaymentSummary_EmptyIsZero(t *testing.T) {
	claims, users, identity := newReportingFixture()
	svc := services.NewReportingService(claims, users, identity, services.WithReportingClock(func() time.Time { return reportTime }))
	claims.On("FindClaimsByStatus", mock.Anything, domain.ClaimStatusApproved).Return([]domain.Claim{}, nil).Once()

	report, err := svc.PaymentSummary(context.Background(), domain.ClaimStatusApproved, hrID)

	require.NoError(t, err)
	assert.Empty(t, report.Lecturers)
	assert.NotNil(t, report.Lecturers)
	assert.Zero(t, report.ClaimCount)
	assert.True(t, report.TotalAmount.IsZero())
	assert.Equal(t, reportTime, report.GeneratedAt)
	users.AssertNotCalled(t, "FindUserNames", mock.Anything, mock.Anything)
}

func TestPaymentSummary_RequiresReportingRole(t *testing.T) {
	claims, users, identity := newReportingFixture()
	svc := services.NewReportingService(claims, users, identity)

	_, err := svc.PaymentSummary(context.Background(), domain.ClaimStatusApproved, lecturerID)

	assert.ErrorIs(t, err, apperrors.ErrUnauthorizedPrincipal)
}

func TestExportPaymentSummaryCSV(t *testing.T) {
	claims, users, identity := newReportingFixture()
	svc := services.NewReportingService(claims, users, identity)
	claims.On("FindClaimsByStatus", mock.Anything, domain.ClaimStatusApproved).Return([]domain.Claim{
		approvedClaim("c1", "l1", "10", "150"),
		approvedClaim("c2", "l2", "2.5", "100"),
		approvedClaim("c3", "l1", "1", "120.50"),
	}, nil).Once()
	users.On("FindUserNames", mock.Anything, []string{"l1", "l2"}).Return(map[string]string{"l1": "Zoe"}, nil).Once()

	var buf bytes.Buffer
	err := svc.ExportPaymentSummaryCSV(context.Background(), domain.ClaimStatusApproved, hrID, &buf)

	require.NoError(t, err)
	want := "lecturer_id,lecturer_name,claim_count,total_hours,total_amount\n" +
		"l2,Unknown,1,2.50,250.00\n" +
		"l1,Zoe,2,11.00,1620.50\n" +
		"TOTAL,,3,13.50,1870.50\n"
	assert.Equal(t, want, buf.String())
	claims.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestHRDashboard(t *testing.T) {
	claims, users, identity := newReportingFixture()
	svc := services.NewReportingService(claims, users, identity)
	pending := domain.ClaimStatusPending
	claims.On("ListClaims", mock.Anything, domain.ClaimFilter{Status: &pending, Limit: 50}).
		Return(&domain.ClaimPage{Claims: []domain.Claim{{ClaimID: "p1", Status: pending}}}, nil).Once()
	claims.On("FindClaimsByStatus", mock.Anything, domain.ClaimStatusApproved).
		Return([]domain.Claim{approvedClaim("c1", "l1", "10", "150"), approvedClaim("c2", "l1", "1", "100")}, nil).Once()
	users.On("FindUsersByRole", mock.Anything, domain.RoleLecturer).Return(nil, nil).Once()

	dash, err := svc.HRDashboard(context.Background(), &pending, hrID)

	require.NoError(t, err)
	assert.Len(t, dash.Claims, 1)
	assert.Equal(t, 2, dash.TotalApprovedClaims)
	assert.True(t, dec("1600").Equal(dash.TotalPayment))
	assert.NotNil(t, dash.Lecturers)
	claims.AssertExpectations(t)
}
