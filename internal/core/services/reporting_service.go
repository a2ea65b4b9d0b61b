package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portsrepo "github.com/SscSPs/lecturer_claims_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
)

// dashboardClaimLimit caps the claim list shown on the HR dashboard.
const dashboardClaimLimit = 50

var paymentReportRoles = []domain.Role{domain.RoleHR, domain.RoleManager, domain.RoleAdmin}

// reportingService implements the ReportingSvcFacade interface
type reportingService struct {
	BaseService
	claimRepo portsrepo.ClaimReader
	userRepo  portsrepo.UserReader
	now       func() time.Time
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingClock replaces time.Now for report timestamps.
func WithReportingClock(now func() time.Time) ReportingServiceOption {
	return func(s *reportingService) {
		s.now = now
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(claimRepo portsrepo.ClaimReader, userRepo portsrepo.UserReader, identity portssvc.IdentitySvc, options ...ReportingServiceOption) portssvc.ReportingSvcFacade {
	svc := &reportingService{
		BaseService: BaseService{Identity: identity},
		claimRepo:   claimRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// PaymentSummary groups every claim of status by lecturer.
func (s *reportingService) PaymentSummary(ctx context.Context, status domain.ClaimStatus, userID string) (*domain.PaymentReport, error) {
	if _, err := s.AuthorizeUser(ctx, userID, paymentReportRoles...); err != nil {
		return nil, err
	}

	claims, err := s.claimRepo.FindClaimsByStatus(ctx, status)
	if err != nil {
		s.LogError(ctx, err, "Failed to load claims for payment summary", slog.String("status", string(status)))
		return nil, fmt.Errorf("failed to load claims: %w", err)
	}

	ids := distinctLecturerIDs(claims)
	names := map[string]string{}
	if len(ids) > 0 {
		names, err = s.userRepo.FindUserNames(ctx, ids)
		if err != nil {
			s.LogError(ctx, err, "Failed to resolve lecturer names")
			return nil, fmt.Errorf("failed to resolve lecturer names: %w", err)
		}
	}

	report := domain.SummarizeClaims(status, claims, names, s.now().UTC())
	s.LogDebug(ctx, "Payment summary generated",
		slog.String("status", string(status)),
		slog.Int("lecturers", len(report.Lecturers)),
		slog.Int("claims", report.ClaimCount))
	return &report, nil
}

// HRDashboard shows recent claims, approved totals and the lecturer roster.
func (s *reportingService) HRDashboard(ctx context.Context, statusFilter *domain.ClaimStatus, userID string) (*domain.HRDashboard, error) {
	if _, err := s.AuthorizeUser(ctx, userID, domain.RoleHR, domain.RoleAdmin); err != nil {
		return nil, err
	}

	page, err := s.claimRepo.ListClaims(ctx, domain.ClaimFilter{Status: statusFilter, Limit: dashboardClaimLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}

	approved, err := s.claimRepo.FindClaimsByStatus(ctx, domain.ClaimStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved claims: %w", err)
	}
	total := decimal.Zero
	for _, c := range approved {
		total = total.Add(domain.ComputeTotal(c.HoursWorked, c.HourlyRate))
	}

	lecturers, err := s.userRepo.FindUsersByRole(ctx, domain.RoleLecturer)
	if err != nil {
		return nil, fmt.Errorf("failed to list lecturers: %w", err)
	}

	claims := page.Claims
	if claims == nil {
		claims = []domain.Claim{}
	}
	if lecturers == nil {
		lecturers = []domain.User{}
	}
	return &domain.HRDashboard{
		StatusFilter:        statusFilter,
		Claims:              claims,
		TotalApprovedClaims: len(approved),
		TotalPayment:        total,
		Lecturers:           lecturers,
	}, nil
}

// ExportPaymentSummaryCSV writes one row per lecturer followed by a TOTAL row.
func (s *reportingService) ExportPaymentSummaryCSV(ctx context.Context, status domain.ClaimStatus, userID string, w io.Writer) error {
	report, err := s.PaymentSummary(ctx, status, userID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	rows := [][]string{{"lecturer_id", "lecturer_name", "claim_count", "total_hours", "total_amount"}}
	for _, l := range report.Lecturers {
		rows = append(rows, []string{
			l.LecturerID,
			l.LecturerName,
			strconv.Itoa(l.ClaimCount),
			l.TotalHours.StringFixed(2),
			l.TotalAmount.StringFixed(2),
		})
	}
	rows = append(rows, []string{"TOTAL", "", strconv.Itoa(report.ClaimCount), report.TotalHours.StringFixed(2), report.TotalAmount.StringFixed(2)})
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func distinctLecturerIDs(claims []domain.Claim) []string {
	seen := make(map[string]struct{}, len(claims))
	ids := make([]string, 0, len(claims))
	for _, c := range claims {
		if _, ok := seen[c.LecturerID]; ok {
			continue
		}
		seen[c.LecturerID] = struct{}{}
		ids = append(ids, c.LecturerID)
	}
	return ids
}
