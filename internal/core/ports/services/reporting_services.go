package services

import (
	"context"
	"io"

	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
)

// ReportingSvcFacade defines the read-only aggregation operations
type ReportingSvcFacade interface {
	// PaymentSummary groups claims of status by lecturer.
	PaymentSummary(ctx context.Context, status domain.ClaimStatus, requestingUserID string) (*domain.PaymentReport, error)

	// HRDashboard returns the HR overview, optionally filtering the claim list.
	HRDashboard(ctx context.Context, statusFilter *domain.ClaimStatus, requestingUserID string) (*domain.HRDashboard, error)

	// ExportPaymentSummaryCSV writes PaymentSummary as CSV to w.
	ExportPaymentSummaryCSV(ctx context.Context, status domain.ClaimStatus, requestingUserID string, w io.Writer) error
}
