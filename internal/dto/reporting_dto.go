package dto

import (
	"time"

	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportParams selects which claims a report covers.
type ReportParams struct {
	Status string `form:"status,default=APPROVED"`
}

// DashboardParams optionally filters the HR dashboard claim list.
type DashboardParams struct {
	Status string `form:"status"`
}

// LecturerSummaryResponse is one row of the payment summary.
type LecturerSummaryResponse struct {
	LecturerID   string          `json:"lecturerID"`
	LecturerName string          `json:"lecturerName"`
	ClaimCount   int             `json:"claimCount"`
	TotalHours   decimal.Decimal `json:"totalHours"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// PaymentReportResponse represents the payment summary report response
type PaymentReportResponse struct {
	Status      domain.ClaimStatus        `json:"status"`
	GeneratedAt time.Time                 `json:"generatedAt"`
	Lecturers   []LecturerSummaryResponse `json:"lecturers"`
	Totals      struct {
		ClaimCount int             `json:"claimCount"`
		Hours      decimal.Decimal `json:"hours"`
		Amount     decimal.Decimal `json:"amount"`
	} `json:"totals"`
}

// HRDashboardResponse is the HR landing view.
type HRDashboardResponse struct {
	StatusFilter        *domain.ClaimStatus `json:"statusFilter,omitempty"`
	Claims              []ClaimResponse     `json:"claims"`
	TotalApprovedClaims int                 `json:"totalApprovedClaims"`
	TotalPayment        decimal.Decimal     `json:"totalPayment"`
	Lecturers           []UserResponse      `json:"lecturers"`
}

// ToPaymentReportResponse converts a domain.PaymentReport.
func ToPaymentReportResponse(r *domain.PaymentReport) PaymentReportResponse {
	resp := PaymentReportResponse{
		Status:      r.Status,
		GeneratedAt: r.GeneratedAt,
		Lecturers:   make([]LecturerSummaryResponse, len(r.Lecturers)),
	}
	for i, l := range r.Lecturers {
		resp.Lecturers[i] = LecturerSummaryResponse(l)
	}
	resp.Totals.ClaimCount = r.ClaimCount
	resp.Totals.Hours = r.TotalHours
	resp.Totals.Amount = r.TotalAmount
	return resp
}

// ToHRDashboardResponse converts a domain.HRDashboard.
func ToHRDashboardResponse(d *domain.HRDashboard) HRDashboardResponse {
	return HRDashboardResponse{
		StatusFilter:        d.StatusFilter,
		Claims:              ToListClaimResponse(d.Claims),
		TotalApprovedClaims: d.TotalApprovedClaims,
		TotalPayment:        d.TotalPayment,
		Lecturers:           ToListUserResponse(d.Lecturers).Users,
	}
}
