package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownLecturerName is shown when a claim's lecturer no longer resolves to a user.
const UnknownLecturerName = "Unknown"

// LecturerSummary totals one lecturer's claims.
type LecturerSummary struct {
	LecturerID   string          `json:"lecturerID"`
	LecturerName string          `json:"lecturerName"`
	ClaimCount   int             `json:"claimCount"`
	TotalHours   decimal.Decimal `json:"totalHours"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// PaymentReport groups claims of one status by lecturer.
type PaymentReport struct {
	Status      ClaimStatus       `json:"status"`
	Lecturers   []LecturerSummary `json:"lecturers"`
	ClaimCount  int               `json:"claimCount"`
	TotalHours  decimal.Decimal   `json:"totalHours"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// SummarizeClaims folds claims into a per-lecturer report. Names are looked up in names;
// missing entries become UnknownLecturerName. Claims with a different status are ignored.
func SummarizeClaims(status ClaimStatus, claims []Claim, names map[string]string, at time.Time) PaymentReport {
	report := PaymentReport{
		Status:      status,
		Lecturers:   []LecturerSummary{},
		TotalHours:  decimal.Zero,
		TotalAmount: decimal.Zero,
		GeneratedAt: at,
	}
	byLecturer := make(map[string]*LecturerSummary)
	for _, c := range claims {
		if c.Status != status {
			continue
		}
		s, ok := byLecturer[c.LecturerID]
		if !ok {
			name := names[c.LecturerID]
			if name == "" {
				name = UnknownLecturerName
			}
			s = &LecturerSummary{LecturerID: c.LecturerID, LecturerName: name, TotalHours: decimal.Zero, TotalAmount: decimal.Zero}
			byLecturer[c.LecturerID] = s
		}
		total := ComputeTotal(c.HoursWorked, c.HourlyRate)
		s.ClaimCount++
		s.TotalHours = s.TotalHours.Add(c.HoursWorked)
		s.TotalAmount = s.TotalAmount.Add(total)
		report.ClaimCount++
		report.TotalHours = report.TotalHours.Add(c.HoursWorked)
		report.TotalAmount = report.TotalAmount.Add(total)
	}
	for _, s := range byLecturer {
		report.Lecturers = append(report.Lecturers, *s)
	}
	sort.Slice(report.Lecturers, func(i, j int) bool {
		if report.Lecturers[i].LecturerName != report.Lecturers[j].LecturerName {
			return report.Lecturers[i].LecturerName < report.Lecturers[j].LecturerName
		}
		return report.Lecturers[i].LecturerID < report.Lecturers[j].LecturerID
	})
	return report
}

// HRDashboard is the HR landing view.
type HRDashboard struct {
	StatusFilter        *ClaimStatus    `json:"statusFilter,omitempty"`
	Claims              []Claim         `json:"claims"`
	TotalApprovedClaims int             `json:"totalApprovedClaims"`
	TotalPayment        decimal.Decimal `json:"totalPayment"`
	Lecturers           []User          `json:"lecturers"`
}
