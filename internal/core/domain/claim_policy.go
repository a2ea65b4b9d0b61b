package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ClaimPolicy holds the tunable bounds used when a claim is submitted or edited.
// Range bounds are inclusive.
type ClaimPolicy struct {
	HoursMin decimal.Decimal
	HoursMax decimal.Decimal
	RateMin  decimal.Decimal
	RateMax  decimal.Decimal

	// Claims inside both review windows, with at least one document, skip human review.
	ReviewHoursMin decimal.Decimal
	ReviewHoursMax decimal.Decimal
	ReviewRateMin  decimal.Decimal
	ReviewRateMax  decimal.Decimal

	NotesMaxLength    int
	MaxFileBytes      int64
	AllowedExtensions []string
}

// DefaultAllowedExtensions is the canonical upload allow-list.
var DefaultAllowedExtensions = []string{".pdf", ".docx", ".xlsx", ".png", ".jpg", ".jpeg"}

// DefaultClaimPolicy returns the production defaults.
func DefaultClaimPolicy() ClaimPolicy {
	return ClaimPolicy{
		HoursMin:          decimal.NewFromInt(1),
		HoursMax:          decimal.NewFromInt(300),
		RateMin:           decimal.NewFromInt(50),
		RateMax:           decimal.NewFromInt(2000),
		ReviewHoursMin:    decimal.NewFromInt(5),
		ReviewHoursMax:    decimal.NewFromInt(160),
		ReviewRateMin:     decimal.NewFromInt(100),
		ReviewRateMax:     decimal.NewFromInt(500),
		NotesMaxLength:    500,
		MaxFileBytes:      5 * 1024 * 1024,
		AllowedExtensions: DefaultAllowedExtensions,
	}
}

func within(v, lo, hi decimal.Decimal) bool {
	return v.GreaterThanOrEqual(lo) && v.LessThanOrEqual(hi)
}

// Validate checks the caller-supplied claim fields.
func (p ClaimPolicy) Validate(hours, rate decimal.Decimal, notes string) error {
	if !within(hours, p.HoursMin, p.HoursMax) {
		return fmt.Errorf("%w: hoursWorked must be between %s and %s", apperrors.ErrValidation, p.HoursMin, p.HoursMax)
	}
	if !hours.Equal(hours.Round(2)) {
		return fmt.Errorf("%w: hoursWorked supports at most 2 decimal places", apperrors.ErrValidation)
	}
	if !within(rate, p.RateMin, p.RateMax) {
		return fmt.Errorf("%w: hourlyRate must be between %s and %s", apperrors.ErrValidation, p.RateMin, p.RateMax)
	}
	if !rate.Equal(rate.Round(2)) {
		return fmt.Errorf("%w: hourlyRate supports at most 2 decimal places", apperrors.ErrValidation)
	}
	if p.NotesMaxLength > 0 && utf8.RuneCountInString(notes) > p.NotesMaxLength {
		return fmt.Errorf("%w: notes must be at most %d characters", apperrors.ErrValidation, p.NotesMaxLength)
	}
	return nil
}

// RequiresReview decides whether a submission must wait for a reviewer.
func (p ClaimPolicy) RequiresReview(hours, rate decimal.Decimal, fileCount int) bool {
	return !within(rate, p.ReviewRateMin, p.ReviewRateMax) ||
		!within(hours, p.ReviewHoursMin, p.ReviewHoursMax) ||
		fileCount == 0
}

// InitialStatus maps the review decision to the status a new claim starts in.
func (p ClaimPolicy) InitialStatus(requiresReview bool) ClaimStatus {
	if requiresReview {
		return ClaimStatusPending
	}
	return ClaimStatusApproved
}

// IsAllowedExtension matches the file extension case-insensitively.
func (p ClaimPolicy) IsAllowedExtension(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		return false
	}
	for _, allowed := range p.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// ValidateUpload checks a single file before any bytes are stored.
func (p ClaimPolicy) ValidateUpload(fileName string, size int64) error {
	if strings.TrimSpace(filepath.Base(fileName)) == "" {
		return fmt.Errorf("%w: file name is required", apperrors.ErrFileRejected)
	}
	if !p.IsAllowedExtension(fileName) {
		return fmt.Errorf("%w: %q has a disallowed extension (allowed: %s)", apperrors.ErrFileRejected, fileName, strings.Join(p.AllowedExtensions, ", "))
	}
	if size <= 0 {
		return fmt.Errorf("%w: %q is empty", apperrors.ErrFileRejected, fileName)
	}
	if p.MaxFileBytes > 0 && size > p.MaxFileBytes {
		return fmt.Errorf("%w: %q exceeds the %d byte limit", apperrors.ErrFileRejected, fileName, p.MaxFileBytes)
	}
	return nil
}

// SubmissionDay truncates t to midnight of its calendar date in loc.
func SubmissionDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
