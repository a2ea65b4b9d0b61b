package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portsrepo "github.com/SscSPs/lecturer_claims_app/internal/core/ports/repositories"
	"github.com/SscSPs/lecturer_claims_app/internal/models"
	"github.com/SscSPs/lecturer_claims_app/internal/utils/mapping"
	"github.com/SscSPs/lecturer_claims_app/internal/utils/pagination"
)

// claimsLecturerDayKey enforces one claim per lecturer per submission day.
const claimsLecturerDayKey = "claims_lecturer_day_key"

const claimColumns = `
	claim_id, lecturer_id, hours_worked, hourly_rate, total_amount, notes,
	submitted_at, submission_day, status, requires_review,
	reviewed_at, reviewer_id, rejection_reason, last_updated_at`

const documentColumns = `
	document_id, claim_id, original_file_name, stored_reference, content_type, size_bytes, uploaded_at`

// PgxClaimRepository implements portsrepo.ClaimRepositoryFacade using pgx
type PgxClaimRepository struct {
	BaseRepository
}

func newPgxClaimRepository(pool *pgxpool.Pool) portsrepo.ClaimRepositoryFacade {
	return &PgxClaimRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ClaimRepositoryFacade = (*PgxClaimRepository)(nil)

func scanClaim(row pgx.Row) (models.Claim, error) {
	var m models.Claim
	err := row.Scan(
		&m.ClaimID,
		&m.LecturerID,
		&m.HoursWorked,
		&m.HourlyRate,
		&m.TotalAmount,
		&m.Notes,
		&m.SubmittedAt,
		&m.SubmissionDay,
		&m.Status,
		&m.RequiresReview,
		&m.ReviewedAt,
		&m.ReviewerID,
		&m.RejectionReason,
		&m.LastUpdatedAt,
	)
	return m, err
}

func scanDocument(row pgx.Row) (models.SupportingDocument, error) {
	var m models.SupportingDocument
	err := row.Scan(
		&m.DocumentID,
		&m.ClaimID,
		&m.OriginalFileName,
		&m.StoredReference,
		&m.ContentType,
		&m.SizeBytes,
		&m.UploadedAt,
	)
	return m, err
}

func (r *PgxClaimRepository) CreateClaim(ctx context.Context, claim domain.Claim, docs []domain.SupportingDocument) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // no-op after commit

	m := mapping.ToModelClaim(claim)
	query := `INSERT INTO claims (` + claimColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`
	_, err = tx.Exec(ctx, query,
		m.ClaimID, m.LecturerID, m.HoursWorked, m.HourlyRate, m.TotalAmount, m.Notes,
		m.SubmittedAt, m.SubmissionDay, m.Status, m.RequiresReview,
		m.ReviewedAt, m.ReviewerID, m.RejectionReason, m.LastUpdatedAt,
	)
	if err != nil {
		if uniqueViolation(err, claimsLecturerDayKey) {
			return fmt.Errorf("%w: lecturer %s already has a claim for %s",
				apperrors.ErrDuplicateSubmission, m.LecturerID, m.SubmissionDay.Format(time.DateOnly))
		}
		return apperrors.NewAppError(500, "failed to insert claim "+m.ClaimID, err)
	}

	if len(docs) > 0 {
		batch := &pgx.Batch{}
		docQuery := `INSERT INTO supporting_documents (` + documentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7);`
		for _, d := range docs {
			md := mapping.ToModelDocument(d)
			batch.Queue(docQuery, md.DocumentID, md.ClaimID, md.OriginalFileName, md.StoredReference, md.ContentType, md.SizeBytes, md.UploadedAt)
		}
		br := tx.SendBatch(ctx, batch)
		for range docs {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return apperrors.NewAppError(500, "failed to insert supporting document for claim "+m.ClaimID, err)
			}
		}
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to close document batch", err)
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxClaimRepository) FindClaimByID(ctx context.Context, claimID string) (*domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE claim_id = $1;`
	m, err := scanClaim(r.Pool.QueryRow(ctx, query, claimID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: claim %s", apperrors.ErrNotFound, claimID)
		}
		return nil, fmt.Errorf("failed to find claim %s: %w", claimID, err)
	}

	claim := mapping.ToDomainClaim(m)
	docs, err := r.FindDocumentsByClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	claim.Documents = docs
	return &claim, nil
}

func (r *PgxClaimRepository) queryClaims(ctx context.Context, query string, args ...any) ([]domain.Claim, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer rows.Close()

	claims := []domain.Claim{}
	for rows.Next() {
		m, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim row: %w", err)
		}
		claims = append(claims, mapping.ToDomainClaim(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claim rows: %w", err)
	}
	return claims, nil
}

// attachDocuments loads documents for all claims with a single query.
func (r *PgxClaimRepository) attachDocuments(ctx context.Context, claims []domain.Claim) error {
	if len(claims) == 0 {
		return nil
	}
	ids := make([]string, len(claims))
	index := make(map[string]int, len(claims))
	for i, c := range claims {
		ids[i] = c.ClaimID
		index[c.ClaimID] = i
	}

	query := `SELECT ` + documentColumns + ` FROM supporting_documents WHERE claim_id = ANY($1) ORDER BY uploaded_at, document_id;`
	rows, err := r.Pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query supporting documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanDocument(rows)
		if err != nil {
			return fmt.Errorf("failed to scan supporting document: %w", err)
		}
		i := index[m.ClaimID]
		claims[i].Documents = append(claims[i].Documents, mapping.ToDomainDocument(m))
	}
	return rows.Err()
}

func (r *PgxClaimRepository) FindClaimsByLecturer(ctx context.Context, lecturerID string) ([]domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE lecturer_id = $1 ORDER BY submitted_at DESC, claim_id DESC;`
	claims, err := r.queryClaims(ctx, query, lecturerID)
	if err != nil {
		return nil, err
	}
	if err := r.attachDocuments(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// FindClaimsByStatus skips documents; reporting only needs the amounts.
func (r *PgxClaimRepository) FindClaimsByStatus(ctx context.Context, status domain.ClaimStatus) ([]domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE status = $1 ORDER BY submitted_at DESC, claim_id DESC;`
	return r.queryClaims(ctx, query, string(status))
}

func (r *PgxClaimRepository) ListClaims(ctx context.Context, filter domain.ClaimFilter) (*domain.ClaimPage, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	var where []string
	var args []any
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.LecturerID != "" {
		args = append(args, filter.LecturerID)
		where = append(where, "lecturer_id = $"+strconv.Itoa(len(args)))
	}

	direction, cmp := "DESC", "<"
	if filter.OldestFirst {
		direction, cmp = "ASC", ">"
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		lastSubmittedAt, lastClaimID, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		args = append(args, lastSubmittedAt, lastClaimID)
		where = append(where, fmt.Sprintf("(submitted_at, claim_id) %s ($%d, $%d)", cmp, len(args)-1, len(args)))
	}

	query := `SELECT ` + claimColumns + ` FROM claims`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, fetchLimit)
	query += fmt.Sprintf(" ORDER BY submitted_at %s, claim_id %s LIMIT $%d;", direction, direction, len(args))

	claims, err := r.queryClaims(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	page := &domain.ClaimPage{}
	if len(claims) > limit {
		claims = claims[:limit]
		last := claims[len(claims)-1]
		token := pagination.EncodeToken(last.SubmittedAt, last.ClaimID)
		page.NextToken = &token
	}
	if err := r.attachDocuments(ctx, claims); err != nil {
		return nil, err
	}
	page.Claims = claims
	return page, nil
}

func (r *PgxClaimRepository) ExistsForLecturerOnDay(ctx context.Context, lecturerID string, day time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM claims WHERE lecturer_id = $1 AND submission_day = $2);`
	if err := r.Pool.QueryRow(ctx, query, lecturerID, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check daily submission for %s: %w", lecturerID, err)
	}
	return exists, nil
}

// notPendingError explains why a conditional update on a pending claim matched no row.
func (r *PgxClaimRepository) notPendingError(ctx context.Context, claimID string) error {
	var status string
	err := r.Pool.QueryRow(ctx, `SELECT status FROM claims WHERE claim_id = $1;`, claimID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: claim %s", apperrors.ErrNotFound, claimID)
	}
	if err != nil {
		return fmt.Errorf("failed to re-read claim %s: %w", claimID, err)
	}
	return fmt.Errorf("%w: claim %s is %s", apperrors.ErrInvalidStateTransition, claimID, status)
}

func (r *PgxClaimRepository) UpdateClaimReview(ctx context.Context, claim domain.Claim) error {
	m := mapping.ToModelClaim(claim)
	query := `
		UPDATE claims
		SET status = $2, reviewed_at = $3, reviewer_id = $4, rejection_reason = $5, last_updated_at = $6
		WHERE claim_id = $1 AND status = 'PENDING';`
	cmdTag, err := r.Pool.Exec(ctx, query, m.ClaimID, m.Status, m.ReviewedAt, m.ReviewerID, m.RejectionReason, m.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update review of claim %s: %w", m.ClaimID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.notPendingError(ctx, m.ClaimID)
	}
	return nil
}

func (r *PgxClaimRepository) UpdatePendingClaim(ctx context.Context, claim domain.Claim) error {
	m := mapping.ToModelClaim(claim)
	query := `
		UPDATE claims
		SET hours_worked = $2, hourly_rate = $3, total_amount = $4, notes = $5, last_updated_at = $6
		WHERE claim_id = $1 AND status = 'PENDING';`
	cmdTag, err := r.Pool.Exec(ctx, query, m.ClaimID, m.HoursWorked, m.HourlyRate, m.TotalAmount, m.Notes, m.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update claim %s: %w", m.ClaimID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.notPendingError(ctx, m.ClaimID)
	}
	return nil
}

func (r *PgxClaimRepository) DeleteClaim(ctx context.Context, claimID string) ([]domain.SupportingDocument, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM claims WHERE claim_id = $1 FOR UPDATE;`, claimID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: claim %s", apperrors.ErrNotFound, claimID)
		}
		return nil, apperrors.NewAppError(500, "failed to lock claim "+claimID, err)
	}
	if domain.ClaimStatus(status) != domain.ClaimStatusPending {
		return nil, fmt.Errorf("%w: claim %s is %s", apperrors.ErrInvalidStateTransition, claimID, status)
	}

	rows, err := tx.Query(ctx, `DELETE FROM supporting_documents WHERE claim_id = $1 RETURNING `+documentColumns+`;`, claimID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete documents of claim "+claimID, err)
	}
	docs := []domain.SupportingDocument{}
	for rows.Next() {
		m, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, apperrors.NewAppError(500, "failed to scan deleted document", err)
		}
		docs = append(docs, mapping.ToDomainDocument(m))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete documents of claim "+claimID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM claims WHERE claim_id = $1;`, claimID); err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete claim "+claimID, err)
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *PgxClaimRepository) FindDocumentsByClaim(ctx context.Context, claimID string) ([]domain.SupportingDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM supporting_documents WHERE claim_id = $1 ORDER BY uploaded_at, document_id;`
	rows, err := r.Pool.Query(ctx, query, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents for claim %s: %w", claimID, err)
	}
	defer rows.Close()

	docs := []domain.SupportingDocument{}
	for rows.Next() {
		m, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supporting document: %w", err)
		}
		docs = append(docs, mapping.ToDomainDocument(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}
	return docs, nil
}

func (r *PgxClaimRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.SupportingDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM supporting_documents WHERE document_id = $1;`
	m, err := scanDocument(r.Pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %s", apperrors.ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}
	doc := mapping.ToDomainDocument(m)
	return &doc, nil
}
