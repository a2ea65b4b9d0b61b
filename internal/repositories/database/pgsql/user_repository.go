package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portsrepo "github.com/SscSPs/lecturer_claims_app/internal/core/ports/repositories"
	"github.com/SscSPs/lecturer_claims_app/internal/models"
	"github.com/SscSPs/lecturer_claims_app/internal/utils/mapping"
)

// userSelect returns users with their roles aggregated into one array column.
const userSelect = `
	SELECT u.user_id, u.email, u.name, u.phone, u.password_hash, u.auth_provider, u.provider_user_id,
	       u.created_at, u.created_by, u.last_updated_at, u.last_updated_by,
	       COALESCE(array_agg(ur.role_name ORDER BY ur.role_name) FILTER (WHERE ur.role_name IS NOT NULL), '{}') AS roles
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.user_id`

const userGroupBy = ` GROUP BY u.user_id`

// PgxUserRepository implements portsrepo.UserRepositoryFacade using pgx
type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func scanUser(row pgx.Row) (domain.User, error) {
	var m models.User
	var roles []string
	err := row.Scan(
		&m.UserID,
		&m.Email,
		&m.Name,
		&m.Phone,
		&m.PasswordHash,
		&m.AuthProvider,
		&m.ProviderUserID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&roles,
	)
	if err != nil {
		return domain.User{}, err
	}
	return mapping.ToDomainUser(m, roles), nil
}

func (r *PgxUserRepository) findOne(ctx context.Context, where string, arg any, what string) (*domain.User, error) {
	user, err := scanUser(r.Pool.QueryRow(ctx, userSelect+" WHERE "+where+userGroupBy+";", arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, what)
		}
		return nil, fmt.Errorf("failed to find user %s: %w", what, err)
	}
	return &user, nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, "u.user_id = $1", userID, userID)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "lower(u.email) = lower($1)", email, email)
}

func (r *PgxUserRepository) FindUserByProviderDetails(ctx context.Context, authProvider, providerUserID string) (*domain.User, error) {
	query := userSelect + " WHERE u.auth_provider = $1 AND u.provider_user_id = $2" + userGroupBy + ";"
	user, err := scanUser(r.Pool.QueryRow(ctx, query, authProvider, providerUserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s user %s", apperrors.ErrNotFound, authProvider, providerUserID)
		}
		return nil, fmt.Errorf("failed to find user by provider details: %w", err)
	}
	return &user, nil
}

func (r *PgxUserRepository) FindUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	query := userSelect + `
		WHERE u.user_id IN (SELECT user_id FROM user_roles WHERE role_name = $1)` + userGroupBy + `
		ORDER BY u.name, u.user_id;`
	rows, err := r.Pool.Query(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to query users with role %s: %w", role, err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func (r *PgxUserRepository) FindUserNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}
	rows, err := r.Pool.Query(ctx, `SELECT user_id, name FROM users WHERE user_id = ANY($1);`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query user names: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan user name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

// SaveUser inserts the user and its role memberships in one transaction.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelUser(user)
	query := `
		INSERT INTO users (user_id, email, name, phone, password_hash, auth_provider, provider_user_id,
		                   created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`
	_, err = tx.Exec(ctx, query,
		m.UserID, m.Email, m.Name, m.Phone, m.PasswordHash, m.AuthProvider, m.ProviderUserID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if uniqueViolation(err, "") {
			return fmt.Errorf("%w: user with email %s already exists", apperrors.ErrDuplicate, m.Email)
		}
		return fmt.Errorf("failed to save user %s: %w", m.UserID, err)
	}

	for _, role := range user.Roles {
		if err := assignRole(ctx, tx, m.UserID, role); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}

func (r *PgxUserRepository) UpdateUserContact(ctx context.Context, userID, email, phone, updatedBy string) error {
	query := `
		UPDATE users SET email = $2, phone = $3, last_updated_at = $4, last_updated_by = $5
		WHERE user_id = $1;`
	cmdTag, err := r.Pool.Exec(ctx, query, userID, email, phone, time.Now().UTC(), updatedBy)
	if err != nil {
		if uniqueViolation(err, "") {
			return fmt.Errorf("%w: email %s is already registered", apperrors.ErrDuplicate, email)
		}
		return fmt.Errorf("failed to update contact of user %s: %w", userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	return nil
}

func (r *PgxUserRepository) EnsureRole(ctx context.Context, role domain.Role) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO roles (role_name) VALUES ($1) ON CONFLICT (role_name) DO NOTHING;`, string(role))
	if err != nil {
		return fmt.Errorf("failed to ensure role %s: %w", role, err)
	}
	return nil
}

func (r *PgxUserRepository) AssignRole(ctx context.Context, userID string, role domain.Role) error {
	return assignRole(ctx, r.Pool, userID, role)
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func assignRole(ctx context.Context, db execer, userID string, role domain.Role) error {
	_, err := db.Exec(ctx, `INSERT INTO user_roles (user_id, role_name) VALUES ($1, $2) ON CONFLICT DO NOTHING;`, userID, string(role))
	if err != nil {
		return fmt.Errorf("failed to assign role %s to user %s: %w", role, userID, err)
	}
	return nil
}

func (r *PgxUserRepository) FindRolesForUser(ctx context.Context, userID string) ([]domain.Role, error) {
	rows, err := r.Pool.Query(ctx, `SELECT role_name FROM user_roles WHERE user_id = $1 ORDER BY role_name;`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles of user %s: %w", userID, err)
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, domain.Role(name))
	}
	return roles, rows.Err()
}
