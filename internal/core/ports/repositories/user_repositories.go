package repositories

import (
	"context"

	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user, roles included.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail matches case-insensitively.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByProviderDetails finds an externally authenticated user.
	FindUserByProviderDetails(ctx context.Context, authProvider, providerUserID string) (*domain.User, error)

	// FindUsersByRole lists holders of role ordered by name.
	FindUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error)

	// FindUserNames maps each known id to its display name.
	FindUserNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user. Returns apperrors.ErrDuplicate if the email is taken.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUserContact replaces email and phone.
	UpdateUserContact(ctx context.Context, userID, email, phone, updatedBy string) error
}

// RoleManager defines role membership operations
type RoleManager interface {
	// EnsureRole creates the role if it does not exist.
	EnsureRole(ctx context.Context, role domain.Role) error

	// AssignRole adds role to the user, doing nothing if already held.
	AssignRole(ctx context.Context, userID string, role domain.Role) error

	// FindRolesForUser lists the roles a user holds.
	FindRolesForUser(ctx context.Context, userID string) ([]domain.Role, error)
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	RoleManager
}
