package services

import (
	"context"

	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	"github.com/SscSPs/lecturer_claims_app/internal/dto"
)

// IdentitySvc resolves the authenticated principal and its roles
type IdentitySvc interface {
	// ResolvePrincipal loads the user behind an authenticated id.
	// Returns apperrors.ErrUnauthorizedPrincipal if the user no longer exists.
	ResolvePrincipal(ctx context.Context, userID string) (*domain.Principal, error)

	// HasRole reports role membership for the given principal.
	HasRole(principal domain.Principal, role domain.Role) bool

	// Landing returns where the UI should send the user after login.
	Landing(principal domain.Principal) string

	// Invalidate drops any cached principal for userID.
	Invalidate(userID string)
}

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListLecturers lists lecturers for HR and admins.
	ListLecturers(ctx context.Context, requestingUserID string) ([]domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// Register creates a local account holding the Lecturer role.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error)

	// UpdateLecturerContact lets HR correct a lecturer's email and phone.
	UpdateLecturerContact(ctx context.Context, lecturerID string, req dto.UpdateLecturerContactRequest, requestingUserID string) (*domain.User, error)
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser authenticates a user with email and password.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)

	// SignInExternal finds or creates the user behind a verified external identity.
	SignInExternal(ctx context.Context, identity domain.ExternalIdentity) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserAuthSvc
}

// ProvisioningSvc creates roles and users idempotently
type ProvisioningSvc interface {
	EnsureRole(ctx context.Context, role domain.Role) error
	EnsureUser(ctx context.Context, spec domain.UserSpec) (*domain.User, error)

	// Provision ensures every role in domain.AllRoles and every user in users.
	Provision(ctx context.Context, users []domain.UserSpec) error
}
