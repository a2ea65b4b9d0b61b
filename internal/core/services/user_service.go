package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portsrepo "github.com/SscSPs/lecturer_claims_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/dto"
	"github.com/SscSPs/lecturer_claims_app/internal/utils"
)

// userService handles accounts, credentials and lecturer contact details.
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	now      func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, identity portssvc.IdentitySvc) portssvc.UserSvcFacade {
	return &userService{
		BaseService: BaseService{Identity: identity},
		userRepo:    userRepo,
		now:         time.Now,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

// Register creates a local account. New accounts are lecturers.
func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.userRepo.FindUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email %s is already registered", apperrors.ErrDuplicate, email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		AuthProvider: domain.AuthProviderLocal,
		Roles:        []domain.Role{domain.RoleLecturer},
		AuditFields:  domain.NewAuditFields(userID, now),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID))
	return &user, nil
}

// AuthenticateUser verifies a local password.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.PasswordHash == "" || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

// SignInExternal returns the user linked to a provider identity, creating a lecturer on first sign-in.
func (s *userService) SignInExternal(ctx context.Context, identity domain.ExternalIdentity) (*domain.User, error) {
	user, err := s.userRepo.FindUserByProviderDetails(ctx, identity.Provider, identity.ProviderUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up provider user: %w", err)
	}

	email := normalizeEmail(identity.Email)
	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !identity.EmailVerified {
			return nil, fmt.Errorf("%w: unverified email matches an existing account", apperrors.ErrUnauthorized)
		}
		return existing, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	now := s.now().UTC()
	userID := uuid.NewString()
	providerUserID := identity.ProviderUserID
	created := domain.User{
		UserID:         userID,
		Email:          email,
		Name:           identity.Name,
		AuthProvider:   identity.Provider,
		ProviderUserID: &providerUserID,
		Roles:          []domain.Role{domain.RoleLecturer},
		AuditFields:    domain.NewAuditFields(userID, now),
	}
	if err := s.userRepo.SaveUser(ctx, created); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "User created from external identity", slog.String("user_id", userID), slog.String("provider", identity.Provider))
	return &created, nil
}

// ListLecturers is available to HR and admins.
func (s *userService) ListLecturers(ctx context.Context, requestingUserID string) ([]domain.User, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, domain.RoleHR, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.userRepo.FindUsersByRole(ctx, domain.RoleLecturer)
}

// UpdateLecturerContact lets HR correct a lecturer's email and phone.
func (s *userService) UpdateLecturerContact(ctx context.Context, lecturerID string, req dto.UpdateLecturerContactRequest, requestingUserID string) (*domain.User, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, domain.RoleHR, domain.RoleAdmin); err != nil {
		return nil, err
	}

	lecturer, err := s.userRepo.FindUserByID(ctx, lecturerID)
	if err != nil {
		return nil, err
	}
	if !lecturer.Principal().HasRole(domain.RoleLecturer) {
		return nil, fmt.Errorf("%w: user %s is not a lecturer", apperrors.ErrNotFound, lecturerID)
	}

	email := normalizeEmail(req.Email)
	if email != lecturer.Email {
		other, err := s.userRepo.FindUserByEmail(ctx, email)
		if err == nil && other.UserID != lecturerID {
			return nil, fmt.Errorf("%w: email %s is already registered", apperrors.ErrDuplicate, email)
		}
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
	}

	phone := strings.TrimSpace(req.Phone)
	if err := s.userRepo.UpdateUserContact(ctx, lecturerID, email, phone, requestingUserID); err != nil {
		return nil, err
	}
	s.Identity.Invalidate(lecturerID)

	lecturer.Email = email
	lecturer.Phone = phone
	lecturer.LastUpdatedAt = s.now().UTC()
	lecturer.LastUpdatedBy = requestingUserID
	s.LogInfo(ctx, "Lecturer contact updated", slog.String("lecturer_id", lecturerID), slog.String("updated_by", requestingUserID))
	return lecturer, nil
}
