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
	"github.com/SscSPs/lecturer_claims_app/internal/utils"
)

// provisioningSystemActor is recorded as creator of seeded users.
const provisioningSystemActor = "system:provisioning"

type provisioningService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
	now      func() time.Time
}

// NewProvisioningService creates the startup role and user provisioner. identity may be nil.
func NewProvisioningService(userRepo portsrepo.UserRepositoryFacade, identity portssvc.IdentitySvc) portssvc.ProvisioningSvc {
	return &provisioningService{
		BaseService: BaseService{Identity: identity},
		userRepo:    userRepo,
		now:         time.Now,
	}
}

var _ portssvc.ProvisioningSvc = (*provisioningService)(nil)

func (s *provisioningService) EnsureRole(ctx context.Context, role domain.Role) error {
	if err := s.userRepo.EnsureRole(ctx, role); err != nil {
		return fmt.Errorf("failed to ensure role %s: %w", role, err)
	}
	return nil
}

// EnsureUser creates the user if absent, otherwise adds any roles it is missing.
func (s *provisioningService) EnsureUser(ctx context.Context, spec domain.UserSpec) (*domain.User, error) {
	email := normalizeEmail(spec.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: provisioned user needs an email", apperrors.ErrValidation)
	}

	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		added := false
		for _, role := range spec.Roles {
			if existing.Principal().HasRole(role) {
				continue
			}
			if err := s.userRepo.AssignRole(ctx, existing.UserID, role); err != nil {
				return nil, fmt.Errorf("failed to assign role %s to %s: %w", role, email, err)
			}
			existing.Roles = append(existing.Roles, role)
			added = true
		}
		if added {
			if s.Identity != nil {
				s.Identity.Invalidate(existing.UserID)
			}
			s.LogInfo(ctx, "Provisioned roles for existing user", slog.String("email", email))
		}
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up %s: %w", email, err)
	}

	var hash string
	if spec.Password != "" {
		if hash, err = utils.HashPassword(spec.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", email, err)
		}
	}
	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(spec.Name),
		Phone:        strings.TrimSpace(spec.Phone),
		PasswordHash: hash,
		AuthProvider: domain.AuthProviderLocal,
		Roles:        append([]domain.Role(nil), spec.Roles...),
		AuditFields:  domain.NewAuditFields(provisioningSystemActor, s.now().UTC()),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", email, err)
	}
	s.LogInfo(ctx, "Provisioned user", slog.String("email", email), slog.Any("roles", user.Roles))
	return &user, nil
}

// Provision is idempotent; running it twice leaves the same roles and users.
func (s *provisioningService) Provision(ctx context.Context, users []domain.UserSpec) error {
	for _, role := range domain.AllRoles {
		if err := s.EnsureRole(ctx, role); err != nil {
			return err
		}
	}
	for _, spec := range users {
		if _, err := s.EnsureUser(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}
