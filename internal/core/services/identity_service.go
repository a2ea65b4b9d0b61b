package services

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portsrepo "github.com/SscSPs/lecturer_claims_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
)

// identityService resolves principals, caching role memberships per user.
type identityService struct {
	userRepo portsrepo.UserReader
	cache    *lru.Cache
	landing  domain.LandingTable
}

// NewIdentityService creates an identity service with an LRU principal cache of cacheSize entries.
func NewIdentityService(userRepo portsrepo.UserReader, cacheSize int) (portssvc.IdentitySvc, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create principal cache: %w", err)
	}
	return &identityService{
		userRepo: userRepo,
		cache:    cache,
		landing:  domain.DefaultLandingTable,
	}, nil
}

var _ portssvc.IdentitySvc = (*identityService)(nil)

func (s *identityService) ResolvePrincipal(ctx context.Context, userID string) (*domain.Principal, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: no authenticated user", apperrors.ErrUnauthorizedPrincipal)
	}
	if cached, ok := s.cache.Get(userID); ok {
		p := clonePrincipal(cached.(domain.Principal))
		return &p, nil
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s does not exist", apperrors.ErrUnauthorizedPrincipal, userID)
		}
		return nil, fmt.Errorf("failed to resolve principal: %w", err)
	}

	principal := user.Principal()
	s.cache.Add(userID, clonePrincipal(principal))
	return &principal, nil
}

func (s *identityService) HasRole(principal domain.Principal, role domain.Role) bool {
	return principal.HasRole(role)
}

func (s *identityService) Landing(principal domain.Principal) string {
	return s.landing.Landing(principal)
}

func (s *identityService) Invalidate(userID string) {
	s.cache.Remove(userID)
}

// clonePrincipal keeps callers from mutating the cached role slice.
func clonePrincipal(p domain.Principal) domain.Principal {
	roles := make([]domain.Role, len(p.Roles))
	copy(roles, p.Roles)
	p.Roles = roles
	return p
}
