package services

import (
	"fmt"

	portsrepo "github.com/SscSPs/lecturer_claims_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, store portsrepo.DocumentStore) (*portssvc.ServiceContainer, error) {
	// Identity first; every other service authorizes through it.
	identity, err := NewIdentityService(repos.UserRepo, cfg.PrincipalCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity service: %w", err)
	}

	return &portssvc.ServiceContainer{
		Identity: identity,
		Claim: NewClaimService(repos.ClaimRepo, store, identity,
			WithClaimPolicy(cfg.ClaimPolicy()),
			WithSubmissionLocation(cfg.Location()),
		),
		Reporting:    NewReportingService(repos.ClaimRepo, repos.UserRepo, identity),
		User:         NewUserService(repos.UserRepo, identity),
		Provisioning: NewProvisioningService(repos.UserRepo, identity),
		Token:        NewTokenService(cfg),
		GoogleOAuth:  NewGoogleOAuthService(cfg),
	}, nil
}
