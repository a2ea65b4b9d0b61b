package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/SscSPs/lecturer_claims_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ClaimRepo: newPgxClaimRepository(dbPool),
		UserRepo:  newPgxUserRepository(dbPool),
	}
}
