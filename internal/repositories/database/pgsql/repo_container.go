package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/stiftly/foundation_ledger_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires up the pgx-backed repositories over a shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool, accountRepo)
	foundationRepo := newPgxFoundationRepository(dbPool)

	return &portsrepo.RepositoryProvider{
		AccountRepo:    accountRepo,
		UserRepo:       userRepo,
		EntryRepo:      entryRepo,
		FoundationRepo: foundationRepo,
	}
}
