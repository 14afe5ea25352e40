package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves an account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by ID.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// FindAccountByNumber retrieves an account by its account number within a foundation.
	FindAccountByNumber(ctx context.Context, foundationID string, accountNumber string) (*domain.Account, error)

	// ListAccountsByFoundation retrieves a paginated list of accounts for a foundation.
	ListAccountsByFoundation(ctx context.Context, foundationID string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// SaveAccountsIgnoreDuplicates inserts the given accounts, silently skipping
	// any whose account number already exists in the foundation. It returns the
	// number of rows actually inserted, which makes chart seeding idempotent.
	SaveAccountsIgnoreDuplicates(ctx context.Context, accounts []domain.Account) (int, error)

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountPostingSupport defines the account operations needed while posting
// journal entries. Both run against an explicit transaction.
type AccountPostingSupport interface {
	// FindAccountsByIDsForUpdate retrieves accounts and locks the rows for the
	// duration of the transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies signed balance deltas to the given accounts.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryWithTx combines all account repository capabilities with
// transaction management.
type AccountRepositoryWithTx interface {
	AccountReader
	AccountWriter
	AccountPostingSupport
	TransactionManager
}
