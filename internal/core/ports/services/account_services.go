package services

import (
	"context"

	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	"github.com/stiftly/foundation_ledger_app/internal/dto"
)

// AccountReaderSvc defines read operations for account data.
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, foundationID string, accountID string, userID string) (*domain.Account, error)

	// GetAccountByNumber retrieves an account by its account number within a foundation.
	GetAccountByNumber(ctx context.Context, foundationID string, accountNumber string, userID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts keyed by ID.
	GetAccountsByIDs(ctx context.Context, foundationID string, accountIDs []string, userID string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts for a foundation.
	ListAccounts(ctx context.Context, foundationID string, userID string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data.
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, foundationID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, foundationID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, foundationID string, accountID string, userID string) error
}

// ChartBootstrapSvc defines the standard chart of accounts seeding operation.
type ChartBootstrapSvc interface {
	// BootstrapChartOfAccounts seeds the standard chart of accounts into a
	// foundation and returns the number of accounts created. Accounts that
	// already exist are left untouched, so re-running is safe.
	BootstrapChartOfAccounts(ctx context.Context, foundationID string, userID string) (int, error)
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	ChartBootstrapSvc
}
