package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stiftly/foundation_ledger_app/internal/apperrors"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	portsrepo "github.com/stiftly/foundation_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/stiftly/foundation_ledger_app/internal/core/ports/services"
	"github.com/stiftly/foundation_ledger_app/internal/dto"
)

// defaultCurrencyCode is used when a foundation has no default currency set.
const defaultCurrencyCode = "SEK"

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo    portsrepo.AccountRepositoryWithTx
	foundationRepo portsrepo.FoundationReader
}

// NewAccountService creates a new account service with the provided dependencies
func NewAccountService(accountRepo portsrepo.AccountRepositoryWithTx, foundationRepo portsrepo.FoundationReader, authorizer portssvc.FoundationAuthorizerSvc) *accountService {
	return &accountService{
		BaseService:    BaseService{FoundationAuthorizer: authorizer},
		accountRepo:    accountRepo,
		foundationRepo: foundationRepo,
	}
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// GetAccountByID retrieves a single account, scoped to the foundation.
func (s *accountService) GetAccountByID(ctx context.Context, foundationID string, accountID string, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID",
				slog.String("account_id", accountID))
		}
		return nil, err
	}
	if account.FoundationID != foundationID {
		return nil, apperrors.NewNotFoundError("account not found in this foundation")
	}
	return account, nil
}

// GetAccountByNumber retrieves an account by its account number within a foundation.
func (s *accountService) GetAccountByNumber(ctx context.Context, foundationID string, accountNumber string, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByNumber(ctx, foundationID, accountNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by number",
				slog.String("foundation_id", foundationID),
				slog.String("account_number", accountNumber))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts keyed by ID, all of which must
// belong to the given foundation.
func (s *accountService) GetAccountsByIDs(ctx context.Context, foundationID string, accountIDs []string, userID string) (map[string]domain.Account, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to find accounts by IDs",
			slog.Int("count", len(accountIDs)))
		return nil, err
	}
	for id, account := range accounts {
		if account.FoundationID != foundationID {
			s.LogDebug(ctx, "Account belongs to another foundation",
				slog.String("account_id", id))
			return nil, apperrors.NewNotFoundError("account " + id + " not found in this foundation")
		}
	}
	return accounts, nil
}

// ListAccounts retrieves a paginated list of active accounts for a foundation.
func (s *accountService) ListAccounts(ctx context.Context, foundationID string, userID string, limit int, offset int) ([]domain.Account, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	accounts, err := s.accountRepo.ListAccountsByFoundation(ctx, foundationID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts",
			slog.String("foundation_id", foundationID))
		return nil, err
	}
	return accounts, nil
}

// CreateAccount persists a new account in the foundation's chart.
func (s *accountService) CreateAccount(ctx context.Context, foundationID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	now := time.Now()
	account := domain.Account{
		AccountID:     uuid.NewString(),
		FoundationID:  foundationID,
		AccountNumber: req.AccountNumber,
		Name:          req.Name,
		AccountType:   req.AccountType,
		CurrencyCode:  req.CurrencyCode,
		Description:   req.Description,
		IsActive:      true,
		Balance:       decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account",
			slog.String("foundation_id", foundationID),
			slog.String("account_number", req.AccountNumber))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("account_number", account.AccountNumber))
	return &account, nil
}

// UpdateAccount updates an account's mutable details. The account number,
// type, and currency are immutable once created.
func (s *accountService) UpdateAccount(ctx context.Context, foundationID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.FoundationID != foundationID {
		return nil, apperrors.NewNotFoundError("account not found in this foundation")
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	account.LastUpdatedAt = time.Now()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account",
			slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

// DeactivateAccount marks an account as inactive. Deactivated accounts keep
// their balance and history but reject new journal entry lines.
func (s *accountService) DeactivateAccount(ctx context.Context, foundationID string, accountID string, userID string) error {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleAdmin); err != nil {
		return err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.FoundationID != foundationID {
		return apperrors.NewNotFoundError("account not found in this foundation")
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account",
			slog.String("account_id", accountID))
		return err
	}

	s.LogInfo(ctx, "Account deactivated",
		slog.String("account_id", accountID))
	return nil
}

// BootstrapChartOfAccounts seeds the standard chart of accounts into a
// foundation. Accounts whose number already exists in the foundation are left
// untouched, so running the bootstrap again is harmless.
func (s *accountService) BootstrapChartOfAccounts(ctx context.Context, foundationID string, userID string) (int, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleAdmin); err != nil {
		return 0, err
	}

	foundation, err := s.foundationRepo.FindFoundationByID(ctx, foundationID)
	if err != nil {
		return 0, err
	}

	currencyCode := defaultCurrencyCode
	if foundation.DefaultCurrencyCode != nil && *foundation.DefaultCurrencyCode != "" {
		currencyCode = *foundation.DefaultCurrencyCode
	}

	now := time.Now()
	accounts := make([]domain.Account, 0, len(standardChart))
	for _, entry := range standardChart {
		accounts = append(accounts, domain.Account{
			AccountID:     uuid.NewString(),
			FoundationID:  foundationID,
			AccountNumber: entry.Number,
			Name:          entry.Name,
			AccountType:   entry.Type,
			CurrencyCode:  currencyCode,
			IsActive:      true,
			Balance:       decimal.Zero,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		})
	}

	created, err := s.accountRepo.SaveAccountsIgnoreDuplicates(ctx, accounts)
	if err != nil {
		s.LogError(ctx, err, "Failed to seed standard chart of accounts",
			slog.String("foundation_id", foundationID))
		return 0, err
	}

	s.LogInfo(ctx, "Standard chart of accounts bootstrap finished",
		slog.String("foundation_id", foundationID),
		slog.Int("chart_version", StandardChartVersion),
		slog.Int("accounts_created", created),
		slog.Int("accounts_skipped", len(accounts)-created))
	return created, nil
}
