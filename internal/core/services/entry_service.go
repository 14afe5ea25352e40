package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stiftly/foundation_ledger_app/internal/apperrors"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	portsrepo "github.com/stiftly/foundation_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/stiftly/foundation_ledger_app/internal/core/ports/services"
	"github.com/stiftly/foundation_ledger_app/internal/core/validation"
	"github.com/stiftly/foundation_ledger_app/internal/dto"
	"github.com/stiftly/foundation_ledger_app/internal/utils/accounting"
)

const (
	// maxNumberingRetries bounds how often entry creation is retried when two
	// writers race for the same entry number. The loser of the unique
	// constraint re-reads the maximum and tries again.
	maxNumberingRetries = 3

	defaultEntryPageSize = 50
	maxEntryPageSize     = 100
)

// entryService implements the EntrySvcFacade interface
type entryService struct {
	BaseService
	entryRepo  portsrepo.EntryRepositoryWithTx
	accountSvc portssvc.AccountSvcFacade
}

// NewEntryService creates a new journal entry service with the provided dependencies
func NewEntryService(entryRepo portsrepo.EntryRepositoryWithTx, accountSvc portssvc.AccountSvcFacade, authorizer portssvc.FoundationAuthorizerSvc) *entryService {
	return &entryService{
		BaseService: BaseService{FoundationAuthorizer: authorizer},
		entryRepo:   entryRepo,
		accountSvc:  accountSvc,
	}
}

// Ensure entryService implements the EntrySvcFacade interface
var _ portssvc.EntrySvcFacade = (*entryService)(nil)

// CreateEntry validates and persists a new draft journal entry, allocating
// its entry number. Client-side validation is never trusted: the full line
// validation runs again here.
func (s *entryService) CreateEntry(ctx context.Context, foundationID string, req dto.CreateEntryRequest, userID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleMember); err != nil {
		return nil, err
	}

	now := time.Now()
	entryID := uuid.NewString()
	lines := make([]domain.JournalEntryLine, 0, len(req.Lines))
	for i, lineReq := range req.Lines {
		lines = append(lines, domain.JournalEntryLine{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			AccountID:    lineReq.AccountID,
			Description:  lineReq.Description,
			DebitAmount:  lineReq.DebitAmount,
			CreditAmount: lineReq.CreditAmount,
			LineOrder:    i + 1,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		})
	}

	if err := validation.ValidateLines(lines); err != nil {
		s.LogDebug(ctx, "Entry validation failed",
			slog.String("foundation_id", foundationID),
			slog.String("reason", err.Error()))
		return nil, apperrors.NewValidationFailedError(err.Error())
	}

	if err := s.validateLineAccounts(ctx, foundationID, lines, userID); err != nil {
		return nil, err
	}

	totalDebit, totalCredit := accounting.Totals(lines)
	entry := domain.JournalEntry{
		EntryID:      entryID,
		FoundationID: foundationID,
		EntryDate:    req.Date,
		Description:  req.Description,
		Reference:    req.Reference,
		TotalDebit:   totalDebit,
		TotalCredit:  totalCredit,
		Status:       domain.Draft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	created, err := s.createWithNumberingRetry(ctx, entry, lines)
	if err != nil {
		s.LogError(ctx, err, "Failed to create journal entry",
			slog.String("foundation_id", foundationID))
		return nil, err
	}
	created.Lines = lines

	s.LogInfo(ctx, "Journal entry created",
		slog.String("entry_id", created.EntryID),
		slog.String("entry_number", created.EntryNumber),
		slog.String("foundation_id", foundationID))
	return created, nil
}

// createWithNumberingRetry persists an entry, retrying a bounded number of
// times when a concurrent writer wins the race for the same entry number.
func (s *entryService) createWithNumberingRetry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) (*domain.JournalEntry, error) {
	var lastErr error
	for attempt := 1; attempt <= maxNumberingRetries; attempt++ {
		created, err := s.entryRepo.CreateEntry(ctx, entry, lines)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, apperrors.ErrNumberingConflict) {
			return nil, err
		}
		lastErr = err
		s.LogDebug(ctx, "Entry number taken by concurrent writer, retrying",
			slog.String("entry_id", entry.EntryID),
			slog.Int("attempt", attempt))
	}
	return nil, fmt.Errorf("entry numbering still contended after %d attempts: %w", maxNumberingRetries, lastErr)
}

// validateLineAccounts checks that every referenced account exists in the
// foundation and is active.
func (s *entryService) validateLineAccounts(ctx context.Context, foundationID string, lines []domain.JournalEntryLine, userID string) error {
	accountIDs := uniqueAccountIDs(lines)
	accounts, err := s.accountSvc.GetAccountsByIDs(ctx, foundationID, accountIDs, userID)
	if err != nil {
		return err
	}
	for _, id := range accountIDs {
		account, found := accounts[id]
		if !found {
			return apperrors.NewValidationFailedError(fmt.Sprintf("account %s does not exist in this foundation", id))
		}
		if !account.IsActive {
			return apperrors.NewValidationFailedError(fmt.Sprintf("account %s (%s) is inactive", account.AccountNumber, id))
		}
	}
	return nil
}

// PostEntry transitions a draft entry to posted, applying its amounts to the
// referenced account balances exactly once.
func (s *entryService) PostEntry(ctx context.Context, foundationID string, entryID string, userID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleMember); err != nil {
		return nil, err
	}

	entry, lines, err := s.fetchEntryWithLines(ctx, foundationID, entryID)
	if err != nil {
		return nil, err
	}

	// The invariants are checked again at the posting boundary; a draft is
	// mutable storage, not a validated artifact.
	if err := validation.ValidateLines(lines); err != nil {
		return nil, apperrors.NewValidationFailedError(err.Error())
	}

	balanceChanges, err := s.balanceChangesForLines(ctx, foundationID, lines, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.entryRepo.MarkEntryPosted(ctx, entryID, balanceChanges, userID, now); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to post journal entry",
				slog.String("entry_id", entryID))
		}
		return nil, err
	}

	entry.Status = domain.Posted
	entry.PostedBy = &userID
	entry.PostedAt = &now
	entry.Lines = lines

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", entryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("posted_by", userID))
	return entry, nil
}

// ReverseEntry creates and posts a reversing entry mirroring the original
// with debit and credit sides swapped, and marks the original reversed.
func (s *entryService) ReverseEntry(ctx context.Context, foundationID string, entryID string, userID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleMember); err != nil {
		return nil, err
	}

	original, originalLines, err := s.fetchEntryWithLines(ctx, foundationID, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.Posted {
		return nil, apperrors.NewConflictError(fmt.Sprintf("entry %s is in status %s and cannot be reversed", entryID, original.Status))
	}
	if original.OriginalEntryID != nil {
		return nil, apperrors.NewConflictError(fmt.Sprintf("entry %s is itself a reversal and cannot be reversed", entryID))
	}

	now := time.Now()
	reversalID := uuid.NewString()
	reversalLines := make([]domain.JournalEntryLine, 0, len(originalLines))
	for _, line := range originalLines {
		reversalLines = append(reversalLines, domain.JournalEntryLine{
			LineID:       uuid.NewString(),
			EntryID:      reversalID,
			AccountID:    line.AccountID,
			Description:  line.Description,
			DebitAmount:  line.CreditAmount,
			CreditAmount: line.DebitAmount,
			LineOrder:    line.LineOrder,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		})
	}

	// Balance impact of the mirrored lines is exactly the negation of the
	// original posting.
	balanceChanges, err := s.balanceChangesForLines(ctx, foundationID, reversalLines, userID)
	if err != nil {
		return nil, err
	}

	totalDebit, totalCredit := accounting.Totals(reversalLines)
	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		FoundationID:    foundationID,
		EntryDate:       now,
		Description:     fmt.Sprintf("Reversal of %s: %s", original.EntryNumber, original.Description),
		TotalDebit:      totalDebit,
		TotalCredit:     totalCredit,
		Status:          domain.Posted,
		PostedBy:        &userID,
		PostedAt:        &now,
		OriginalEntryID: &original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	var created *domain.JournalEntry
	var lastErr error
	for attempt := 1; attempt <= maxNumberingRetries; attempt++ {
		created, lastErr = s.entryRepo.CreateReversal(ctx, original.EntryID, reversal, reversalLines, balanceChanges, userID, now)
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, apperrors.ErrNumberingConflict) {
			if !errors.Is(lastErr, apperrors.ErrConflict) {
				s.LogError(ctx, lastErr, "Failed to reverse journal entry",
					slog.String("entry_id", entryID))
			}
			return nil, lastErr
		}
		s.LogDebug(ctx, "Reversal entry number taken by concurrent writer, retrying",
			slog.String("entry_id", entryID),
			slog.Int("attempt", attempt))
	}
	if lastErr != nil {
		return nil, fmt.Errorf("entry numbering still contended after %d attempts: %w", maxNumberingRetries, lastErr)
	}
	created.Lines = reversalLines

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_entry_id", created.EntryID),
		slog.String("reversal_entry_number", created.EntryNumber))
	return created, nil
}

// GetEntryByID retrieves an entry with its lines, scoped to the foundation.
func (s *entryService) GetEntryByID(ctx context.Context, foundationID string, entryID string, userID string) (*domain.JournalEntry, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	entry, lines, err := s.fetchEntryWithLines(ctx, foundationID, entryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a page of entries for a foundation, newest first.
func (s *entryService) ListEntries(ctx context.Context, foundationID string, userID string, limit int, nextToken *string, includeReversals bool, includeLines bool) ([]domain.JournalEntry, *string, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleReadOnly); err != nil {
		return nil, nil, err
	}

	limit = clampPageSize(limit)
	entries, token, err := s.entryRepo.ListEntriesByFoundation(ctx, foundationID, limit, nextToken, includeReversals)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries",
			slog.String("foundation_id", foundationID))
		return nil, nil, err
	}

	if includeLines && len(entries) > 0 {
		entryIDs := make([]string, len(entries))
		for i, entry := range entries {
			entryIDs[i] = entry.EntryID
		}
		linesByEntry, err := s.entryRepo.FindLinesByEntryIDs(ctx, entryIDs)
		if err != nil {
			s.LogError(ctx, err, "Failed to fetch lines for listed entries",
				slog.String("foundation_id", foundationID))
			return nil, nil, err
		}
		for i := range entries {
			entries[i].Lines = linesByEntry[entries[i].EntryID]
		}
	}

	return entries, token, nil
}

// ListLinesByAccount retrieves a page of posted lines touching the given
// account, newest first.
func (s *entryService) ListLinesByAccount(ctx context.Context, foundationID string, accountID string, userID string, limit int, nextToken *string) ([]domain.JournalEntryLine, *string, error) {
	if err := s.AuthorizeUser(ctx, foundationID, userID, domain.RoleReadOnly); err != nil {
		return nil, nil, err
	}

	// Confirms the account exists and belongs to this foundation.
	if _, err := s.accountSvc.GetAccountByID(ctx, foundationID, accountID, userID); err != nil {
		return nil, nil, err
	}

	limit = clampPageSize(limit)
	lines, token, err := s.entryRepo.ListLinesByAccount(ctx, foundationID, accountID, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list lines for account",
			slog.String("account_id", accountID))
		return nil, nil, err
	}
	return lines, token, nil
}

// fetchEntryWithLines loads an entry and its lines, enforcing foundation scope.
func (s *entryService) fetchEntryWithLines(ctx context.Context, foundationID string, entryID string) (*domain.JournalEntry, []domain.JournalEntryLine, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, nil, err
	}
	if entry.FoundationID != foundationID {
		return nil, nil, apperrors.NewNotFoundError("journal entry not found in this foundation")
	}
	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, nil, err
	}
	return entry, lines, nil
}

// balanceChangesForLines resolves the account types of the referenced
// accounts and aggregates the signed balance delta per account.
func (s *entryService) balanceChangesForLines(ctx context.Context, foundationID string, lines []domain.JournalEntryLine, userID string) (map[string]decimal.Decimal, error) {
	accountIDs := uniqueAccountIDs(lines)
	accounts, err := s.accountSvc.GetAccountsByIDs(ctx, foundationID, accountIDs, userID)
	if err != nil {
		return nil, err
	}
	accountTypes := make(map[string]domain.AccountType, len(accounts))
	for id, account := range accounts {
		accountTypes[id] = account.AccountType
	}
	balanceChanges, err := accounting.BalanceChanges(lines, accountTypes)
	if err != nil {
		return nil, apperrors.NewValidationFailedError(err.Error())
	}
	return balanceChanges, nil
}

// uniqueAccountIDs collects the distinct account IDs referenced by the lines.
func uniqueAccountIDs(lines []domain.JournalEntryLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}
	return ids
}

func clampPageSize(limit int) int {
	if limit <= 0 {
		return defaultEntryPageSize
	}
	if limit > maxEntryPageSize {
		return maxEntryPageSize
	}
	return limit
}
