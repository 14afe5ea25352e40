package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
)

// EntryReader defines read operations for journal entry data.
type EntryReader interface {
	// FindEntryByID retrieves a journal entry header by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves the lines of a single entry ordered by line order.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error)

	// FindLinesByEntryIDs retrieves lines for multiple entries keyed by entry ID.
	FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalEntryLine, error)

	// ListEntriesByFoundation retrieves a page of entries for a foundation ordered
	// by entry date descending. The returned token is nil when there is no
	// further page. Reversed entries and their reversals are filtered out
	// unless includeReversals is set.
	ListEntriesByFoundation(ctx context.Context, foundationID string, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error)

	// ListLinesByAccount retrieves a page of posted lines touching the given
	// account, newest first.
	ListLinesByAccount(ctx context.Context, foundationID string, accountID string, limit int, nextToken *string) ([]domain.JournalEntryLine, *string, error)
}

// EntryWriter defines write operations for journal entry data.
type EntryWriter interface {
	// CreateEntry atomically persists an entry header and its lines in a single
	// transaction, allocating the next entry number for the foundation and year
	// inside that transaction. If any line insert fails the header insert is
	// compensated before the error is returned, so no headless entry survives.
	// A concurrent allocation of the same number surfaces as
	// apperrors.ErrNumberingConflict; callers are expected to retry.
	CreateEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) (*domain.JournalEntry, error)

	// MarkEntryPosted transitions a draft entry to posted and applies the given
	// signed balance deltas to the affected accounts, all in one transaction.
	// The status transition is a compare-and-set: if the entry is no longer in
	// draft the call fails with apperrors.ErrConflict and no balances change.
	MarkEntryPosted(ctx context.Context, entryID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error

	// CreateReversal persists the reversing entry with its lines, marks the
	// original entry reversed, links the two, and applies the compensating
	// balance deltas, all in one transaction. The original must be in posted
	// status or the call fails with apperrors.ErrConflict.
	CreateReversal(ctx context.Context, originalEntryID string, reversal domain.JournalEntry, lines []domain.JournalEntryLine, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) (*domain.JournalEntry, error)
}

// EntryRepositoryWithTx combines entry repository capabilities with
// transaction management.
type EntryRepositoryWithTx interface {
	EntryReader
	EntryWriter
	TransactionManager
}
