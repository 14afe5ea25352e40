package services

import (
	"context"

	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	"github.com/stiftly/foundation_ledger_app/internal/dto"
)

// EntryReaderSvc defines read operations for journal entry data.
type EntryReaderSvc interface {
	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, foundationID string, entryID string, userID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries for a foundation, newest first.
	// The returned token is nil when there is no further page. When
	// includeLines is set each entry carries its lines.
	ListEntries(ctx context.Context, foundationID string, userID string, limit int, nextToken *string, includeReversals bool, includeLines bool) ([]domain.JournalEntry, *string, error)

	// ListLinesByAccount retrieves a page of posted lines touching the given
	// account, newest first.
	ListLinesByAccount(ctx context.Context, foundationID string, accountID string, userID string, limit int, nextToken *string) ([]domain.JournalEntryLine, *string, error)
}

// EntryWriterSvc defines write operations for journal entry data.
type EntryWriterSvc interface {
	// CreateEntry validates and persists a new draft entry, allocating its
	// entry number.
	CreateEntry(ctx context.Context, foundationID string, req dto.CreateEntryRequest, userID string) (*domain.JournalEntry, error)

	// PostEntry transitions a draft entry to posted, applying its amounts to
	// account balances. Posting an already posted entry fails with
	// apperrors.ErrConflict and changes nothing.
	PostEntry(ctx context.Context, foundationID string, entryID string, userID string) (*domain.JournalEntry, error)

	// ReverseEntry creates and posts a reversing entry that mirrors the
	// original with debit and credit sides swapped, and marks the original
	// reversed.
	ReverseEntry(ctx context.Context, foundationID string, entryID string, userID string) (*domain.JournalEntry, error)
}

// EntrySvcFacade combines all entry-related service interfaces.
type EntrySvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
}
