package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// JournalEntry is the storage representation of a journal entry header.
type JournalEntry struct {
	EntryID          string          `db:"entry_id"`
	FoundationID     string          `db:"foundation_id"`
	EntryNumber      string          `db:"entry_number"`
	EntryDate        time.Time       `db:"entry_date"`
	Description      string          `db:"description"`
	Reference        *string         `db:"reference"`
	TotalDebit       decimal.Decimal `db:"total_debit"`
	TotalCredit      decimal.Decimal `db:"total_credit"`
	Status           EntryStatus     `db:"status"`
	PostedBy         *string         `db:"posted_by"`
	PostedAt         *time.Time      `db:"posted_at"`
	OriginalEntryID  *string         `db:"original_entry_id"`
	ReversingEntryID *string         `db:"reversing_entry_id"`
	AuditFields
}

// JournalEntryLine is the storage representation of a single entry line.
type JournalEntryLine struct {
	LineID       string          `db:"line_id"`
	EntryID      string          `db:"entry_id"`
	AccountID    string          `db:"account_id"`
	Description  string          `db:"description"`
	DebitAmount  decimal.Decimal `db:"debit_amount"`
	CreditAmount decimal.Decimal `db:"credit_amount"`
	LineOrder    int             `db:"line_order"`
	AuditFields
	// EntryDate is joined in from the header for account statement listings.
	EntryDate time.Time `db:"-"`
}
