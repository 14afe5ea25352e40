package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
// Draft entries carry no balance impact; posting applies balance deltas
// exactly once; a reversed entry is immutable.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// JournalEntry represents a balanced group of debit/credit line items
// recorded against a foundation's accounts on a given date.
type JournalEntry struct {
	EntryID          string          `json:"entryID"`      // Primary Key (UUID)
	FoundationID     string          `json:"foundationID"` // FK -> foundations.foundation_id
	EntryNumber      string          `json:"entryNumber"`  // e.g. JE-2025-000001, unique per foundation
	EntryDate        time.Time       `json:"entryDate"`
	Description      string          `json:"description"`
	Reference        *string         `json:"reference"` // Optional external reference number
	TotalDebit       decimal.Decimal `json:"totalDebit"`
	TotalCredit      decimal.Decimal `json:"totalCredit"`
	Status           EntryStatus     `json:"status"`
	PostedBy         *string         `json:"postedBy"`
	PostedAt         *time.Time      `json:"postedAt"`
	OriginalEntryID  *string         `json:"originalEntryID"`  // Set on the reversing entry
	ReversingEntryID *string         `json:"reversingEntryID"` // Set on the reversed entry
	AuditFields
	Lines []JournalEntryLine `json:"lines,omitempty"`
}

// JournalEntryLine represents a single line item within a JournalEntry.
// Exactly one of DebitAmount/CreditAmount is strictly positive.
type JournalEntryLine struct {
	LineID       string          `json:"lineID"`  // Primary Key (UUID)
	EntryID      string          `json:"entryID"` // FK -> journal_entries.entry_id
	AccountID    string          `json:"accountID"`
	Description  string          `json:"description"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	LineOrder    int             `json:"lineOrder"` // 1-based, stable ordering
	AuditFields
}

// IsDebit reports whether the line carries its amount on the debit side.
func (l JournalEntryLine) IsDebit() bool {
	return l.DebitAmount.IsPositive()
}

// Amount returns the positive amount of the line, whichever side it is on.
func (l JournalEntryLine) Amount() decimal.Decimal {
	if l.IsDebit() {
		return l.DebitAmount
	}
	return l.CreditAmount
}
