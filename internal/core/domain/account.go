package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a ledger account in a foundation's chart of accounts.
// The balance is mutated only by posting or reversing journal entries that
// reference the account.
type Account struct {
	AccountID     string      `json:"accountID"`     // Primary Key (UUID)
	FoundationID  string      `json:"foundationID"`  // FK -> foundations.foundation_id
	AccountNumber string      `json:"accountNumber"` // 4-digit BAS-style number, unique per foundation
	Name          string      `json:"name"`
	AccountType   AccountType `json:"accountType"`
	CurrencyCode  string      `json:"currencyCode"`
	Description   string      `json:"description"`
	IsActive      bool        `json:"isActive"`
	AuditFields
	Balance decimal.Decimal `json:"balance"` // Persisted running balance
}
