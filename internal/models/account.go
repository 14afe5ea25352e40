package models

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

// Account is the storage representation of a ledger account.
type Account struct {
	AccountID     string      `db:"account_id"`
	FoundationID  string      `db:"foundation_id"`
	AccountNumber string      `db:"account_number"`
	Name          string      `db:"name"`
	AccountType   AccountType `db:"account_type"`
	CurrencyCode  string      `db:"currency_code"`
	Description   string      `db:"description"`
	IsActive      bool        `db:"is_active"`
	AuditFields
	Balance decimal.Decimal `db:"balance"`
}
