package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
)

// SignedDelta returns the balance impact of a single line on its account,
// relative to the account's normal-balance side.
// DEBIT to ASSET/EXPENSE -> positive, CREDIT -> negative.
// DEBIT to LIABILITY/EQUITY/REVENUE -> negative, CREDIT -> positive.
func SignedDelta(line domain.JournalEntryLine, accountType domain.AccountType) (decimal.Decimal, error) {
	amount := line.Amount()
	isDebit := line.IsDebit()

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			amount = amount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			amount = amount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' for account ID %s", accountType, line.AccountID)
	}
	return amount, nil
}

// BalanceChanges aggregates the net signed delta per account for a set of
// lines. The same map with every delta negated describes a reversal.
func BalanceChanges(lines []domain.JournalEntryLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		accountType, ok := accountTypes[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not found for account ID %s", line.AccountID)
		}
		delta, err := SignedDelta(line, accountType)
		if err != nil {
			return nil, err
		}
		changes[line.AccountID] = changes[line.AccountID].Add(delta)
	}
	return changes, nil
}

// Totals sums the debit and credit sides of a set of lines.
func Totals(lines []domain.JournalEntryLine) (totalDebit, totalCredit decimal.Decimal) {
	totalDebit = decimal.Zero
	totalCredit = decimal.Zero
	for _, line := range lines {
		totalDebit = totalDebit.Add(line.DebitAmount)
		totalCredit = totalCredit.Add(line.CreditAmount)
	}
	return totalDebit, totalCredit
}
