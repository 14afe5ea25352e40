package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	"github.com/stiftly/foundation_ledger_app/internal/utils/accounting"
)

func TestSignedDelta(t *testing.T) {
	debit := domain.JournalEntryLine{AccountID: "a1", DebitAmount: decimal.RequireFromString("100")}
	credit := domain.JournalEntryLine{AccountID: "a1", CreditAmount: decimal.RequireFromString("100")}

	tests := []struct {
		name        string
		line        domain.JournalEntryLine
		accountType domain.AccountType
		want        string
	}{
		{"debit to asset increases", debit, domain.Asset, "100"},
		{"credit to asset decreases", credit, domain.Asset, "-100"},
		{"debit to expense increases", debit, domain.Expense, "100"},
		{"debit to liability decreases", debit, domain.Liability, "-100"},
		{"credit to liability increases", credit, domain.Liability, "100"},
		{"credit to revenue increases", credit, domain.Revenue, "100"},
		{"debit to equity decreases", debit, domain.Equity, "-100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accounting.SignedDelta(tt.line, tt.accountType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestSignedDelta_UnknownAccountType(t *testing.T) {
	line := domain.JournalEntryLine{AccountID: "a1", DebitAmount: decimal.RequireFromString("1")}
	_, err := accounting.SignedDelta(line, domain.AccountType("BOGUS"))
	assert.Error(t, err)
}

func TestBalanceChanges_NetsPerAccount(t *testing.T) {
	lines := []domain.JournalEntryLine{
		{AccountID: "bank", DebitAmount: decimal.RequireFromString("500")},
		{AccountID: "bank", CreditAmount: decimal.RequireFromString("200")},
		{AccountID: "revenue", CreditAmount: decimal.RequireFromString("300")},
	}
	types := map[string]domain.AccountType{
		"bank":    domain.Asset,
		"revenue": domain.Revenue,
	}
	changes, err := accounting.BalanceChanges(lines, types)
	require.NoError(t, err)
	assert.Equal(t, "300", changes["bank"].String())
	assert.Equal(t, "300", changes["revenue"].String())
}

func TestTotals(t *testing.T) {
	lines := []domain.JournalEntryLine{
		{AccountID: "a", DebitAmount: decimal.RequireFromString("100.50")},
		{AccountID: "b", CreditAmount: decimal.RequireFromString("70")},
		{AccountID: "c", CreditAmount: decimal.RequireFromString("30.50")},
	}
	debit, credit := accounting.Totals(lines)
	assert.Equal(t, "100.5", debit.String())
	assert.Equal(t, "100.5", credit.String())
}

func TestFormatEntryNumber(t *testing.T) {
	assert.Equal(t, "JE-2025-000001", accounting.FormatEntryNumber(accounting.EntryNumberPrefix, 2025, 1))
	assert.Equal(t, "JE-2025-000142", accounting.FormatEntryNumber("JE", 2025, 142))
	assert.Equal(t, "INV-2026-001000", accounting.FormatEntryNumber("INV", 2026, 1000))
}

func TestParseEntryNumber(t *testing.T) {
	prefix, year, seq, err := accounting.ParseEntryNumber("JE-2025-000042")
	require.NoError(t, err)
	assert.Equal(t, "JE", prefix)
	assert.Equal(t, 2025, year)
	assert.Equal(t, int64(42), seq)

	for _, bad := range []string{"", "JE-25-000001", "JE-2025-1", "je-2025-000001", "JE-2025-0000010"} {
		_, _, _, err := accounting.ParseEntryNumber(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
