package validation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	"github.com/stiftly/foundation_ledger_app/internal/core/validation"
)

func debitLine(accountID string, amount string) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		AccountID:   accountID,
		DebitAmount: decimal.RequireFromString(amount),
	}
}

func creditLine(accountID string, amount string) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		AccountID:    accountID,
		CreditAmount: decimal.RequireFromString(amount),
	}
}

func assertCode(t *testing.T, err error, want validation.Code) {
	t.Helper()
	require.Error(t, err)
	var entryErr *validation.EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, want, entryErr.Code)
}

func TestValidateLines_Valid(t *testing.T) {
	lines := []domain.JournalEntryLine{
		debitLine("acc-1010", "500"),
		creditLine("acc-4010", "500"),
	}
	assert.NoError(t, validation.ValidateLines(lines))
}

func TestValidateLines_ValidSplitAcrossSeveralLines(t *testing.T) {
	lines := []domain.JournalEntryLine{
		debitLine("acc-1010", "100.25"),
		debitLine("acc-5010", "399.75"),
		creditLine("acc-4010", "400"),
		creditLine("acc-2010", "100"),
	}
	assert.NoError(t, validation.ValidateLines(lines))
}

func TestValidateLines_TooFewLines(t *testing.T) {
	assertCode(t, validation.ValidateLines(nil), validation.TooFewLines)
	assertCode(t, validation.ValidateLines([]domain.JournalEntryLine{
		debitLine("acc-1010", "500"),
	}), validation.TooFewLines)
}

func TestValidateLines_Unbalanced(t *testing.T) {
	lines := []domain.JournalEntryLine{
		debitLine("acc-1010", "500"),
		creditLine("acc-4010", "400"),
	}
	assertCode(t, validation.ValidateLines(lines), validation.Unbalanced)
}

func TestValidateLines_WithinTolerance(t *testing.T) {
	// A 0.01 discrepancy is inside the fixed epsilon and accepted.
	lines := []domain.JournalEntryLine{
		debitLine("acc-1010", "100.00"),
		creditLine("acc-4010", "99.99"),
	}
	assert.NoError(t, validation.ValidateLines(lines))

	lines = []domain.JournalEntryLine{
		debitLine("acc-1010", "100.00"),
		creditLine("acc-4010", "99.98"),
	}
	assertCode(t, validation.ValidateLines(lines), validation.Unbalanced)
}

func TestValidateLines_MixedSides(t *testing.T) {
	// Mixed sides is reported regardless of overall balance.
	lines := []domain.JournalEntryLine{
		{
			AccountID:    "acc-1010",
			DebitAmount:  decimal.RequireFromString("100"),
			CreditAmount: decimal.RequireFromString("100"),
		},
		creditLine("acc-4010", "0.01"),
	}
	assertCode(t, validation.ValidateLines(lines), validation.MixedSides)
}

func TestValidateLines_SingleLineBothSides(t *testing.T) {
	// A lone line carrying both sides is malformed before it is too short:
	// the per-line verdict wins over the line-count one.
	lines := []domain.JournalEntryLine{
		{
			AccountID:    "acc-1010",
			DebitAmount:  decimal.RequireFromString("100"),
			CreditAmount: decimal.RequireFromString("100"),
		},
	}
	assertCode(t, validation.ValidateLines(lines), validation.MixedSides)
}

func TestValidateLines_EmptySide(t *testing.T) {
	lines := []domain.JournalEntryLine{
		debitLine("acc-1010", "500"),
		{AccountID: "acc-4010"},
	}
	assertCode(t, validation.ValidateLines(lines), validation.EmptySide)
}

func TestValidateLines_MissingAccount(t *testing.T) {
	lines := []domain.JournalEntryLine{
		debitLine("acc-1010", "500"),
		creditLine("", "500"),
	}
	assertCode(t, validation.ValidateLines(lines), validation.MissingAccount)
}

func TestValidateLines_NegativeAmountRejected(t *testing.T) {
	lines := []domain.JournalEntryLine{
		{AccountID: "acc-1010", DebitAmount: decimal.RequireFromString("-500")},
		creditLine("acc-4010", "500"),
	}
	assert.Error(t, validation.ValidateLines(lines))
}

func TestCurrencyAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"100", "100", true},
		{"100.5", "100.5", true},
		{"100.50", "100.5", true},
		{"-42.10", "-42.1", true},
		{"100.505", "", false},
		{"1,000", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		d, err := validation.CurrencyAmount(tt.input)
		if tt.ok {
			require.NoError(t, err, "input %q", tt.input)
			assert.Equal(t, tt.want, d.String(), "input %q", tt.input)
		} else {
			assert.Error(t, err, "input %q", tt.input)
		}
	}
}

func TestRequired(t *testing.T) {
	assert.NoError(t, validation.Required("name", "Stiftelsen X"))
	assert.Error(t, validation.Required("name", ""))
	assert.Error(t, validation.Required("name", "   "))
}

func TestDate(t *testing.T) {
	d, err := validation.Date("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	_, err = validation.Date("14/03/2025")
	assert.Error(t, err)
}

func TestEmail(t *testing.T) {
	assert.NoError(t, validation.Email("kassor@stiftelsen.se"))
	assert.Error(t, validation.Email("not-an-email"))
}
