package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
)

// Code identifies the specific invariant a candidate entry violated.
type Code string

const (
	TooFewLines    Code = "TOO_FEW_LINES"
	Unbalanced     Code = "UNBALANCED"
	MixedSides     Code = "MIXED_SIDES"
	EmptySide      Code = "EMPTY_SIDE"
	MissingAccount Code = "MISSING_ACCOUNT"
)

// balanceTolerance is the fixed epsilon for the debit/credit comparison.
// Amounts are decimal with 2 implied fraction digits, so anything beyond
// 0.01 is a genuine imbalance rather than representation noise.
var balanceTolerance = decimal.New(1, -2)

// EntryError describes a single violated invariant on a candidate entry.
type EntryError struct {
	Code    Code
	Message string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidateLines checks the structural and balance invariants of a candidate
// set of journal entry line items. It is side-effect-free and is called both
// before submission and again at the posting boundary; a remote caller's
// prior validation pass is never trusted.
func ValidateLines(lines []domain.JournalEntryLine) error {
	// Per-line checks run first: a malformed line is reported as such even
	// when the entry is also too short, so a single line carrying both a
	// debit and a credit surfaces as MixedSides rather than TooFewLines.
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, line := range lines {
		hasDebit := line.DebitAmount.IsPositive()
		hasCredit := line.CreditAmount.IsPositive()

		if line.DebitAmount.IsNegative() || line.CreditAmount.IsNegative() {
			return &EntryError{
				Code:    EmptySide,
				Message: fmt.Sprintf("line %d: amounts must not be negative", i+1),
			}
		}
		if hasDebit && hasCredit {
			return &EntryError{
				Code:    MixedSides,
				Message: fmt.Sprintf("line %d: has both a debit and a credit amount", i+1),
			}
		}
		if !hasDebit && !hasCredit {
			return &EntryError{
				Code:    EmptySide,
				Message: fmt.Sprintf("line %d: has neither a debit nor a credit amount", i+1),
			}
		}
		if line.AccountID == "" {
			return &EntryError{
				Code:    MissingAccount,
				Message: fmt.Sprintf("line %d: missing account reference", i+1),
			}
		}

		totalDebit = totalDebit.Add(line.DebitAmount)
		totalCredit = totalCredit.Add(line.CreditAmount)
	}

	if len(lines) < 2 {
		return &EntryError{
			Code:    TooFewLines,
			Message: fmt.Sprintf("entry must have at least 2 line items, got %d", len(lines)),
		}
	}

	if totalDebit.Sub(totalCredit).Abs().GreaterThan(balanceTolerance) {
		return &EntryError{
			Code: Unbalanced,
			Message: fmt.Sprintf("debits (%s) do not equal credits (%s)",
				totalDebit.StringFixed(2), totalCredit.StringFixed(2)),
		}
	}

	return nil
}

// currencyAmountRe matches plain currency amounts with at most 2 fraction digits.
var currencyAmountRe = regexp.MustCompile(`^-?\d+(\.\d{1,2})?$`)

// Required checks that a value is present after trimming whitespace.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// CurrencyAmount checks that a string is a well-formed fixed-point currency
// amount (at most 2 fraction digits) and returns the parsed decimal.
func CurrencyAmount(value string) (decimal.Decimal, error) {
	if !currencyAmountRe.MatchString(strings.TrimSpace(value)) {
		return decimal.Zero, fmt.Errorf("invalid currency amount %q", value)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid currency amount %q: %w", value, err)
	}
	return d, nil
}

// Date checks that a string is an ISO date (YYYY-MM-DD) and returns it parsed.
func Date(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// Email checks that a string is a parseable email address.
func Email(value string) error {
	if _, err := mail.ParseAddress(value); err != nil {
		return fmt.Errorf("invalid email address %q", value)
	}
	return nil
}
