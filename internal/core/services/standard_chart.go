package services

import "github.com/stiftly/foundation_ledger_app/internal/core/domain"

// StandardChartVersion identifies the seed chart revision. Bump when accounts
// are added so already-bootstrapped foundations can be topped up by re-running
// the bootstrap (existing numbers are skipped).
const StandardChartVersion = 1

// standardChartAccount is one row of the seed chart of accounts.
type standardChartAccount struct {
	Number string
	Name   string
	Type   domain.AccountType
}

// standardChart is the BAS-style chart of accounts seeded into every new
// foundation. Numbers follow the Swedish BAS convention: 1xxx assets,
// 2xxx liabilities and equity, 3xxx revenue, 4xxx-7xxx expenses,
// 8xxx financial items.
var standardChart = []standardChartAccount{
	// Assets
	{"1510", "Accounts receivable", domain.Asset},
	{"1630", "Tax account", domain.Asset},
	{"1910", "Cash", domain.Asset},
	{"1920", "Bank giro", domain.Asset},
	{"1930", "Bank account", domain.Asset},
	{"1940", "Savings account", domain.Asset},

	// Liabilities
	{"2440", "Accounts payable", domain.Liability},
	{"2510", "Tax liabilities", domain.Liability},
	{"2890", "Other short-term liabilities", domain.Liability},
	{"2898", "Granted, unpaid distributions", domain.Liability},

	// Equity
	{"2060", "Foundation capital", domain.Equity},
	{"2067", "Restricted capital", domain.Equity},
	{"2068", "Unrestricted capital", domain.Equity},
	{"2098", "Result from previous year", domain.Equity},
	{"2099", "Result for the year", domain.Equity},

	// Revenue
	{"3010", "Donations received", domain.Revenue},
	{"3890", "Other contributions", domain.Revenue},
	{"3990", "Other income", domain.Revenue},

	// Expenses
	{"4010", "Grants awarded", domain.Expense},
	{"6420", "Audit fees", domain.Expense},
	{"6530", "Accounting services", domain.Expense},
	{"6570", "Bank charges", domain.Expense},
	{"6990", "Other external expenses", domain.Expense},

	// Financial items
	{"8310", "Interest income", domain.Revenue},
	{"8410", "Interest expense", domain.Expense},
	{"8910", "Income tax for the year", domain.Expense},
}
