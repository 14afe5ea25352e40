package mapping

import (
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	"github.com/stiftly/foundation_ledger_app/internal/models"
)

// ToModelAccount converts a domain Account to its storage model.
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:     d.AccountID,
		FoundationID:  d.FoundationID,
		AccountNumber: d.AccountNumber,
		Name:          d.Name,
		AccountType:   models.AccountType(d.AccountType),
		CurrencyCode:  d.CurrencyCode,
		Description:   d.Description,
		IsActive:      d.IsActive,
		AuditFields:   ToModelAuditFields(d.AuditFields),
		Balance:       d.Balance,
	}
}

// ToDomainAccount converts a storage model Account to its domain form.
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:     m.AccountID,
		FoundationID:  m.FoundationID,
		AccountNumber: m.AccountNumber,
		Name:          m.Name,
		AccountType:   domain.AccountType(m.AccountType),
		CurrencyCode:  m.CurrencyCode,
		Description:   m.Description,
		IsActive:      m.IsActive,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
		Balance:       m.Balance,
	}
}
