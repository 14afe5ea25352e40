package mapping

import (
	"database/sql"

	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	"github.com/stiftly/foundation_ledger_app/internal/models"
)

// ToModelFoundation converts a domain Foundation to its storage model.
func ToModelFoundation(d domain.Foundation) models.Foundation {
	m := models.Foundation{
		FoundationID: d.FoundationID,
		Name:         d.Name,
		OrgNumber:    d.OrgNumber,
		IsActive:     d.IsActive,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
	if d.DefaultCurrencyCode != nil {
		m.DefaultCurrencyCode = sql.NullString{String: *d.DefaultCurrencyCode, Valid: true}
	}
	if d.TaxRate != nil {
		m.TaxRate = sql.NullString{String: *d.TaxRate, Valid: true}
	}
	return m
}

// ToDomainFoundation converts a storage model Foundation to its domain form.
func ToDomainFoundation(m models.Foundation) domain.Foundation {
	d := domain.Foundation{
		FoundationID: m.FoundationID,
		Name:         m.Name,
		OrgNumber:    m.OrgNumber,
		IsActive:     m.IsActive,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
	if m.DefaultCurrencyCode.Valid {
		d.DefaultCurrencyCode = &m.DefaultCurrencyCode.String
	}
	if m.TaxRate.Valid {
		d.TaxRate = &m.TaxRate.String
	}
	return d
}

// ToDomainFoundationMember converts a membership row to its domain form.
func ToDomainFoundationMember(m models.FoundationMember) domain.FoundationMember {
	return domain.FoundationMember{
		UserID:       m.UserID,
		UserName:     m.UserName,
		FoundationID: m.FoundationID,
		Role:         domain.FoundationRole(m.Role),
		JoinedAt:     m.JoinedAt,
	}
}
