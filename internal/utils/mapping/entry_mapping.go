package mapping

import (
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	"github.com/stiftly/foundation_ledger_app/internal/models"
)

// ToModelEntry converts a domain JournalEntry to its storage model.
func ToModelEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:          d.EntryID,
		FoundationID:     d.FoundationID,
		EntryNumber:      d.EntryNumber,
		EntryDate:        d.EntryDate,
		Description:      d.Description,
		Reference:        d.Reference,
		TotalDebit:       d.TotalDebit,
		TotalCredit:      d.TotalCredit,
		Status:           models.EntryStatus(d.Status),
		PostedBy:         d.PostedBy,
		PostedAt:         d.PostedAt,
		OriginalEntryID:  d.OriginalEntryID,
		ReversingEntryID: d.ReversingEntryID,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntry converts a storage model JournalEntry to its domain form.
func ToDomainEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:          m.EntryID,
		FoundationID:     m.FoundationID,
		EntryNumber:      m.EntryNumber,
		EntryDate:        m.EntryDate,
		Description:      m.Description,
		Reference:        m.Reference,
		TotalDebit:       m.TotalDebit,
		TotalCredit:      m.TotalCredit,
		Status:           domain.EntryStatus(m.Status),
		PostedBy:         m.PostedBy,
		PostedAt:         m.PostedAt,
		OriginalEntryID:  m.OriginalEntryID,
		ReversingEntryID: m.ReversingEntryID,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelEntryLine converts a domain JournalEntryLine to its storage model.
func ToModelEntryLine(d domain.JournalEntryLine) models.JournalEntryLine {
	return models.JournalEntryLine{
		LineID:       d.LineID,
		EntryID:      d.EntryID,
		AccountID:    d.AccountID,
		Description:  d.Description,
		DebitAmount:  d.DebitAmount,
		CreditAmount: d.CreditAmount,
		LineOrder:    d.LineOrder,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntryLine converts a storage model JournalEntryLine to its domain form.
func ToDomainEntryLine(m models.JournalEntryLine) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		LineID:       m.LineID,
		EntryID:      m.EntryID,
		AccountID:    m.AccountID,
		Description:  m.Description,
		DebitAmount:  m.DebitAmount,
		CreditAmount: m.CreditAmount,
		LineOrder:    m.LineOrder,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainEntryLineSlice converts a slice of model lines to domain lines.
func ToDomainEntryLineSlice(ms []models.JournalEntryLine) []domain.JournalEntryLine {
	ds := make([]domain.JournalEntryLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEntryLine(m)
	}
	return ds
}
