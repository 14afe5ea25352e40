package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
)

// --- Journal Entry DTOs ---

// CreateEntryLineRequest defines a single line of a new journal entry.
// Exactly one of debitAmount/creditAmount must be strictly positive.
type CreateEntryLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Description  string          `json:"description"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// CreateEntryRequest defines the data needed to create a new journal entry.
type CreateEntryRequest struct {
	Date        time.Time                `json:"date" binding:"required" time_format:"2006-01-02"`
	Description string                   `json:"description" binding:"required"`
	Reference   *string                  `json:"reference"`
	Lines       []CreateEntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// EntryLineResponse defines the data returned for a single entry line.
type EntryLineResponse struct {
	LineID       string          `json:"lineID"`
	AccountID    string          `json:"accountID"`
	Description  string          `json:"description"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	LineOrder    int             `json:"lineOrder"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID          string              `json:"entryID"`
	FoundationID     string              `json:"foundationID"`
	EntryNumber      string              `json:"entryNumber"`
	Date             time.Time           `json:"date"`
	Description      string              `json:"description"`
	Reference        *string             `json:"reference,omitempty"`
	TotalDebit       decimal.Decimal     `json:"totalDebit"`
	TotalCredit      decimal.Decimal     `json:"totalCredit"`
	Status           domain.EntryStatus  `json:"status"`
	PostedBy         *string             `json:"postedBy,omitempty"`
	PostedAt         *time.Time          `json:"postedAt,omitempty"`
	OriginalEntryID  *string             `json:"originalEntryID,omitempty"`
	ReversingEntryID *string             `json:"reversingEntryID,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	CreatedBy        string              `json:"createdBy"`
	Lines            []EntryLineResponse `json:"lines,omitempty"`
}

// ToEntryLineResponse converts a domain.JournalEntryLine to its DTO.
func ToEntryLineResponse(l *domain.JournalEntryLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:       l.LineID,
		AccountID:    l.AccountID,
		Description:  l.Description,
		DebitAmount:  l.DebitAmount,
		CreditAmount: l.CreditAmount,
		LineOrder:    l.LineOrder,
	}
}

// ToEntryLineResponses converts a slice of domain.JournalEntryLine to DTOs.
func ToEntryLineResponses(lines []domain.JournalEntryLine) []EntryLineResponse {
	responses := make([]EntryLineResponse, len(lines))
	for i, l := range lines {
		responses[i] = ToEntryLineResponse(&l)
	}
	return responses
}

// ToEntryResponse converts a domain.JournalEntry to its DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:          e.EntryID,
		FoundationID:     e.FoundationID,
		EntryNumber:      e.EntryNumber,
		Date:             e.EntryDate,
		Description:      e.Description,
		Reference:        e.Reference,
		TotalDebit:       e.TotalDebit,
		TotalCredit:      e.TotalCredit,
		Status:           e.Status,
		PostedBy:         e.PostedBy,
		PostedAt:         e.PostedAt,
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = ToEntryLineResponses(e.Lines)
	}
	return resp
}

// ListEntriesParams holds query parameters for listing journal entries.
type ListEntriesParams struct {
	Limit            int     `form:"limit"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals"`
	IncludeLines     bool    `form:"includeLines"`
}

// ListEntriesResponse wraps a page of journal entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ListEntryLinesParams holds query parameters for listing account lines.
type ListEntryLinesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListEntryLinesResponse wraps a page of entry lines for an account.
type ListEntryLinesResponse struct {
	Lines     []EntryLineResponse `json:"lines"`
	NextToken *string             `json:"nextToken,omitempty"`
}
