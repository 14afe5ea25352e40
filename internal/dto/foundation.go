package dto

import (
	"time"

	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
)

// --- Foundation DTOs ---

// CreateFoundationRequest defines data for creating a new foundation.
type CreateFoundationRequest struct {
	Name                string  `json:"name" binding:"required"`
	OrgNumber           string  `json:"orgNumber"`
	DefaultCurrencyCode *string `json:"defaultCurrencyCode" binding:"omitempty,iso4217"`
	TaxRate             *string `json:"taxRate"`
}

// UpdateFoundationRequest defines the data allowed for updating a foundation.
type UpdateFoundationRequest struct {
	Name      *string `json:"name"`
	OrgNumber *string `json:"orgNumber"`
	TaxRate   *string `json:"taxRate"`
	IsActive  *bool   `json:"isActive"`
}

// FoundationResponse defines data returned for a foundation.
type FoundationResponse struct {
	FoundationID        string    `json:"foundationID"`
	Name                string    `json:"name"`
	OrgNumber           string    `json:"orgNumber,omitempty"`
	DefaultCurrencyCode *string   `json:"defaultCurrencyCode,omitempty"`
	TaxRate             *string   `json:"taxRate,omitempty"`
	IsActive            bool      `json:"isActive"`
	CreatedAt           time.Time `json:"createdAt"`
	CreatedBy           string    `json:"createdBy"`
	LastUpdatedAt       time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy       string    `json:"lastUpdatedBy"`
}

// ToFoundationResponse converts domain.Foundation to DTO.
func ToFoundationResponse(f *domain.Foundation) FoundationResponse {
	return FoundationResponse{
		FoundationID:        f.FoundationID,
		Name:                f.Name,
		OrgNumber:           f.OrgNumber,
		DefaultCurrencyCode: f.DefaultCurrencyCode,
		TaxRate:             f.TaxRate,
		IsActive:            f.IsActive,
		CreatedAt:           f.CreatedAt,
		CreatedBy:           f.CreatedBy,
		LastUpdatedAt:       f.LastUpdatedAt,
		LastUpdatedBy:       f.LastUpdatedBy,
	}
}

// ListFoundationsResponse wraps a list of foundations.
type ListFoundationsResponse struct {
	Foundations []FoundationResponse `json:"foundations"`
}

// ToListFoundationsResponse converts a slice of domain.Foundation to DTO.
func ToListFoundationsResponse(fs []domain.Foundation) ListFoundationsResponse {
	list := make([]FoundationResponse, len(fs))
	for i, f := range fs {
		list[i] = ToFoundationResponse(&f)
	}
	return ListFoundationsResponse{Foundations: list}
}

// --- Foundation Membership DTOs ---

// AddMemberRequest defines data for adding a user to a foundation.
type AddMemberRequest struct {
	UserID string                `json:"userID" binding:"required"`
	Role   domain.FoundationRole `json:"role" binding:"required,foundationrole"`
}

// MemberResponse defines data returned about a foundation member.
type MemberResponse struct {
	UserID       string                `json:"userID"`
	UserName     string                `json:"userName,omitempty"`
	FoundationID string                `json:"foundationID"`
	Role         domain.FoundationRole `json:"role"`
	JoinedAt     time.Time             `json:"joinedAt"`
}

// ToMemberResponse converts domain.FoundationMember to DTO.
func ToMemberResponse(fm *domain.FoundationMember) MemberResponse {
	return MemberResponse{
		UserID:       fm.UserID,
		UserName:     fm.UserName,
		FoundationID: fm.FoundationID,
		Role:         fm.Role,
		JoinedAt:     fm.JoinedAt,
	}
}

// ToListMembersResponse converts a slice of domain.FoundationMember to DTOs.
func ToListMembersResponse(fms []domain.FoundationMember) []MemberResponse {
	list := make([]MemberResponse, len(fms))
	for i, fm := range fms {
		list[i] = ToMemberResponse(&fm)
	}
	return list
}
