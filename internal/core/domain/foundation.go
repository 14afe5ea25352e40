package domain

import "time"

// Foundation represents a managed foundation owning its own chart of
// accounts, journal entries, and membership.
type Foundation struct {
	FoundationID        string  `json:"foundationID"` // Primary Key (UUID)
	Name                string  `json:"name"`
	OrgNumber           string  `json:"orgNumber"`           // Registration number, optional
	DefaultCurrencyCode *string `json:"defaultCurrencyCode"` // e.g. "SEK"
	TaxRate             *string `json:"taxRate"`             // Flat rate stored as decimal string, optional
	IsActive            bool    `json:"isActive"`
	AuditFields
}

// FoundationRole defines the possible roles a user can have within a foundation.
type FoundationRole string

const (
	RoleAdmin    FoundationRole = "ADMIN"
	RoleMember   FoundationRole = "MEMBER"
	RoleReadOnly FoundationRole = "READONLY"
	RoleRemoved  FoundationRole = "REMOVED"
)

// FoundationMember represents the membership of a User in a Foundation.
type FoundationMember struct {
	UserID       string         `json:"userID"`
	UserName     string         `json:"userName"`
	FoundationID string         `json:"foundationID"`
	Role         FoundationRole `json:"role"`
	JoinedAt     time.Time      `json:"joinedAt"`
}
