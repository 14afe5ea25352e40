package models

import (
	"database/sql"
	"time"
)

// Foundation is the storage representation of a foundation.
type Foundation struct {
	FoundationID        string         `db:"foundation_id"`
	Name                string         `db:"name"`
	OrgNumber           string         `db:"org_number"`
	DefaultCurrencyCode sql.NullString `db:"default_currency_code"`
	TaxRate             sql.NullString `db:"tax_rate"`
	IsActive            bool           `db:"is_active"`
	AuditFields
}

// FoundationMember is the storage representation of a foundation membership row.
type FoundationMember struct {
	UserID       string    `db:"user_id"`
	UserName     string    `db:"user_name"`
	FoundationID string    `db:"foundation_id"`
	Role         string    `db:"role"`
	JoinedAt     time.Time `db:"joined_at"`
}
