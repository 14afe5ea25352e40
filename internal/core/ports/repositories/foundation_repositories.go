package repositories

import (
	"context"

	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
)

// FoundationReader defines read operations for foundation data.
type FoundationReader interface {
	// FindFoundationByID retrieves a foundation by its unique identifier.
	FindFoundationByID(ctx context.Context, foundationID string) (*domain.Foundation, error)

	// ListFoundationsByUserID retrieves foundations the given user is a member of.
	ListFoundationsByUserID(ctx context.Context, userID string) ([]domain.Foundation, error)
}

// FoundationWriter defines write operations for foundation data.
type FoundationWriter interface {
	// SaveFoundation persists a new foundation.
	SaveFoundation(ctx context.Context, foundation domain.Foundation) error

	// UpdateFoundation updates an existing foundation's details.
	UpdateFoundation(ctx context.Context, foundation domain.Foundation) error
}

// MembershipManager defines operations for managing foundation membership.
type MembershipManager interface {
	// AddMember associates a user with a foundation in the given role.
	AddMember(ctx context.Context, membership domain.FoundationMember) error

	// FindMemberRole retrieves the role a user holds in a foundation.
	FindMemberRole(ctx context.Context, foundationID string, userID string) (*domain.FoundationMember, error)

	// ListMembers retrieves the members of a foundation.
	ListMembers(ctx context.Context, foundationID string) ([]domain.FoundationMember, error)

	// UpdateMemberRole changes the role a user holds in a foundation.
	UpdateMemberRole(ctx context.Context, foundationID string, userID string, role domain.FoundationRole) error
}

// FoundationRepositoryWithTx combines foundation repository capabilities with
// transaction management.
type FoundationRepositoryWithTx interface {
	FoundationReader
	FoundationWriter
	MembershipManager
	TransactionManager
}
