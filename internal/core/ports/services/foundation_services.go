package services

import (
	"context"

	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	"github.com/stiftly/foundation_ledger_app/internal/dto"
)

// FoundationReaderSvc defines read operations for foundation data.
type FoundationReaderSvc interface {
	// GetFoundationByID retrieves a foundation by its ID.
	GetFoundationByID(ctx context.Context, foundationID string) (*domain.Foundation, error)

	// ListUserFoundations retrieves the foundations a user is a member of.
	ListUserFoundations(ctx context.Context, userID string) ([]domain.Foundation, error)
}

// FoundationWriterSvc defines write operations for foundation data.
type FoundationWriterSvc interface {
	// CreateFoundation creates a new foundation, makes the creator an admin
	// member, and seeds the standard chart of accounts.
	CreateFoundation(ctx context.Context, req dto.CreateFoundationRequest, creatorUserID string) (*domain.Foundation, error)

	// UpdateFoundation updates a foundation's details.
	UpdateFoundation(ctx context.Context, foundationID string, req dto.UpdateFoundationRequest, userID string) (*domain.Foundation, error)
}

// FoundationMemberSvc defines operations for managing foundation membership.
type FoundationMemberSvc interface {
	// AddUserToFoundation adds a user to a foundation in the given role.
	AddUserToFoundation(ctx context.Context, requestingUserID string, foundationID string, targetUserID string, role domain.FoundationRole) error

	// ListFoundationMembers retrieves the members of a foundation.
	ListFoundationMembers(ctx context.Context, requestingUserID string, foundationID string) ([]domain.FoundationMember, error)
}

// FoundationAuthorizerSvc defines authorization checks scoped to a foundation.
type FoundationAuthorizerSvc interface {
	// AuthorizeUserAction verifies the user holds at least the required role in
	// the foundation. It returns apperrors.ErrForbidden when the user is not a
	// member or holds an insufficient role.
	AuthorizeUserAction(ctx context.Context, foundationID string, userID string, requiredRole domain.FoundationRole) error
}

// FoundationSvcFacade combines all foundation-related service interfaces.
type FoundationSvcFacade interface {
	FoundationReaderSvc
	FoundationWriterSvc
	FoundationMemberSvc
	FoundationAuthorizerSvc
}
