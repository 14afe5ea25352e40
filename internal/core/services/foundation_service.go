package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stiftly/foundation_ledger_app/internal/apperrors"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	portsrepo "github.com/stiftly/foundation_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/stiftly/foundation_ledger_app/internal/core/ports/services"
	"github.com/stiftly/foundation_ledger_app/internal/dto"
)

// foundationService implements the FoundationSvcFacade interface
type foundationService struct {
	BaseService
	foundationRepo portsrepo.FoundationRepositoryWithTx
	chartSvc       portssvc.ChartBootstrapSvc
}

// NewFoundationService creates a new foundation service with the provided dependencies.
// The chart bootstrap dependency is attached separately because the account
// service in turn authorizes through the foundation service.
func NewFoundationService(foundationRepo portsrepo.FoundationRepositoryWithTx) *foundationService {
	return &foundationService{
		foundationRepo: foundationRepo,
	}
}

// AttachChartBootstrap wires in the service that seeds the standard chart of
// accounts whenever a foundation is created.
func (s *foundationService) AttachChartBootstrap(chartSvc portssvc.ChartBootstrapSvc) {
	s.chartSvc = chartSvc
}

// Ensure foundationService implements the FoundationSvcFacade interface
var _ portssvc.FoundationSvcFacade = (*foundationService)(nil)

// GetFoundationByID retrieves a foundation by its ID
func (s *foundationService) GetFoundationByID(ctx context.Context, foundationID string) (*domain.Foundation, error) {
	foundation, err := s.foundationRepo.FindFoundationByID(ctx, foundationID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find foundation by ID",
				slog.String("foundation_id", foundationID))
		}
		return nil, err
	}

	s.LogDebug(ctx, "Foundation retrieved successfully",
		slog.String("foundation_id", foundation.FoundationID))
	return foundation, nil
}

// ListUserFoundations retrieves all foundations a user belongs to
func (s *foundationService) ListUserFoundations(ctx context.Context, userID string) ([]domain.Foundation, error) {
	foundations, err := s.foundationRepo.ListFoundationsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list foundations for user",
			slog.String("user_id", userID))
		return nil, err
	}

	if foundations == nil {
		return []domain.Foundation{}, nil
	}

	s.LogDebug(ctx, "Foundations listed successfully",
		slog.Int("count", len(foundations)),
		slog.String("user_id", userID))
	return foundations, nil
}

// CreateFoundation creates a new foundation, adds the creator as an admin
// member, and seeds the standard chart of accounts.
func (s *foundationService) CreateFoundation(ctx context.Context, req dto.CreateFoundationRequest, creatorUserID string) (*domain.Foundation, error) {
	now := time.Now()
	foundationID := uuid.NewString()

	foundation := domain.Foundation{
		FoundationID:        foundationID,
		Name:                req.Name,
		OrgNumber:           req.OrgNumber,
		DefaultCurrencyCode: req.DefaultCurrencyCode,
		TaxRate:             req.TaxRate,
		IsActive:            true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.foundationRepo.SaveFoundation(ctx, foundation); err != nil {
		s.LogError(ctx, err, "Failed to save foundation",
			slog.String("foundation_id", foundationID))
		return nil, err
	}

	// Add creator as an admin to the new foundation
	if err := s.AddUserToFoundation(ctx, creatorUserID, foundationID, creatorUserID, domain.RoleAdmin); err != nil {
		s.LogError(ctx, err, "Failed to add creator as admin to new foundation",
			slog.String("foundation_id", foundationID),
			slog.String("user_id", creatorUserID))
		return nil, err
	}

	// Seed the standard chart of accounts. The seeding is idempotent, so a
	// failure here can be recovered by invoking the bootstrap again.
	if s.chartSvc != nil {
		created, err := s.chartSvc.BootstrapChartOfAccounts(ctx, foundationID, creatorUserID)
		if err != nil {
			s.LogError(ctx, err, "Failed to seed standard chart of accounts",
				slog.String("foundation_id", foundationID))
			return nil, err
		}
		s.LogInfo(ctx, "Standard chart of accounts seeded",
			slog.String("foundation_id", foundationID),
			slog.Int("accounts_created", created))
	}

	s.LogInfo(ctx, "Foundation created successfully",
		slog.String("foundation_id", foundationID),
		slog.String("creator_id", creatorUserID))
	return &foundation, nil
}

// UpdateFoundation updates a foundation's details. Requires admin role.
func (s *foundationService) UpdateFoundation(ctx context.Context, foundationID string, req dto.UpdateFoundationRequest, userID string) (*domain.Foundation, error) {
	if err := s.AuthorizeUserAction(ctx, foundationID, userID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	foundation, err := s.foundationRepo.FindFoundationByID(ctx, foundationID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		foundation.Name = *req.Name
		updated = true
	}
	if req.OrgNumber != nil {
		foundation.OrgNumber = *req.OrgNumber
		updated = true
	}
	if req.TaxRate != nil {
		foundation.TaxRate = req.TaxRate
		updated = true
	}
	if req.IsActive != nil {
		foundation.IsActive = *req.IsActive
		updated = true
	}

	if !updated {
		return foundation, nil
	}

	foundation.LastUpdatedAt = time.Now()
	foundation.LastUpdatedBy = userID

	if err := s.foundationRepo.UpdateFoundation(ctx, *foundation); err != nil {
		s.LogError(ctx, err, "Failed to update foundation",
			slog.String("foundation_id", foundationID))
		return nil, err
	}

	s.LogInfo(ctx, "Foundation updated successfully",
		slog.String("foundation_id", foundationID))
	return foundation, nil
}

// AddUserToFoundation adds a user to a foundation with a specific role
func (s *foundationService) AddUserToFoundation(ctx context.Context, requestingUserID string, foundationID string, targetUserID string, role domain.FoundationRole) error {
	// Self-assignment is permitted only for the creator bootstrap; otherwise
	// the requesting user must be an admin of the foundation.
	if requestingUserID != targetUserID {
		if err := s.AuthorizeUserAction(ctx, foundationID, requestingUserID, domain.RoleAdmin); err != nil {
			s.LogError(ctx, err, "User not authorized to add members to foundation",
				slog.String("requesting_user_id", requestingUserID),
				slog.String("foundation_id", foundationID))
			return err
		}
	}

	membership := domain.FoundationMember{
		UserID:       targetUserID,
		FoundationID: foundationID,
		Role:         role,
		JoinedAt:     time.Now(),
	}

	if err := s.foundationRepo.AddMember(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add user to foundation",
			slog.String("target_user_id", targetUserID),
			slog.String("foundation_id", foundationID))
		return err
	}

	s.LogInfo(ctx, "User added to foundation successfully",
		slog.String("target_user_id", targetUserID),
		slog.String("foundation_id", foundationID),
		slog.String("role", string(role)))
	return nil
}

// ListFoundationMembers retrieves the members of a foundation
func (s *foundationService) ListFoundationMembers(ctx context.Context, requestingUserID string, foundationID string) ([]domain.FoundationMember, error) {
	if err := s.AuthorizeUserAction(ctx, foundationID, requestingUserID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	members, err := s.foundationRepo.ListMembers(ctx, foundationID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list foundation members",
			slog.String("foundation_id", foundationID))
		return nil, err
	}
	return members, nil
}

// AuthorizeUserAction checks if a user has required permissions for a foundation
func (s *foundationService) AuthorizeUserAction(ctx context.Context, foundationID string, userID string, requiredRole domain.FoundationRole) error {
	membership, err := s.foundationRepo.FindMemberRole(ctx, foundationID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of foundation",
				slog.String("user_id", userID),
				slog.String("foundation_id", foundationID))
			return apperrors.ErrForbidden
		}
		s.LogError(ctx, err, "Failed to find user foundation role",
			slog.String("user_id", userID),
			slog.String("foundation_id", foundationID))
		return err
	}

	if !hasRequiredRole(membership.Role, requiredRole) {
		s.LogDebug(ctx, "User does not have required role",
			slog.String("user_id", userID),
			slog.String("foundation_id", foundationID),
			slog.String("user_role", string(membership.Role)),
			slog.String("required_role", string(requiredRole)))
		return apperrors.ErrForbidden
	}

	return nil
}

// hasRequiredRole checks if the user's role meets or exceeds the required role
func hasRequiredRole(userRole, requiredRole domain.FoundationRole) bool {
	switch requiredRole {
	case domain.RoleReadOnly:
		return userRole == domain.RoleReadOnly || userRole == domain.RoleMember || userRole == domain.RoleAdmin
	case domain.RoleMember:
		return userRole == domain.RoleMember || userRole == domain.RoleAdmin
	case domain.RoleAdmin:
		return userRole == domain.RoleAdmin
	default:
		return false
	}
}
