package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stiftly/foundation_ledger_app/internal/apperrors"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	portsrepo "github.com/stiftly/foundation_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/stiftly/foundation_ledger_app/internal/core/ports/services"
	"github.com/stiftly/foundation_ledger_app/internal/core/services"
	"github.com/stiftly/foundation_ledger_app/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock FoundationRepository ---
type MockFoundationRepository struct {
	mock.Mock
}

var _ portsrepo.FoundationRepositoryWithTx = (*MockFoundationRepository)(nil)

func (m *MockFoundationRepository) FindFoundationByID(ctx context.Context, foundationID string) (*domain.Foundation, error) {
	args := m.Called(ctx, foundationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Foundation), args.Error(1)
}

func (m *MockFoundationRepository) ListFoundationsByUserID(ctx context.Context, userID string) ([]domain.Foundation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Foundation), args.Error(1)
}

func (m *MockFoundationRepository) SaveFoundation(ctx context.Context, foundation domain.Foundation) error {
	args := m.Called(ctx, foundation)
	return args.Error(0)
}

func (m *MockFoundationRepository) UpdateFoundation(ctx context.Context, foundation domain.Foundation) error {
	args := m.Called(ctx, foundation)
	return args.Error(0)
}

func (m *MockFoundationRepository) AddMember(ctx context.Context, membership domain.FoundationMember) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockFoundationRepository) FindMemberRole(ctx context.Context, foundationID string, userID string) (*domain.FoundationMember, error) {
	args := m.Called(ctx, foundationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FoundationMember), args.Error(1)
}

func (m *MockFoundationRepository) ListMembers(ctx context.Context, foundationID string) ([]domain.FoundationMember, error) {
	args := m.Called(ctx, foundationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FoundationMember), args.Error(1)
}

func (m *MockFoundationRepository) UpdateMemberRole(ctx context.Context, foundationID string, userID string, role domain.FoundationRole) error {
	args := m.Called(ctx, foundationID, userID, role)
	return args.Error(0)
}

func (m *MockFoundationRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockFoundationRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockFoundationRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Test Suite Setup ---
type FoundationServiceTestSuite struct {
	suite.Suite
	mockFoundationRepo *MockFoundationRepository
	mockChartSvc       *MockAccountService
	service            portssvc.FoundationSvcFacade
	foundationID       string
	creatorID          string
}

func (suite *FoundationServiceTestSuite) SetupTest() {
	suite.mockFoundationRepo = new(MockFoundationRepository)
	suite.mockChartSvc = new(MockAccountService)

	svc := services.NewFoundationService(suite.mockFoundationRepo)
	svc.AttachChartBootstrap(suite.mockChartSvc)
	suite.service = svc

	suite.foundationID = uuid.NewString()
	suite.creatorID = uuid.NewString()
}

func (suite *FoundationServiceTestSuite) memberWithRole(role domain.FoundationRole) *domain.FoundationMember {
	return &domain.FoundationMember{
		UserID:       suite.creatorID,
		FoundationID: suite.foundationID,
		Role:         role,
	}
}

// --- Test Cases ---

func (suite *FoundationServiceTestSuite) TestCreateFoundation_Success() {
	ctx := context.Background()
	currency := "SEK"
	req := dto.CreateFoundationRequest{
		Name:                "Stiftelsen Framtiden",
		OrgNumber:           "802481-1234",
		DefaultCurrencyCode: &currency,
	}

	suite.mockFoundationRepo.On("SaveFoundation", ctx, mock.MatchedBy(func(f domain.Foundation) bool {
		return f.Name == req.Name && f.IsActive && f.CreatedBy == suite.creatorID
	})).Return(nil).Once()
	suite.mockFoundationRepo.On("AddMember", ctx, mock.MatchedBy(func(m domain.FoundationMember) bool {
		return m.UserID == suite.creatorID && m.Role == domain.RoleAdmin
	})).Return(nil).Once()
	suite.mockChartSvc.On("BootstrapChartOfAccounts", ctx, mock.AnythingOfType("string"), suite.creatorID).
		Return(24, nil).Once()

	foundation, err := suite.service.CreateFoundation(ctx, req, suite.creatorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(foundation)
	suite.Equal(req.Name, foundation.Name)
	suite.True(foundation.IsActive)
	suite.mockFoundationRepo.AssertExpectations(suite.T())
	suite.mockChartSvc.AssertExpectations(suite.T())
}

func (suite *FoundationServiceTestSuite) TestCreateFoundation_BootstrapFailure() {
	ctx := context.Background()
	req := dto.CreateFoundationRequest{Name: "Stiftelsen Framtiden"}

	suite.mockFoundationRepo.On("SaveFoundation", ctx, mock.AnythingOfType("domain.Foundation")).Return(nil).Once()
	suite.mockFoundationRepo.On("AddMember", ctx, mock.AnythingOfType("domain.FoundationMember")).Return(nil).Once()
	suite.mockChartSvc.On("BootstrapChartOfAccounts", ctx, mock.AnythingOfType("string"), suite.creatorID).
		Return(0, errors.New("connection reset")).Once()

	_, err := suite.service.CreateFoundation(ctx, req, suite.creatorID)

	suite.Require().Error(err)
}

func (suite *FoundationServiceTestSuite) TestAddUserToFoundation_SelfBootstrap() {
	ctx := context.Background()

	// The creator adding themselves never consults membership.
	suite.mockFoundationRepo.On("AddMember", ctx, mock.MatchedBy(func(m domain.FoundationMember) bool {
		return m.UserID == suite.creatorID && m.Role == domain.RoleAdmin && !m.JoinedAt.IsZero()
	})).Return(nil).Once()

	err := suite.service.AddUserToFoundation(ctx, suite.creatorID, suite.foundationID, suite.creatorID, domain.RoleAdmin)

	suite.Require().NoError(err)
	suite.mockFoundationRepo.AssertNotCalled(suite.T(), "FindMemberRole", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FoundationServiceTestSuite) TestAddUserToFoundation_RequiresAdmin() {
	ctx := context.Background()
	targetID := uuid.NewString()

	suite.mockFoundationRepo.On("FindMemberRole", ctx, suite.foundationID, suite.creatorID).
		Return(suite.memberWithRole(domain.RoleMember), nil).Once()

	err := suite.service.AddUserToFoundation(ctx, suite.creatorID, suite.foundationID, targetID, domain.RoleMember)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockFoundationRepo.AssertNotCalled(suite.T(), "AddMember", mock.Anything, mock.Anything)
}

func (suite *FoundationServiceTestSuite) TestAddUserToFoundation_AdminAddsMember() {
	ctx := context.Background()
	targetID := uuid.NewString()

	suite.mockFoundationRepo.On("FindMemberRole", ctx, suite.foundationID, suite.creatorID).
		Return(suite.memberWithRole(domain.RoleAdmin), nil).Once()
	suite.mockFoundationRepo.On("AddMember", ctx, mock.MatchedBy(func(m domain.FoundationMember) bool {
		return m.UserID == targetID && m.Role == domain.RoleReadOnly
	})).Return(nil).Once()

	err := suite.service.AddUserToFoundation(ctx, suite.creatorID, suite.foundationID, targetID, domain.RoleReadOnly)

	suite.Require().NoError(err)
	suite.mockFoundationRepo.AssertExpectations(suite.T())
}

func (suite *FoundationServiceTestSuite) TestAuthorizeUserAction_RoleHierarchy() {
	ctx := context.Background()

	cases := []struct {
		name         string
		userRole     domain.FoundationRole
		requiredRole domain.FoundationRole
		allowed      bool
	}{
		{"readonly can read", domain.RoleReadOnly, domain.RoleReadOnly, true},
		{"readonly cannot write", domain.RoleReadOnly, domain.RoleMember, false},
		{"member can read", domain.RoleMember, domain.RoleReadOnly, true},
		{"member can write", domain.RoleMember, domain.RoleMember, true},
		{"member cannot administer", domain.RoleMember, domain.RoleAdmin, false},
		{"admin can do everything", domain.RoleAdmin, domain.RoleAdmin, true},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			suite.mockFoundationRepo.On("FindMemberRole", ctx, suite.foundationID, suite.creatorID).
				Return(suite.memberWithRole(tc.userRole), nil).Once()

			err := suite.service.AuthorizeUserAction(ctx, suite.foundationID, suite.creatorID, tc.requiredRole)

			if tc.allowed {
				suite.NoError(err)
			} else {
				suite.ErrorIs(err, apperrors.ErrForbidden)
			}
		})
	}
}

func (suite *FoundationServiceTestSuite) TestAuthorizeUserAction_NonMember() {
	ctx := context.Background()
	suite.mockFoundationRepo.On("FindMemberRole", ctx, suite.foundationID, suite.creatorID).
		Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.AuthorizeUserAction(ctx, suite.foundationID, suite.creatorID, domain.RoleReadOnly)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *FoundationServiceTestSuite) TestUpdateFoundation_NoChanges() {
	ctx := context.Background()
	existing := &domain.Foundation{FoundationID: suite.foundationID, Name: "Stiftelsen Framtiden"}

	suite.mockFoundationRepo.On("FindMemberRole", ctx, suite.foundationID, suite.creatorID).
		Return(suite.memberWithRole(domain.RoleAdmin), nil).Once()
	suite.mockFoundationRepo.On("FindFoundationByID", ctx, suite.foundationID).Return(existing, nil).Once()

	foundation, err := suite.service.UpdateFoundation(ctx, suite.foundationID, dto.UpdateFoundationRequest{}, suite.creatorID)

	suite.Require().NoError(err)
	suite.Equal("Stiftelsen Framtiden", foundation.Name)
	suite.mockFoundationRepo.AssertNotCalled(suite.T(), "UpdateFoundation", mock.Anything, mock.Anything)
}

func (suite *FoundationServiceTestSuite) TestUpdateFoundation_PartialUpdate() {
	ctx := context.Background()
	existing := &domain.Foundation{FoundationID: suite.foundationID, Name: "Old Name", IsActive: true}
	newName := "New Name"

	suite.mockFoundationRepo.On("FindMemberRole", ctx, suite.foundationID, suite.creatorID).
		Return(suite.memberWithRole(domain.RoleAdmin), nil).Once()
	suite.mockFoundationRepo.On("FindFoundationByID", ctx, suite.foundationID).Return(existing, nil).Once()
	suite.mockFoundationRepo.On("UpdateFoundation", ctx, mock.MatchedBy(func(f domain.Foundation) bool {
		return f.Name == newName && f.LastUpdatedBy == suite.creatorID
	})).Return(nil).Once()

	foundation, err := suite.service.UpdateFoundation(ctx, suite.foundationID, dto.UpdateFoundationRequest{Name: &newName}, suite.creatorID)

	suite.Require().NoError(err)
	suite.Equal(newName, foundation.Name)
	suite.mockFoundationRepo.AssertExpectations(suite.T())
}

func (suite *FoundationServiceTestSuite) TestListUserFoundations_NilBecomesEmpty() {
	ctx := context.Background()
	suite.mockFoundationRepo.On("ListFoundationsByUserID", ctx, suite.creatorID).
		Return(nil, nil).Once()

	foundations, err := suite.service.ListUserFoundations(ctx, suite.creatorID)

	suite.Require().NoError(err)
	suite.NotNil(foundations)
	suite.Empty(foundations)
}

func TestFoundationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FoundationServiceTestSuite))
}
