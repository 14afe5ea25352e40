package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stiftly/foundation_ledger_app/internal/apperrors"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	portsrepo "github.com/stiftly/foundation_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/stiftly/foundation_ledger_app/internal/core/ports/services"
	"github.com/stiftly/foundation_ledger_app/internal/core/services"
	"github.com/stiftly/foundation_ledger_app/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryWithTx = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByNumber(ctx context.Context, foundationID string, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, foundationID, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsByFoundation(ctx context.Context, foundationID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, foundationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveAccountsIgnoreDuplicates(ctx context.Context, accounts []domain.Account) (int, error) {
	args := m.Called(ctx, accounts)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockAccountRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Test Suite Setup ---
type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo    *MockAccountRepository
	mockFoundationRepo *MockFoundationRepository
	mockAuthorizer     *MockFoundationAuthorizer
	service            portssvc.AccountSvcFacade
	foundationID       string
	userID             string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockFoundationRepo = new(MockFoundationRepository)
	suite.mockAuthorizer = new(MockFoundationAuthorizer)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockFoundationRepo, suite.mockAuthorizer)

	suite.foundationID = uuid.NewString()
	suite.userID = uuid.NewString()
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountNumber: "1935",
		Name:          "Project bank account",
		AccountType:   domain.Asset,
		CurrencyCode:  "SEK",
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleAdmin).Return(nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.AccountNumber == "1935" && a.IsActive && a.Balance.IsZero() && a.FoundationID == suite.foundationID
	})).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.foundationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("1935", account.AccountNumber)
	suite.True(account.Balance.IsZero())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateNumber() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{AccountNumber: "1930", Name: "Bank account", AccountType: domain.Asset, CurrencyCode: "SEK"}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleAdmin).Return(nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateAccount(ctx, suite.foundationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_RequiresAdmin() {
	ctx := context.Background()
	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.CreateAccount(ctx, suite.foundationID, dto.CreateAccountRequest{}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_WrongFoundation() {
	ctx := context.Background()
	account := &domain.Account{AccountID: uuid.NewString(), FoundationID: uuid.NewString()}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	_, err := suite.service.GetAccountByID(ctx, suite.foundationID, account.AccountID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestGetAccountsByIDs_RejectsForeignAccount() {
	ctx := context.Background()
	foreignID := uuid.NewString()
	accounts := map[string]domain.Account{
		foreignID: {AccountID: foreignID, FoundationID: uuid.NewString()},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{foreignID}).Return(accounts, nil).Once()

	_, err := suite.service.GetAccountsByIDs(ctx, suite.foundationID, []string{foreignID}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_Success() {
	ctx := context.Background()
	account := &domain.Account{AccountID: uuid.NewString(), FoundationID: suite.foundationID, IsActive: true}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleAdmin).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("DeactivateAccount", ctx, account.AccountID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.foundationID, account.AccountID, suite.userID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_MutableFieldsOnly() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:     uuid.NewString(),
		FoundationID:  suite.foundationID,
		AccountNumber: "1930",
		Name:          "Bank account",
		AccountType:   domain.Asset,
		CurrencyCode:  "SEK",
		IsActive:      true,
	}
	newName := "Main bank account"

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleAdmin).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Name == newName && a.AccountNumber == "1930" && a.AccountType == domain.Asset
	})).Return(nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, suite.foundationID, account.AccountID, dto.UpdateAccountRequest{Name: &newName}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(newName, updated.Name)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestBootstrapChart_UsesFoundationCurrency() {
	ctx := context.Background()
	currency := "EUR"
	foundation := &domain.Foundation{FoundationID: suite.foundationID, DefaultCurrencyCode: &currency}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleAdmin).Return(nil).Once()
	suite.mockFoundationRepo.On("FindFoundationByID", ctx, suite.foundationID).Return(foundation, nil).Once()
	suite.mockAccountRepo.On("SaveAccountsIgnoreDuplicates", ctx, mock.MatchedBy(func(accounts []domain.Account) bool {
		if len(accounts) == 0 {
			return false
		}
		for _, a := range accounts {
			if a.CurrencyCode != "EUR" || !a.IsActive || !a.Balance.IsZero() || a.FoundationID != suite.foundationID {
				return false
			}
		}
		return true
	})).Return(26, nil).Once()

	created, err := suite.service.BootstrapChartOfAccounts(ctx, suite.foundationID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(26, created)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestBootstrapChart_FallsBackToSEK() {
	ctx := context.Background()
	foundation := &domain.Foundation{FoundationID: suite.foundationID}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleAdmin).Return(nil).Once()
	suite.mockFoundationRepo.On("FindFoundationByID", ctx, suite.foundationID).Return(foundation, nil).Once()
	suite.mockAccountRepo.On("SaveAccountsIgnoreDuplicates", ctx, mock.MatchedBy(func(accounts []domain.Account) bool {
		for _, a := range accounts {
			if a.CurrencyCode != "SEK" {
				return false
			}
		}
		return len(accounts) > 0
	})).Return(26, nil).Once()

	_, err := suite.service.BootstrapChartOfAccounts(ctx, suite.foundationID, suite.userID)

	suite.Require().NoError(err)
}

func (suite *AccountServiceTestSuite) TestBootstrapChart_SecondRunCreatesNothing() {
	ctx := context.Background()
	foundation := &domain.Foundation{FoundationID: suite.foundationID}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleAdmin).Return(nil).Once()
	suite.mockFoundationRepo.On("FindFoundationByID", ctx, suite.foundationID).Return(foundation, nil).Once()
	// Every account number already exists, so nothing is inserted.
	suite.mockAccountRepo.On("SaveAccountsIgnoreDuplicates", ctx, mock.AnythingOfType("[]domain.Account")).Return(0, nil).Once()

	created, err := suite.service.BootstrapChartOfAccounts(ctx, suite.foundationID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(0, created)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
