package services_test

import (
	"context"
	"errors"
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

// --- Mock EntryRepository ---
type MockEntryRepository struct {
	mock.Mock
}

var _ portsrepo.EntryRepositoryWithTx = (*MockEntryRepository)(nil)

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntryLine), args.Error(1)
}

func (m *MockEntryRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalEntryLine, error) {
	args := m.Called(ctx, entryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.JournalEntryLine), args.Error(1)
}

func (m *MockEntryRepository) ListEntriesByFoundation(ctx context.Context, foundationID string, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, foundationID, limit, nextToken, includeReversals)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), returnedNextToken, args.Error(2)
}

func (m *MockEntryRepository) ListLinesByAccount(ctx context.Context, foundationID string, accountID string, limit int, nextToken *string) ([]domain.JournalEntryLine, *string, error) {
	args := m.Called(ctx, foundationID, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntryLine), returnedNextToken, args.Error(2)
}

func (m *MockEntryRepository) CreateEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entry, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) MarkEntryPosted(ctx context.Context, entryID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, entryID, balanceChanges, userID, now)
	return args.Error(0)
}

func (m *MockEntryRepository) CreateReversal(ctx context.Context, originalEntryID string, reversal domain.JournalEntry, lines []domain.JournalEntryLine, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) (*domain.JournalEntry, error) {
	args := m.Called(ctx, originalEntryID, reversal, lines, balanceChanges, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockEntryRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockEntryRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) GetAccountByID(ctx context.Context, foundationID string, accountID string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, foundationID, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByNumber(ctx context.Context, foundationID string, accountNumber string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, foundationID, accountNumber, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountsByIDs(ctx context.Context, foundationID string, accountIDs []string, userID string) (map[string]domain.Account, error) {
	args := m.Called(ctx, foundationID, accountIDs, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, foundationID string, userID string, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, foundationID, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, foundationID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, foundationID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, foundationID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, foundationID, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, foundationID string, accountID string, userID string) error {
	args := m.Called(ctx, foundationID, accountID, userID)
	return args.Error(0)
}

func (m *MockAccountService) BootstrapChartOfAccounts(ctx context.Context, foundationID string, userID string) (int, error) {
	args := m.Called(ctx, foundationID, userID)
	return args.Int(0), args.Error(1)
}

// --- Mock FoundationAuthorizer ---
type MockFoundationAuthorizer struct {
	mock.Mock
}

var _ portssvc.FoundationAuthorizerSvc = (*MockFoundationAuthorizer)(nil)

func (m *MockFoundationAuthorizer) AuthorizeUserAction(ctx context.Context, foundationID string, userID string, requiredRole domain.FoundationRole) error {
	args := m.Called(ctx, foundationID, userID, requiredRole)
	return args.Error(0)
}

// --- Test Suite Setup ---
type EntryServiceTestSuite struct {
	suite.Suite
	mockEntryRepo    *MockEntryRepository
	mockAccountSvc   *MockAccountService
	mockAuthorizer   *MockFoundationAuthorizer
	service          portssvc.EntrySvcFacade
	assetAccount     domain.Account
	liabilityAccount domain.Account
	revenueAccount   domain.Account
	foundationID     string
	userID           string
}

func (suite *EntryServiceTestSuite) SetupTest() {
	suite.mockEntryRepo = new(MockEntryRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockAuthorizer = new(MockFoundationAuthorizer)
	suite.service = services.NewEntryService(suite.mockEntryRepo, suite.mockAccountSvc, suite.mockAuthorizer)

	suite.foundationID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.assetAccount = domain.Account{
		AccountID:     uuid.NewString(),
		FoundationID:  suite.foundationID,
		AccountNumber: "1930",
		AccountType:   domain.Asset,
		CurrencyCode:  "SEK",
		IsActive:      true,
	}
	suite.liabilityAccount = domain.Account{
		AccountID:     uuid.NewString(),
		FoundationID:  suite.foundationID,
		AccountNumber: "2440",
		AccountType:   domain.Liability,
		CurrencyCode:  "SEK",
		IsActive:      true,
	}
	suite.revenueAccount = domain.Account{
		AccountID:     uuid.NewString(),
		FoundationID:  suite.foundationID,
		AccountNumber: "3010",
		AccountType:   domain.Revenue,
		CurrencyCode:  "SEK",
		IsActive:      true,
	}
}

func (suite *EntryServiceTestSuite) balancedRequest() dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		Date:        time.Now(),
		Description: "Membership fees received",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.assetAccount.AccountID, DebitAmount: decimal.NewFromInt(500)},
			{AccountID: suite.revenueAccount.AccountID, CreditAmount: decimal.NewFromInt(500)},
		},
	}
}

func (suite *EntryServiceTestSuite) accountsMap(accounts ...domain.Account) map[string]domain.Account {
	m := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.AccountID] = a
	}
	return m
}

// --- Test Cases ---

func (suite *EntryServiceTestSuite) TestCreateEntry_Success() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.foundationID, mock.Anything, suite.userID).
		Return(suite.accountsMap(suite.assetAccount, suite.revenueAccount), nil).Once()

	suite.mockEntryRepo.On("CreateEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalEntryLine")).
		Run(func(args mock.Arguments) {
			entry := args.Get(1).(domain.JournalEntry)
			suite.Equal(domain.Draft, entry.Status)
			suite.True(entry.TotalDebit.Equal(decimal.NewFromInt(500)))
			suite.True(entry.TotalCredit.Equal(decimal.NewFromInt(500)))
		}).
		Return(&domain.JournalEntry{
			EntryID:      uuid.NewString(),
			FoundationID: suite.foundationID,
			EntryNumber:  "JE-2026-000001",
			Status:       domain.Draft,
			TotalDebit:   decimal.NewFromInt(500),
			TotalCredit:  decimal.NewFromInt(500),
		}, nil).Once()

	created, err := suite.service.CreateEntry(ctx, suite.foundationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.Equal("JE-2026-000001", created.EntryNumber)
	suite.Equal(domain.Draft, created.Status)
	suite.Equal(suite.foundationID, created.FoundationID)
	suite.True(created.TotalDebit.Equal(decimal.NewFromInt(500)))
	suite.True(created.TotalCredit.Equal(decimal.NewFromInt(500)))
	suite.Len(created.Lines, 2)
	suite.Equal(1, created.Lines[0].LineOrder)
	suite.Equal(2, created.Lines[1].LineOrder)

	suite.mockAuthorizer.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestCreateEntry_AuthorizationFail() {
	ctx := context.Background()
	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.CreateEntry(ctx, suite.foundationID, suite.balancedRequest(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestCreateEntry_SingleLine() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		Date:        time.Now(),
		Description: "Broken entry",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.assetAccount.AccountID, DebitAmount: decimal.NewFromInt(100)},
		},
	}
	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()

	_, err := suite.service.CreateEntry(ctx, suite.foundationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "GetAccountsByIDs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestCreateEntry_Unbalanced() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		Date:        time.Now(),
		Description: "Unbalanced entry",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.assetAccount.AccountID, DebitAmount: decimal.NewFromInt(500)},
			{AccountID: suite.revenueAccount.AccountID, CreditAmount: decimal.NewFromInt(400)},
		},
	}
	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()

	_, err := suite.service.CreateEntry(ctx, suite.foundationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "UNBALANCED")
}

func (suite *EntryServiceTestSuite) TestCreateEntry_WithinTolerance() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		Date:        time.Now(),
		Description: "Rounding residue",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.assetAccount.AccountID, DebitAmount: decimal.RequireFromString("100.00")},
			{AccountID: suite.revenueAccount.AccountID, CreditAmount: decimal.RequireFromString("99.99")},
		},
	}
	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.foundationID, mock.Anything, suite.userID).
		Return(suite.accountsMap(suite.assetAccount, suite.revenueAccount), nil).Once()
	suite.mockEntryRepo.On("CreateEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalEntryLine")).
		Return(&domain.JournalEntry{EntryID: uuid.NewString(), FoundationID: suite.foundationID, EntryNumber: "JE-2026-000002", Status: domain.Draft}, nil).Once()

	_, err := suite.service.CreateEntry(ctx, suite.foundationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestCreateEntry_MixedSides() {
	ctx := context.Background()
	req := dto.CreateEntryRequest{
		Date:        time.Now(),
		Description: "Both sides on one line",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.assetAccount.AccountID, DebitAmount: decimal.NewFromInt(100), CreditAmount: decimal.NewFromInt(100)},
			{AccountID: suite.revenueAccount.AccountID, CreditAmount: decimal.NewFromInt(100)},
		},
	}
	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()

	_, err := suite.service.CreateEntry(ctx, suite.foundationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "MIXED_SIDES")
}

func (suite *EntryServiceTestSuite) TestCreateEntry_InactiveAccount() {
	ctx := context.Background()
	inactive := suite.liabilityAccount
	inactive.IsActive = false
	req := dto.CreateEntryRequest{
		Date:        time.Now(),
		Description: "Touches inactive account",
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: suite.assetAccount.AccountID, DebitAmount: decimal.NewFromInt(100)},
			{AccountID: inactive.AccountID, CreditAmount: decimal.NewFromInt(100)},
		},
	}
	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.foundationID, mock.Anything, suite.userID).
		Return(suite.accountsMap(suite.assetAccount, inactive), nil).Once()

	_, err := suite.service.CreateEntry(ctx, suite.foundationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "CreateEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestCreateEntry_NumberingConflictRetriesThenSucceeds() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.foundationID, mock.Anything, suite.userID).
		Return(suite.accountsMap(suite.assetAccount, suite.revenueAccount), nil).Once()

	suite.mockEntryRepo.On("CreateEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalEntryLine")).
		Return(nil, apperrors.ErrNumberingConflict).Twice()
	suite.mockEntryRepo.On("CreateEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalEntryLine")).
		Return(&domain.JournalEntry{EntryID: uuid.NewString(), FoundationID: suite.foundationID, EntryNumber: "JE-2026-000003", Status: domain.Draft}, nil).Once()

	created, err := suite.service.CreateEntry(ctx, suite.foundationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("JE-2026-000003", created.EntryNumber)
	suite.mockEntryRepo.AssertNumberOfCalls(suite.T(), "CreateEntry", 3)
}

func (suite *EntryServiceTestSuite) TestCreateEntry_NumberingConflictExhausted() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.foundationID, mock.Anything, suite.userID).
		Return(suite.accountsMap(suite.assetAccount, suite.revenueAccount), nil).Once()
	suite.mockEntryRepo.On("CreateEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalEntryLine")).
		Return(nil, apperrors.ErrNumberingConflict).Times(3)

	_, err := suite.service.CreateEntry(ctx, suite.foundationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNumberingConflict)
	suite.mockEntryRepo.AssertNumberOfCalls(suite.T(), "CreateEntry", 3)
}

func (suite *EntryServiceTestSuite) TestCreateEntry_PersistenceFailureNotRetried() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.foundationID, mock.Anything, suite.userID).
		Return(suite.accountsMap(suite.assetAccount, suite.revenueAccount), nil).Once()
	suite.mockEntryRepo.On("CreateEntry", ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalEntryLine")).
		Return(nil, apperrors.NewPersistenceError("failed to insert lines", errors.New("broken pipe"))).Once()

	_, err := suite.service.CreateEntry(ctx, suite.foundationID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrPersistence)
	// Only numbering conflicts are retryable.
	suite.mockEntryRepo.AssertNumberOfCalls(suite.T(), "CreateEntry", 1)
}

func (suite *EntryServiceTestSuite) postableEntry() (*domain.JournalEntry, []domain.JournalEntryLine) {
	entryID := uuid.NewString()
	entry := &domain.JournalEntry{
		EntryID:      entryID,
		FoundationID: suite.foundationID,
		EntryNumber:  "JE-2026-000007",
		EntryDate:    time.Now(),
		Description:  "Invoice payment",
		TotalDebit:   decimal.NewFromInt(250),
		TotalCredit:  decimal.NewFromInt(250),
		Status:       domain.Draft,
	}
	lines := []domain.JournalEntryLine{
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: suite.assetAccount.AccountID, DebitAmount: decimal.NewFromInt(250), LineOrder: 1},
		{LineID: uuid.NewString(), EntryID: entryID, AccountID: suite.liabilityAccount.AccountID, CreditAmount: decimal.NewFromInt(250), LineOrder: 2},
	}
	return entry, lines
}

func (suite *EntryServiceTestSuite) TestPostEntry_Success() {
	ctx := context.Background()
	entry, lines := suite.postableEntry()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(lines, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.foundationID, mock.Anything, suite.userID).
		Return(suite.accountsMap(suite.assetAccount, suite.liabilityAccount), nil).Once()

	// Debit 250 to an asset raises it by 250; credit 250 to a liability
	// raises it by 250.
	expectedChanges := map[string]decimal.Decimal{
		suite.assetAccount.AccountID:     decimal.NewFromInt(250),
		suite.liabilityAccount.AccountID: decimal.NewFromInt(250),
	}
	suite.mockEntryRepo.On("MarkEntryPosted", ctx, entry.EntryID, mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
		if len(changes) != len(expectedChanges) {
			return false
		}
		for id, want := range expectedChanges {
			got, ok := changes[id]
			if !ok || !got.Equal(want) {
				return false
			}
		}
		return true
	}), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	posted, err := suite.service.PostEntry(ctx, suite.foundationID, entry.EntryID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Posted, posted.Status)
	suite.Require().NotNil(posted.PostedBy)
	suite.Equal(suite.userID, *posted.PostedBy)
	suite.NotNil(posted.PostedAt)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestPostEntry_AlreadyPostedConflict() {
	ctx := context.Background()
	entry, lines := suite.postableEntry()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(lines, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.foundationID, mock.Anything, suite.userID).
		Return(suite.accountsMap(suite.assetAccount, suite.liabilityAccount), nil).Once()
	suite.mockEntryRepo.On("MarkEntryPosted", ctx, entry.EntryID, mock.Anything, suite.userID, mock.AnythingOfType("time.Time")).
		Return(apperrors.NewConflictError("entry is in status POSTED, not DRAFT")).Once()

	_, err := suite.service.PostEntry(ctx, suite.foundationID, entry.EntryID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *EntryServiceTestSuite) TestPostEntry_DeadlineSurfacesAsTimeout() {
	ctx := context.Background()
	entry, lines := suite.postableEntry()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(lines, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.foundationID, mock.Anything, suite.userID).
		Return(suite.accountsMap(suite.assetAccount, suite.liabilityAccount), nil).Once()
	suite.mockEntryRepo.On("MarkEntryPosted", ctx, entry.EntryID, mock.Anything, suite.userID, mock.AnythingOfType("time.Time")).
		Return(apperrors.NewPersistenceError("failed to mark entry posted", context.DeadlineExceeded)).Once()

	_, err := suite.service.PostEntry(ctx, suite.foundationID, entry.EntryID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrTimeout)
	suite.NotErrorIs(err, apperrors.ErrPersistence)
}

func (suite *EntryServiceTestSuite) TestPostEntry_WrongFoundation() {
	ctx := context.Background()
	entry, _ := suite.postableEntry()
	entry.FoundationID = uuid.NewString()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.PostEntry(ctx, suite.foundationID, entry.EntryID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "MarkEntryPosted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestReverseEntry_Success() {
	ctx := context.Background()
	entry, lines := suite.postableEntry()
	entry.Status = domain.Posted

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(lines, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, suite.foundationID, mock.Anything, suite.userID).
		Return(suite.accountsMap(suite.assetAccount, suite.liabilityAccount), nil).Once()

	suite.mockEntryRepo.On("CreateReversal", ctx, entry.EntryID,
		mock.MatchedBy(func(reversal domain.JournalEntry) bool {
			return reversal.Status == domain.Posted &&
				reversal.OriginalEntryID != nil && *reversal.OriginalEntryID == entry.EntryID
		}),
		mock.MatchedBy(func(revLines []domain.JournalEntryLine) bool {
			// Sides are swapped relative to the original.
			return len(revLines) == 2 &&
				revLines[0].CreditAmount.Equal(lines[0].DebitAmount) &&
				revLines[1].DebitAmount.Equal(lines[1].CreditAmount)
		}),
		mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
			// Negated impact of the original posting.
			return changes[suite.assetAccount.AccountID].Equal(decimal.NewFromInt(-250)) &&
				changes[suite.liabilityAccount.AccountID].Equal(decimal.NewFromInt(-250))
		}),
		suite.userID, mock.AnythingOfType("time.Time")).
		Return(&domain.JournalEntry{
			EntryID:         uuid.NewString(),
			FoundationID:    suite.foundationID,
			EntryNumber:     "JE-2026-000008",
			Status:          domain.Posted,
			OriginalEntryID: &entry.EntryID,
		}, nil).Once()

	reversal, err := suite.service.ReverseEntry(ctx, suite.foundationID, entry.EntryID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("JE-2026-000008", reversal.EntryNumber)
	suite.Require().NotNil(reversal.OriginalEntryID)
	suite.Equal(entry.EntryID, *reversal.OriginalEntryID)
	suite.Len(reversal.Lines, 2)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestReverseEntry_DraftConflict() {
	ctx := context.Background()
	entry, lines := suite.postableEntry() // Draft status

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(lines, nil).Once()

	_, err := suite.service.ReverseEntry(ctx, suite.foundationID, entry.EntryID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "CreateReversal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestReverseEntry_OfReversalConflict() {
	ctx := context.Background()
	entry, lines := suite.postableEntry()
	entry.Status = domain.Posted
	originalID := uuid.NewString()
	entry.OriginalEntryID = &originalID

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleMember).Return(nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryID", ctx, entry.EntryID).Return(lines, nil).Once()

	_, err := suite.service.ReverseEntry(ctx, suite.foundationID, entry.EntryID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *EntryServiceTestSuite) TestListEntries_IncludeLines() {
	ctx := context.Background()
	entryA := domain.JournalEntry{EntryID: uuid.NewString(), FoundationID: suite.foundationID}
	entryB := domain.JournalEntry{EntryID: uuid.NewString(), FoundationID: suite.foundationID}
	linesByEntry := map[string][]domain.JournalEntryLine{
		entryA.EntryID: {{LineID: uuid.NewString(), EntryID: entryA.EntryID}},
		entryB.EntryID: {{LineID: uuid.NewString(), EntryID: entryB.EntryID}},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockEntryRepo.On("ListEntriesByFoundation", ctx, suite.foundationID, 50, (*string)(nil), false).
		Return([]domain.JournalEntry{entryA, entryB}, "tok-next", nil).Once()
	suite.mockEntryRepo.On("FindLinesByEntryIDs", ctx, []string{entryA.EntryID, entryB.EntryID}).
		Return(linesByEntry, nil).Once()

	entries, nextToken, err := suite.service.ListEntries(ctx, suite.foundationID, suite.userID, 0, nil, false, true)

	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)
	suite.Len(entries[0].Lines, 1)
	suite.Len(entries[1].Lines, 1)
	suite.Require().NotNil(nextToken)
	suite.Equal("tok-next", *nextToken)
}

func (suite *EntryServiceTestSuite) TestGetEntryByID_WrongFoundation() {
	ctx := context.Background()
	entry, _ := suite.postableEntry()
	entry.FoundationID = uuid.NewString()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.foundationID, suite.userID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockEntryRepo.On("FindEntryByID", ctx, entry.EntryID).Return(entry, nil).Once()

	_, err := suite.service.GetEntryByID(ctx, suite.foundationID, entry.EntryID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestEntryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EntryServiceTestSuite))
}
