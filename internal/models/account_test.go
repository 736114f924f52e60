package models

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func validAccount() Account {
	return Account{
		OwnerID:              uuid.New(),
		AccountNumber:        GenerateAccountNumber(),
		AccountName:          gofakeit.Name(),
		AccountType:          AccountTypeSavings,
		Balance:              decimal.Zero,
		Status:               AccountStatusActive,
		DailyWithdrawalLimit: decimal.NewFromInt(500000),
		DailyTransferLimit:   decimal.NewFromInt(1000000),
	}
}

func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *Account)
		wantErr error
		errMsg  string
	}{
		{
			name:   "valid account",
			mutate: func(a *Account) {},
		},
		{
			name:   "missing owner",
			mutate: func(a *Account) { a.OwnerID = uuid.Nil },
			errMsg: "owner ID is required",
		},
		{
			name:   "blank name",
			mutate: func(a *Account) { a.AccountName = "   " },
			errMsg: "account name is required",
		},
		{
			name:   "lower-case account number",
			mutate: func(a *Account) { a.AccountNumber = "abcdef0123456789abcd" },
			errMsg: "account number must be 20 upper-case hexadecimal characters",
		},
		{
			name:    "unknown type",
			mutate:  func(a *Account) { a.AccountType = "Crypto" },
			wantErr: ErrInvalidAccountType,
		},
		{
			name:    "unknown status",
			mutate:  func(a *Account) { a.Status = "active" },
			wantErr: ErrInvalidAccountStatus,
		},
		{
			name:    "negative balance",
			mutate:  func(a *Account) { a.Balance = decimal.NewFromInt(-1) },
			wantErr: ErrInvalidBalance,
		},
		{
			name:    "negative limit",
			mutate:  func(a *Account) { a.DailyTransferLimit = decimal.NewFromInt(-1) },
			wantErr: ErrInvalidLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := validAccount()
			tt.mutate(&account)

			err := account.Validate()
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				assert.EqualError(t, err, tt.errMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestAccount_StatusGates(t *testing.T) {
	tests := []struct {
		status  string
		credits bool
		debits  bool
	}{
		{AccountStatusActive, true, true},
		{AccountStatusDormant, true, false},
		{AccountStatusPending, true, false},
		{AccountStatusFrozen, false, false},
		{AccountStatusSuspended, false, false},
		{AccountStatusClosed, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			account := Account{Status: tt.status}
			assert.Equal(t, tt.credits, account.AcceptsCredits())
			assert.Equal(t, tt.debits, account.AcceptsDebits())
		})
	}
}

func TestAccount_CanTransitionTo(t *testing.T) {
	account := Account{Status: AccountStatusActive}
	assert.True(t, account.CanTransitionTo(AccountStatusFrozen))
	assert.True(t, account.CanTransitionTo(AccountStatusDormant))
	assert.False(t, account.CanTransitionTo(AccountStatusClosed))
	assert.False(t, account.CanTransitionTo("bogus"))

	closed := Account{Status: AccountStatusClosed}
	assert.False(t, closed.CanTransitionTo(AccountStatusActive))
}

func TestAccount_Close(t *testing.T) {
	now := time.Now().UTC()

	account := Account{Status: AccountStatusActive, Balance: decimal.RequireFromString("0.01")}
	assert.ErrorIs(t, account.Close(now), ErrNonZeroBalance)
	assert.Equal(t, AccountStatusActive, account.Status)

	account.Balance = decimal.Zero
	require.NoError(t, account.Close(now))
	assert.Equal(t, AccountStatusClosed, account.Status)
	require.NotNil(t, account.ClosedAt)
	assert.Equal(t, now, *account.ClosedAt)

	assert.ErrorIs(t, account.Close(now), ErrAccountAlreadyClosed)
}

func TestGenerateAccountNumber(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		number := GenerateAccountNumber()
		require.Len(t, number, AccountNumberLength)
		require.True(t, ValidateAccountNumber(number), number)
		_, dup := seen[number]
		require.False(t, dup)
		seen[number] = struct{}{}
	}
}

func TestValidateAccountNumber(t *testing.T) {
	assert.True(t, ValidateAccountNumber("0123456789ABCDEF0123"))
	assert.False(t, ValidateAccountNumber("0123456789ABCDEF012"))
	assert.False(t, ValidateAccountNumber("0123456789ABCDEF012G"))
	assert.False(t, ValidateAccountNumber("0123456789abcdef0123"))
	assert.False(t, ValidateAccountNumber(""))
}

type AccountTestSuite struct {
	suite.Suite
	db *gorm.DB
}

func (s *AccountTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(&Account{}))
	s.db = db
}

func (s *AccountTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func TestAccountTestSuite(t *testing.T) {
	suite.Run(t, new(AccountTestSuite))
}

func (s *AccountTestSuite) TestBeforeCreate_AppliesDefaults() {
	account := &Account{
		OwnerID:     uuid.New(),
		AccountName: gofakeit.Company(),
		AccountType: AccountTypeBusiness,
	}

	s.Require().NoError(s.db.Create(account).Error)

	s.NotEqual(uuid.Nil, account.ID)
	s.True(ValidateAccountNumber(account.AccountNumber))
	s.Equal(AccountStatusPending, account.Status)
	s.Equal("XAF", account.Currency)
	s.Equal(int64(1), account.Version)
	s.False(account.OpenedAt.IsZero())

	var loaded Account
	s.Require().NoError(s.db.First(&loaded, "id = ?", account.ID).Error)
	s.Equal(account.AccountNumber, loaded.AccountNumber)
	s.True(loaded.Balance.IsZero())
}

func (s *AccountTestSuite) TestBeforeCreate_RejectsInvalid() {
	account := &Account{
		OwnerID:     uuid.New(),
		AccountName: gofakeit.Name(),
		AccountType: "Crypto",
	}

	err := s.db.Create(account).Error
	s.ErrorIs(err, ErrInvalidAccountType)
}

func (s *AccountTestSuite) TestAccountNumber_Unique() {
	first := validAccount()
	s.Require().NoError(s.db.Create(&first).Error)

	second := validAccount()
	second.AccountNumber = first.AccountNumber
	s.Error(s.db.Create(&second).Error)
}
