package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"banking-ledger/internal/database"
	"banking-ledger/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type UnitOfWorkSuite struct {
	suite.Suite
	db  *database.DB
	uow UnitOfWork
	ctx context.Context
}

func (s *UnitOfWorkSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.uow = NewUnitOfWork(s.db.DB, time.Second)
	s.ctx = context.Background()
}

func (s *UnitOfWorkSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestUnitOfWorkSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkSuite))
}

func (s *UnitOfWorkSuite) seedAccount() *models.Account {
	account := &models.Account{
		OwnerID:     uuid.New(),
		AccountName: gofakeit.Name(),
		AccountType: models.AccountTypeSavings,
		Status:      models.AccountStatusActive,
	}
	s.Require().NoError(NewAccountRepository(s.db.DB).Create(s.ctx, account))
	return account
}

// credit performs a deposit-shaped write through the stores.
func credit(ctx context.Context, stores Stores, accountID uuid.UUID, amount decimal.Decimal) error {
	account, err := stores.Accounts.GetForUpdate(ctx, accountID)
	if err != nil {
		return err
	}

	operation := &models.Operation{
		OperationType:        models.OperationTypeDeposit,
		DestinationAccountID: &account.ID,
		Amount:               amount,
		Description:          "credit",
	}
	if err := stores.Operations.Create(ctx, operation); err != nil {
		return err
	}

	before := account.Balance
	account.Balance = before.Add(amount)
	if err := stores.Accounts.Update(ctx, account); err != nil {
		return err
	}

	return stores.Ledger.Append(ctx, &models.Transaction{
		OperationID:     operation.ID,
		AccountID:       account.ID,
		TransactionType: models.TransactionTypeDeposit,
		Amount:          amount,
		BalanceBefore:   before,
		BalanceAfter:    account.Balance,
		Description:     "credit",
	})
}

func (s *UnitOfWorkSuite) TestDo_Commits() {
	account := s.seedAccount()

	err := s.uow.Do(s.ctx, func(ctx context.Context, stores Stores) error {
		return credit(ctx, stores, account.ID, decimal.NewFromInt(50))
	})
	s.Require().NoError(err)

	stores := NewStores(s.db.DB)
	reloaded, err := stores.Accounts.GetByID(s.ctx, account.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(50).Equal(reloaded.Balance))

	entries, err := stores.Ledger.ListAllForAccount(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *UnitOfWorkSuite) TestDo_RollsBackEverythingOnError() {
	account := s.seedAccount()
	boom := errors.New("boom")

	err := s.uow.Do(s.ctx, func(ctx context.Context, stores Stores) error {
		if err := credit(ctx, stores, account.ID, decimal.NewFromInt(50)); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	stores := NewStores(s.db.DB)
	reloaded, err := stores.Accounts.GetByID(s.ctx, account.ID)
	s.Require().NoError(err)
	s.True(reloaded.Balance.IsZero())
	s.Equal(int64(1), reloaded.Version)

	entries, err := stores.Ledger.ListAllForAccount(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Empty(entries)

	var operations int64
	s.Require().NoError(s.db.Model(&models.Operation{}).Count(&operations).Error)
	s.Zero(operations)
}

func (s *UnitOfWorkSuite) TestDo_CancelledContextNeverStarts() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	called := false
	err := s.uow.Do(ctx, func(ctx context.Context, stores Stores) error {
		called = true
		return nil
	})

	s.ErrorIs(err, context.Canceled)
	s.False(called)
}

func (s *UnitOfWorkSuite) TestDo_CancelMidwayRollsBack() {
	account := s.seedAccount()
	ctx, cancel := context.WithCancel(s.ctx)

	err := s.uow.Do(ctx, func(ctx context.Context, stores Stores) error {
		if err := credit(ctx, stores, account.ID, decimal.NewFromInt(10)); err != nil {
			return err
		}
		cancel()
		return ctx.Err()
	})
	s.ErrorIs(err, context.Canceled)

	reloaded, err := NewStores(s.db.DB).Accounts.GetByID(s.ctx, account.ID)
	s.Require().NoError(err)
	s.True(reloaded.Balance.IsZero())
}

func (s *UnitOfWorkSuite) TestDo_DeadlineBecomesStoreTimeout() {
	ctx, cancel := context.WithTimeout(s.ctx, time.Millisecond)
	defer cancel()

	err := s.uow.Do(ctx, func(ctx context.Context, stores Stores) error {
		<-ctx.Done()
		return ctx.Err()
	})
	s.ErrorIs(err, ErrStoreTimeout)
}

func newPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestUnitOfWork_PostgresSetsLockTimeout(t *testing.T) {
	db, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = '1500ms'")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := NewUnitOfWork(db, 1500*time.Millisecond).Do(context.Background(), func(ctx context.Context, stores Stores) error {
		return nil
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_LockNotAvailableIsConflict(t *testing.T) {
	db, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "accounts" .*FOR UPDATE`).
		WillReturnError(&pgconn.PgError{Code: "55P03", Message: "could not obtain lock on row"})
	mock.ExpectRollback()

	err := NewUnitOfWork(db, 0).Do(context.Background(), func(ctx context.Context, stores Stores) error {
		_, err := stores.Accounts.GetForUpdate(ctx, uuid.New())
		return err
	})

	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
