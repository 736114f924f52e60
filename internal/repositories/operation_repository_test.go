package repositories

import (
	"context"
	"testing"

	"banking-ledger/internal/database"
	"banking-ledger/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type OperationRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo OperationRepositoryInterface
	ctx  context.Context
}

func (s *OperationRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewOperationRepository(s.db.DB)
	s.ctx = context.Background()
}

func (s *OperationRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestOperationRepositorySuite(t *testing.T) {
	suite.Run(t, new(OperationRepositorySuite))
}

func (s *OperationRepositorySuite) TestCreateAndGet() {
	source := uuid.New()
	destination := uuid.New()
	operation := &models.Operation{
		OperationType:        models.OperationTypeTransfer,
		SourceAccountID:      &source,
		DestinationAccountID: &destination,
		Amount:               decimal.RequireFromString("1000.00"),
		Fee:                  decimal.RequireFromString("100.00"),
		Description:          gofakeit.Sentence(4),
	}

	s.Require().NoError(s.repo.Create(s.ctx, operation))
	s.NotEqual(uuid.Nil, operation.ID)
	s.Equal(models.OperationStatusCompleted, operation.Status)

	loaded, err := s.repo.GetByID(s.ctx, operation.ID)
	s.Require().NoError(err)
	s.Equal(models.OperationTypeTransfer, loaded.OperationType)
	s.Require().NotNil(loaded.SourceAccountID)
	s.Equal(source, *loaded.SourceAccountID)
	s.True(decimal.RequireFromString("100").Equal(loaded.Fee))
}

func (s *OperationRepositorySuite) TestCreate_Invalid() {
	s.Error(s.repo.Create(s.ctx, nil))

	operation := &models.Operation{
		OperationType: models.OperationTypeWithdrawal,
		Amount:        decimal.NewFromInt(1),
		Description:   "missing source",
	}
	s.Error(s.repo.Create(s.ctx, operation))
}

func (s *OperationRepositorySuite) TestGetByID_NotFound() {
	_, err := s.repo.GetByID(s.ctx, uuid.New())
	s.ErrorIs(err, ErrOperationNotFound)
}
