package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"banking-ledger/internal/database"
	"banking-ledger/internal/dto"
	"banking-ledger/internal/models"
	"banking-ledger/internal/money"
	"banking-ledger/internal/policy"
	"banking-ledger/internal/repositories"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ledgerFixture wires the services to an in-memory database.
type ledgerFixture struct {
	db         *database.DB
	policy     *policy.Policy
	registry   *prometheus.Registry
	metrics    MetricsRecorderInterface
	audit      AuditLoggerInterface
	breaker    CircuitBreakerInterface
	guard      *StoreGuard
	engine     TransactionEngineInterface
	accounts   AccountServiceInterface
	reconciler ReconciliationServiceInterface
}

func newLedgerFixture(t *testing.T, pol *policy.Policy) *ledgerFixture {
	t.Helper()
	return newLedgerFixtureOn(t, database.SetupTestDB(t), pol, 0)
}

// newLedgerFixtureOn wires the services to db. lockTimeout is handed to the unit of
// work; sqlite ignores it.
func newLedgerFixtureOn(t *testing.T, db *database.DB, pol *policy.Policy, lockTimeout time.Duration) *ledgerFixture {
	t.Helper()

	if pol == nil {
		pol = policy.Default()
	}

	f := &ledgerFixture{
		db:       db,
		policy:   pol,
		registry: prometheus.NewRegistry(),
		breaker:  NewCircuitBreaker(DefaultCircuitBreakerConfig()),
	}
	f.metrics = NewPrometheusMetrics(f.registry)
	f.audit = NewAuditLogger(discardLogger())
	f.guard = NewStoreGuard(repositories.NewUnitOfWork(f.db.DB, lockTimeout), f.breaker, f.metrics, f.audit, 5*time.Second)
	f.engine = NewTransactionEngine(f.guard, pol, f.metrics, f.audit, discardLogger())
	f.accounts = NewAccountService(f.guard, pol, f.metrics, f.audit, discardLogger(), models.AccountStatusPending)
	f.reconciler = NewReconciliationService(f.guard, f.metrics, f.audit)

	t.Cleanup(func() { database.CleanupTestDB(t, f.db) })
	return f
}

// openAccount stores a zero-balance account carrying the policy defaults for its type.
func (f *ledgerFixture) openAccount(t *testing.T, accountType, status string) *models.Account {
	t.Helper()

	limits, err := f.policy.ForAccountType(accountType)
	require.NoError(t, err)

	account := &models.Account{
		OwnerID:              uuid.New(),
		AccountName:          gofakeit.Name(),
		AccountType:          accountType,
		Status:               status,
		InterestRate:         limits.InterestRate,
		DailyWithdrawalLimit: limits.DailyWithdrawalLimit,
		DailyTransferLimit:   limits.DailyTransferLimit,
	}
	require.NoError(t, repositories.NewAccountRepository(f.db.DB).Create(context.Background(), account))
	return account
}

func (f *ledgerFixture) deposit(t *testing.T, account *models.Account, amount string) {
	t.Helper()

	_, err := f.engine.Deposit(context.Background(), dto.DepositRequest{
		AccountNumber: account.AccountNumber,
		Amount:        money.MustParse(amount),
	})
	require.NoError(t, err)
}

func (f *ledgerFixture) reload(t *testing.T, account *models.Account) *models.Account {
	t.Helper()

	fresh, err := repositories.NewAccountRepository(f.db.DB).GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	return fresh
}

func (f *ledgerFixture) entries(t *testing.T, account *models.Account) []models.Transaction {
	t.Helper()

	entries, err := repositories.NewLedgerRepository(f.db.DB).ListAllForAccount(context.Background(), account.ID)
	require.NoError(t, err)
	return entries
}

// requireConsistent checks that replaying the ledger gives the stored balance.
func (f *ledgerFixture) requireConsistent(t *testing.T, account *models.Account) {
	t.Helper()

	replayed, discrepancies := ReplayLedger(f.entries(t, account))
	require.Empty(t, discrepancies)
	require.True(t, replayed.Equal(f.reload(t, account).Balance),
		"replayed %s, stored %s", replayed, f.reload(t, account).Balance)
}
