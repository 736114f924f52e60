package services

import (
	"context"
	"time"

	"banking-ledger/internal/dto"
	"banking-ledger/internal/models"

	"github.com/google/uuid"
)

// TransactionEngineInterface applies deposits, withdrawals and transfers. Each call is
// atomic: on error no entry is written and no balance changes.
type TransactionEngineInterface interface {
	Deposit(ctx context.Context, req dto.DepositRequest) (*models.Transaction, error)
	Withdraw(ctx context.Context, req dto.WithdrawRequest) (*WithdrawalResult, error)
	Transfer(ctx context.Context, req dto.TransferRequest) (*TransferResult, error)
}

// AccountServiceInterface defines account-related business operations
type AccountServiceInterface interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*models.Account, error)
	GetAccountByNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	GetOwnerAccounts(ctx context.Context, ownerID uuid.UUID) ([]models.Account, error)
	UpdateAccountStatus(ctx context.Context, accountNumber, status string) (*models.Account, error)
	UpdateLimits(ctx context.Context, accountNumber string, req dto.UpdateLimitsRequest) (*models.Account, error)
	CloseAccount(ctx context.Context, accountNumber string) (*models.Account, error)
	GetLedger(ctx context.Context, accountNumber string, offset, limit int) (*dto.LedgerPageResponse, error)
}

// ReconciliationServiceInterface replays an account's ledger against its stored balance.
type ReconciliationServiceInterface interface {
	Reconcile(ctx context.Context, accountNumber string) (*ReconciliationReport, error)
}

// MetricsRecorderInterface records operational metrics
type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

// AuditLoggerInterface writes structured ledger events
type AuditLoggerInterface interface {
	LogOperationCompleted(ctx context.Context, operationID uuid.UUID, operation string, durationMs int64)
	LogOperationRejected(ctx context.Context, operation, reason, errorMsg string, durationMs int64)
	LogBalanceUpdate(ctx context.Context, accountID uuid.UUID, oldBalance, newBalance string, operationID uuid.UUID)
	LogAccountCreated(ctx context.Context, accountID uuid.UUID, accountNumber, accountType string)
	LogAccountStatusChange(ctx context.Context, accountID uuid.UUID, oldStatus, newStatus string)
	LogLimitsUpdate(ctx context.Context, accountID uuid.UUID, withdrawalLimit, transferLimit string)
	LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string)
	LogReconciliationMismatch(ctx context.Context, accountID uuid.UUID, storedBalance, replayedBalance string, discrepancies int)
}

// CircuitBreakerInterface guards the ledger store
type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() CircuitBreakerState
	Reset()
	GetFailureCount() int
}
