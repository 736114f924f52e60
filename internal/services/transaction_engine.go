package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"banking-ledger/internal/dto"
	"banking-ledger/internal/models"
	"banking-ledger/internal/money"
	"banking-ledger/internal/policy"
	"banking-ledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	withdrawalFeeDescription = "ATM withdrawal fee"
	transferFeeDescription   = "Transfer fee"
)

// WithdrawalResult holds the entries written by one withdrawal. Fee is nil when the
// withdrawal fee is zero.
type WithdrawalResult struct {
	Withdrawal *models.Transaction `json:"withdrawal"`
	Fee        *models.Transaction `json:"fee,omitempty"`
}

// TransferResult holds the entries written by one transfer, in ledger order.
type TransferResult struct {
	TransferOut *models.Transaction `json:"transfer_out"`
	Fee         *models.Transaction `json:"fee,omitempty"`
	TransferIn  *models.Transaction `json:"transfer_in"`
}

// transactionEngine implements TransactionEngineInterface
type transactionEngine struct {
	store   *StoreGuard
	policy  *policy.Policy
	metrics MetricsRecorderInterface
	audit   AuditLoggerInterface
	logger  *slog.Logger
	now     func() time.Time
}

// NewTransactionEngine creates the engine. Fees are read from pol on every call;
// limits come from the stored account.
func NewTransactionEngine(
	store *StoreGuard,
	pol *policy.Policy,
	metrics MetricsRecorderInterface,
	audit AuditLoggerInterface,
	logger *slog.Logger,
) TransactionEngineInterface {
	return &transactionEngine{
		store:   store,
		policy:  pol,
		metrics: metrics,
		audit:   audit,
		logger:  logger,
		now:     time.Now,
	}
}

// Deposit credits an account. A dormant account is reactivated by the deposit.
func (e *transactionEngine) Deposit(ctx context.Context, req dto.DepositRequest) (*models.Transaction, error) {
	start := time.Now()

	amount, err := operationAmount(req.Amount)
	if err != nil {
		return nil, e.reject(ctx, models.OperationTypeDeposit, start, err)
	}

	var entry *models.Transaction
	err = e.store.Do(ctx, func(ctx context.Context, stores repositories.Stores) error {
		account, err := lockAccount(ctx, stores.Accounts, req.AccountNumber)
		if err != nil {
			return err
		}

		if !account.AcceptsCredits() {
			return notOperable(account)
		}

		description := descriptionOr(req.Description, "Deposit to "+account.AccountNumber)
		op := &models.Operation{
			OperationType:        models.OperationTypeDeposit,
			DestinationAccountID: &account.ID,
			Amount:               amount,
			Fee:                  decimal.Zero,
			Description:          description,
		}
		if err := stores.Operations.Create(ctx, op); err != nil {
			return fmt.Errorf("failed to record operation: %w", err)
		}

		entry, err = appendEntry(ctx, stores.Ledger, op, account, models.TransactionTypeDeposit, amount, description)
		if err != nil {
			return err
		}

		if account.Status == models.AccountStatusDormant {
			account.Status = models.AccountStatusActive
		}

		return e.saveAccount(ctx, stores.Accounts, account)
	})
	if err != nil {
		return nil, e.reject(ctx, models.OperationTypeDeposit, start, err)
	}

	e.complete(ctx, models.OperationTypeDeposit, start, amount, entry)
	return entry, nil
}

// Withdraw debits amount plus the withdrawal fee. The limit is checked before the
// balance, so an account with a zero limit always reports ErrLimitExceeded.
func (e *transactionEngine) Withdraw(ctx context.Context, req dto.WithdrawRequest) (*WithdrawalResult, error) {
	start := time.Now()

	amount, err := operationAmount(req.Amount)
	if err != nil {
		return nil, e.reject(ctx, models.OperationTypeWithdrawal, start, err)
	}

	fee := e.policy.Fee(models.OperationTypeWithdrawal)

	var result *WithdrawalResult
	err = e.store.Do(ctx, func(ctx context.Context, stores repositories.Stores) error {
		account, err := lockAccount(ctx, stores.Accounts, req.AccountNumber)
		if err != nil {
			return err
		}

		if !account.AcceptsDebits() {
			return notOperable(account)
		}
		if err := checkLimit(amount, account.DailyWithdrawalLimit); err != nil {
			return err
		}
		if err := checkFunds(account, amount, fee); err != nil {
			return err
		}

		description := descriptionOr(req.Description, "Withdrawal from "+account.AccountNumber)
		op := &models.Operation{
			OperationType:   models.OperationTypeWithdrawal,
			SourceAccountID: &account.ID,
			Amount:          amount,
			Fee:             fee,
			Description:     description,
		}
		if err := stores.Operations.Create(ctx, op); err != nil {
			return fmt.Errorf("failed to record operation: %w", err)
		}

		res := &WithdrawalResult{}
		res.Withdrawal, err = appendEntry(ctx, stores.Ledger, op, account, models.TransactionTypeWithdrawal, amount, description)
		if err != nil {
			return err
		}
		if fee.IsPositive() {
			res.Fee, err = appendEntry(ctx, stores.Ledger, op, account, models.TransactionTypeFee, fee, withdrawalFeeDescription)
			if err != nil {
				return err
			}
		}

		if err := e.saveAccount(ctx, stores.Accounts, account); err != nil {
			return err
		}

		result = res
		return nil
	})
	if err != nil {
		return nil, e.reject(ctx, models.OperationTypeWithdrawal, start, err)
	}

	e.complete(ctx, models.OperationTypeWithdrawal, start, amount, result.Withdrawal, result.Fee)
	return result, nil
}

// Transfer moves amount from source to destination and charges the transfer fee to
// the source. Both rows are locked in account id order.
func (e *transactionEngine) Transfer(ctx context.Context, req dto.TransferRequest) (*TransferResult, error) {
	start := time.Now()

	amount, err := operationAmount(req.Amount)
	if err != nil {
		return nil, e.reject(ctx, models.OperationTypeTransfer, start, err)
	}

	if normalizeAccountNumber(req.SourceAccountNumber) == normalizeAccountNumber(req.DestinationAccountNumber) {
		return nil, e.reject(ctx, models.OperationTypeTransfer, start, ErrSameAccountTransfer)
	}

	fee := e.policy.Fee(models.OperationTypeTransfer)

	var result *TransferResult
	err = e.store.Do(ctx, func(ctx context.Context, stores repositories.Stores) error {
		source, err := findAccount(ctx, stores.Accounts, req.SourceAccountNumber)
		if err != nil {
			return err
		}
		destination, err := findAccount(ctx, stores.Accounts, req.DestinationAccountNumber)
		if err != nil {
			return err
		}
		if source.ID == destination.ID {
			return ErrSameAccountTransfer
		}

		locked, err := lockAccountsInOrder(ctx, stores.Accounts, source.ID, destination.ID)
		if err != nil {
			return err
		}
		source, destination = locked[source.ID], locked[destination.ID]

		if !source.AcceptsDebits() {
			return notOperable(source)
		}
		if !destination.AcceptsCredits() {
			return notOperable(destination)
		}
		if err := checkLimit(amount, source.DailyTransferLimit); err != nil {
			return err
		}
		if err := checkFunds(source, amount, fee); err != nil {
			return err
		}

		op := &models.Operation{
			OperationType:        models.OperationTypeTransfer,
			SourceAccountID:      &source.ID,
			DestinationAccountID: &destination.ID,
			Amount:               amount,
			Fee:                  fee,
			Description: descriptionOr(req.Description,
				fmt.Sprintf("Transfer from %s to %s", source.AccountNumber, destination.AccountNumber)),
		}
		if err := stores.Operations.Create(ctx, op); err != nil {
			return fmt.Errorf("failed to record operation: %w", err)
		}

		res := &TransferResult{}
		res.TransferOut, err = appendEntry(ctx, stores.Ledger, op, source, models.TransactionTypeTransferOut, amount,
			descriptionOr(req.Description, "Transfer to "+destination.AccountNumber))
		if err != nil {
			return err
		}
		if fee.IsPositive() {
			res.Fee, err = appendEntry(ctx, stores.Ledger, op, source, models.TransactionTypeFee, fee, transferFeeDescription)
			if err != nil {
				return err
			}
		}
		res.TransferIn, err = appendEntry(ctx, stores.Ledger, op, destination, models.TransactionTypeTransferIn, amount,
			descriptionOr(req.Description, "Transfer from "+source.AccountNumber))
		if err != nil {
			return err
		}

		if err := e.saveAccount(ctx, stores.Accounts, source); err != nil {
			return err
		}
		if err := e.saveAccount(ctx, stores.Accounts, destination); err != nil {
			return err
		}

		result = res
		return nil
	})
	if err != nil {
		return nil, e.reject(ctx, models.OperationTypeTransfer, start, err)
	}

	e.complete(ctx, models.OperationTypeTransfer, start, amount, result.TransferOut, result.Fee, result.TransferIn)
	return result, nil
}

func (e *transactionEngine) saveAccount(ctx context.Context, accounts repositories.AccountRepositoryInterface, account *models.Account) error {
	now := e.now().UTC()
	account.LastActivityAt = &now

	if err := accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountNumber, err)
	}
	return nil
}

func (e *transactionEngine) complete(ctx context.Context, operation string, start time.Time, amount decimal.Decimal, entries ...*models.Transaction) {
	duration := time.Since(start)
	tags := map[string]string{"operation": operation}

	e.metrics.IncrementCounter(MetricOperationSuccess, tags)
	e.metrics.RecordProcessingTime(OperationDurationMetric(operation), duration)
	e.metrics.RecordGauge(MetricOperationAmount, amount.InexactFloat64(), tags)

	var operationID uuid.UUID
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		operationID = entry.OperationID
		e.audit.LogBalanceUpdate(ctx, entry.AccountID, money.Format(entry.BalanceBefore), money.Format(entry.BalanceAfter), entry.OperationID)
	}

	e.audit.LogOperationCompleted(ctx, operationID, operation, duration.Milliseconds())
}

func (e *transactionEngine) reject(ctx context.Context, operation string, start time.Time, err error) error {
	duration := time.Since(start)
	reason := rejectionReason(err)

	e.metrics.IncrementCounter(MetricOperationRejected, map[string]string{"operation": operation, "reason": reason})
	e.metrics.RecordProcessingTime(OperationDurationMetric(operation), duration)
	e.audit.LogOperationRejected(ctx, operation, reason, err.Error(), duration.Milliseconds())

	if !isBusinessError(err) && !IsRetryable(err) && !errors.Is(err, context.Canceled) {
		e.logger.Error("ledger operation failed", "operation", operation, "error", err)
	}

	return err
}

// operationAmount validates a requested amount and pins it to two decimals.
func operationAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if err := money.ValidatePositive(amount); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	return money.Normalize(amount), nil
}

func checkLimit(amount, limit decimal.Decimal) error {
	if amount.GreaterThan(limit) {
		return fmt.Errorf("%w: %s exceeds limit of %s", ErrLimitExceeded, money.Format(amount), money.Format(limit))
	}
	return nil
}

func checkFunds(account *models.Account, amount, fee decimal.Decimal) error {
	required := amount.Add(fee)
	if account.Balance.LessThan(required) {
		return fmt.Errorf("%w: balance %s, required %s", ErrInsufficientFunds, money.Format(account.Balance), money.Format(required))
	}
	return nil
}

func notOperable(account *models.Account) error {
	return fmt.Errorf("%w: account %s is %s", ErrAccountNotOperable, account.AccountNumber, account.Status)
}

// appendEntry writes one entry against the account's current balance and moves the
// in-memory balance to the entry's BalanceAfter.
func appendEntry(
	ctx context.Context,
	ledger repositories.LedgerRepositoryInterface,
	op *models.Operation,
	account *models.Account,
	transactionType string,
	amount decimal.Decimal,
	description string,
) (*models.Transaction, error) {
	entry := &models.Transaction{
		OperationID:     op.ID,
		AccountID:       account.ID,
		TransactionType: transactionType,
		Amount:          amount,
		BalanceBefore:   account.Balance,
		Description:     description,
	}
	entry.BalanceAfter = account.Balance.Add(entry.SignedAmount())

	if err := ledger.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append %s entry: %w", transactionType, err)
	}

	account.Balance = entry.BalanceAfter
	return entry, nil
}

func findAccount(ctx context.Context, accounts repositories.AccountRepositoryInterface, accountNumber string) (*models.Account, error) {
	number := normalizeAccountNumber(accountNumber)

	account, err := accounts.GetByAccountNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, number)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func lockAccount(ctx context.Context, accounts repositories.AccountRepositoryInterface, accountNumber string) (*models.Account, error) {
	account, err := findAccount(ctx, accounts, accountNumber)
	if err != nil {
		return nil, err
	}

	locked, err := lockAccountsInOrder(ctx, accounts, account.ID)
	if err != nil {
		return nil, err
	}
	return locked[account.ID], nil
}

// lockAccountsInOrder takes row locks lowest id first so two transfers over the same
// pair of accounts cannot deadlock.
func lockAccountsInOrder(ctx context.Context, accounts repositories.AccountRepositoryInterface, ids ...uuid.UUID) (map[uuid.UUID]*models.Account, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	result := make(map[uuid.UUID]*models.Account, len(ids))
	for _, id := range sorted {
		account, err := accounts.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrAccountNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
			}
			return nil, fmt.Errorf("lockAccountsInOrder: %w", err)
		}
		result[id] = account
	}
	return result, nil
}

func normalizeAccountNumber(accountNumber string) string {
	return strings.ToUpper(strings.TrimSpace(accountNumber))
}

func descriptionOr(description, fallback string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	return fallback
}
