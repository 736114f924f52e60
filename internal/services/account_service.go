package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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
	DefaultPageSize = 50
	MaxPageSize     = 200

	maxAccountNumberAttempts = 5
)

// accountService implements AccountServiceInterface
type accountService struct {
	store          *StoreGuard
	policy         *policy.Policy
	metrics        MetricsRecorderInterface
	audit          AuditLoggerInterface
	logger         *slog.Logger
	initialStatus  string
	generateNumber func() string
	now            func() time.Time
}

// NewAccountService creates an account service. New accounts start in initialStatus
// and take their rate and limits from pol.
func NewAccountService(
	store *StoreGuard,
	pol *policy.Policy,
	metrics MetricsRecorderInterface,
	audit AuditLoggerInterface,
	logger *slog.Logger,
	initialStatus string,
) AccountServiceInterface {
	if initialStatus == "" {
		initialStatus = models.AccountStatusPending
	}
	return &accountService{
		store:          store,
		policy:         pol,
		metrics:        metrics,
		audit:          audit,
		logger:         logger,
		initialStatus:  initialStatus,
		generateNumber: models.GenerateAccountNumber,
		now:            time.Now,
	}
}

// CreateAccount opens a zero-balance account with the type's policy defaults
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*models.Account, error) {
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil || ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOwner, req.OwnerID)
	}

	name := strings.TrimSpace(req.AccountName)
	if name == "" {
		return nil, ErrInvalidAccountName
	}

	limits, err := s.policy.ForAccountType(req.AccountType)
	if err != nil {
		if errors.Is(err, policy.ErrUnknownAccountType) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAccountType, req.AccountType)
		}
		return nil, err
	}

	var account *models.Account
	err = s.store.Do(ctx, func(ctx context.Context, stores repositories.Stores) error {
		number, err := s.uniqueAccountNumber(ctx, stores.Accounts)
		if err != nil {
			return err
		}

		account = &models.Account{
			AccountNumber:        number,
			OwnerID:              ownerID,
			AccountName:          name,
			AccountType:          req.AccountType,
			Balance:              decimal.Zero,
			Status:               s.initialStatus,
			InterestRate:         limits.InterestRate,
			DailyWithdrawalLimit: limits.DailyWithdrawalLimit,
			DailyTransferLimit:   limits.DailyTransferLimit,
			Currency:             money.DefaultCurrency,
		}
		if err := stores.Accounts.Create(ctx, account); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCounter(MetricAccountCreated, map[string]string{"account_type": account.AccountType})
	s.audit.LogAccountCreated(ctx, account.ID, account.AccountNumber, account.AccountType)

	return account, nil
}

func (s *accountService) uniqueAccountNumber(ctx context.Context, accounts repositories.AccountRepositoryInterface) (string, error) {
	for attempt := 0; attempt < maxAccountNumberAttempts; attempt++ {
		number := s.generateNumber()
		exists, err := accounts.AccountNumberExists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("failed to check account number: %w", err)
		}
		if !exists {
			return number, nil
		}
		s.logger.Warn("account number collision", "attempt", attempt+1)
	}
	return "", repositories.ErrAccountNumberExists
}

// GetAccountByNumber retrieves an account by its external number
func (s *accountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	var account *models.Account
	err := s.store.Do(ctx, func(ctx context.Context, stores repositories.Stores) error {
		var err error
		account, err = findAccount(ctx, stores.Accounts, accountNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetOwnerAccounts lists the accounts of one owner, oldest first
func (s *accountService) GetOwnerAccounts(ctx context.Context, ownerID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	err := s.store.Do(ctx, func(ctx context.Context, stores repositories.Stores) error {
		var err error
		accounts, err = stores.Accounts.GetByOwnerID(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// UpdateAccountStatus applies an administrative status change. Closing an account
// goes through CloseAccount.
func (s *accountService) UpdateAccountStatus(ctx context.Context, accountNumber, status string) (*models.Account, error) {
	status = strings.ToUpper(strings.TrimSpace(status))

	var (
		account   *models.Account
		oldStatus string
	)
	err := s.store.Do(ctx, func(ctx context.Context, stores repositories.Stores) error {
		var err error
		account, err = lockAccount(ctx, stores.Accounts, accountNumber)
		if err != nil {
			return err
		}

		if !account.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, account.Status, status)
		}

		oldStatus = account.Status
		if oldStatus == status {
			return nil
		}

		account.Status = status
		if err := stores.Accounts.Update(ctx, account); err != nil {
			return fmt.Errorf("failed to update account status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if oldStatus != status {
		s.metrics.IncrementCounter(MetricAccountStatus, map[string]string{"status": status})
		s.audit.LogAccountStatusChange(ctx, account.ID, oldStatus, status)
	}

	return account, nil
}

// UpdateLimits overrides the per-operation ceilings of one account
func (s *accountService) UpdateLimits(ctx context.Context, accountNumber string, req dto.UpdateLimitsRequest) (*models.Account, error) {
	if req.DailyWithdrawalLimit == nil && req.DailyTransferLimit == nil {
		return nil, fmt.Errorf("%w: no limit supplied", ErrInvalidLimit)
	}
	for _, limit := range []*decimal.Decimal{req.DailyWithdrawalLimit, req.DailyTransferLimit} {
		if limit == nil {
			continue
		}
		if err := money.ValidateNonNegative(*limit); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidLimit, err)
		}
	}

	var account *models.Account
	err := s.store.Do(ctx, func(ctx context.Context, stores repositories.Stores) error {
		var err error
		account, err = lockAccount(ctx, stores.Accounts, accountNumber)
		if err != nil {
			return err
		}

		if account.Status == models.AccountStatusClosed {
			return notOperable(account)
		}

		if req.DailyWithdrawalLimit != nil {
			account.DailyWithdrawalLimit = money.Normalize(*req.DailyWithdrawalLimit)
		}
		if req.DailyTransferLimit != nil {
			account.DailyTransferLimit = money.Normalize(*req.DailyTransferLimit)
		}

		if err := stores.Accounts.Update(ctx, account); err != nil {
			return fmt.Errorf("failed to update account limits: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogLimitsUpdate(ctx, account.ID, money.Format(account.DailyWithdrawalLimit), money.Format(account.DailyTransferLimit))
	return account, nil
}

// CloseAccount closes an account whose balance is exactly zero
func (s *accountService) CloseAccount(ctx context.Context, accountNumber string) (*models.Account, error) {
	var (
		account   *models.Account
		oldStatus string
	)
	err := s.store.Do(ctx, func(ctx context.Context, stores repositories.Stores) error {
		var err error
		account, err = lockAccount(ctx, stores.Accounts, accountNumber)
		if err != nil {
			return err
		}

		oldStatus = account.Status
		if err := account.Close(s.now().UTC()); err != nil {
			return fmt.Errorf("%w: %w", ErrAccountClosureNotAllowed, err)
		}

		if err := stores.Accounts.Update(ctx, account); err != nil {
			return fmt.Errorf("failed to close account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCounter(MetricAccountStatus, map[string]string{"status": models.AccountStatusClosed})
	s.audit.LogAccountStatusChange(ctx, account.ID, oldStatus, models.AccountStatusClosed)

	return account, nil
}

// GetLedger returns one page of an account's entries, oldest first
func (s *accountService) GetLedger(ctx context.Context, accountNumber string, offset, limit int) (*dto.LedgerPageResponse, error) {
	offset, limit = normalizePage(offset, limit)

	page := &dto.LedgerPageResponse{Offset: offset, Limit: limit}
	err := s.store.Do(ctx, func(ctx context.Context, stores repositories.Stores) error {
		account, err := findAccount(ctx, stores.Accounts, accountNumber)
		if err != nil {
			return err
		}

		entries, total, err := stores.Ledger.ListForAccount(ctx, account.ID, offset, limit)
		if err != nil {
			return fmt.Errorf("failed to list ledger entries: %w", err)
		}

		page.AccountNumber = account.AccountNumber
		page.Entries = entries
		page.Total = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return offset, limit
}
