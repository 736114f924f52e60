package services

import (
	"context"
	"fmt"
	"time"

	"banking-ledger/internal/models"
	"banking-ledger/internal/money"
	"banking-ledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerDiscrepancy is one entry whose recorded balance disagrees with the replay.
type LedgerDiscrepancy struct {
	Sequence  int64           `json:"sequence"`
	Reference string          `json:"reference"`
	Field     string          `json:"field"`
	Expected  decimal.Decimal `json:"expected"`
	Recorded  decimal.Decimal `json:"recorded"`
}

// ReconciliationReport compares an account's stored balance with the sum of its ledger.
type ReconciliationReport struct {
	AccountID       uuid.UUID           `json:"account_id"`
	AccountNumber   string              `json:"account_number"`
	StoredBalance   decimal.Decimal     `json:"stored_balance"`
	ReplayedBalance decimal.Decimal     `json:"replayed_balance"`
	EntryCount      int                 `json:"entry_count"`
	Consistent      bool                `json:"consistent"`
	Discrepancies   []LedgerDiscrepancy `json:"discrepancies"`
	CheckedAt       time.Time           `json:"checked_at"`
}

type reconciliationService struct {
	store   *StoreGuard
	metrics MetricsRecorderInterface
	audit   AuditLoggerInterface
}

func NewReconciliationService(store *StoreGuard, metrics MetricsRecorderInterface, audit AuditLoggerInterface) ReconciliationServiceInterface {
	return &reconciliationService{
		store:   store,
		metrics: metrics,
		audit:   audit,
	}
}

// Reconcile locks the account, reads its whole ledger in the same unit of work and
// replays it. The row lock keeps a concurrent operation from committing between the
// balance read and the ledger read.
func (s *reconciliationService) Reconcile(ctx context.Context, accountNumber string) (*ReconciliationReport, error) {
	var (
		account *models.Account
		entries []models.Transaction
	)
	err := s.store.Do(ctx, func(ctx context.Context, stores repositories.Stores) error {
		var err error
		account, err = lockAccount(ctx, stores.Accounts, accountNumber)
		if err != nil {
			return err
		}

		entries, err = stores.Ledger.ListAllForAccount(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("failed to list ledger entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	replayed, discrepancies := ReplayLedger(entries)
	report := &ReconciliationReport{
		AccountID:       account.ID,
		AccountNumber:   account.AccountNumber,
		StoredBalance:   money.Normalize(account.Balance),
		ReplayedBalance: replayed,
		EntryCount:      len(entries),
		Discrepancies:   discrepancies,
		CheckedAt:       time.Now().UTC(),
	}
	report.Consistent = len(discrepancies) == 0 && replayed.Equal(account.Balance)

	result := "consistent"
	if !report.Consistent {
		result = "mismatch"
		s.audit.LogReconciliationMismatch(ctx, account.ID, money.Format(account.Balance), money.Format(replayed), len(discrepancies))
	}
	s.metrics.IncrementCounter(MetricReconciliation, map[string]string{"result": result})

	return report, nil
}

// ReplayLedger folds entries, oldest first, from a zero opening balance. It reports
// every entry whose BalanceBefore or BalanceAfter differs from the running total.
func ReplayLedger(entries []models.Transaction) (decimal.Decimal, []LedgerDiscrepancy) {
	running := decimal.Zero
	discrepancies := []LedgerDiscrepancy{}

	for i := range entries {
		entry := &entries[i]

		if !entry.BalanceBefore.Equal(running) {
			discrepancies = append(discrepancies, LedgerDiscrepancy{
				Sequence:  entry.Sequence,
				Reference: entry.Reference,
				Field:     "balance_before",
				Expected:  running,
				Recorded:  entry.BalanceBefore,
			})
		}

		running = running.Add(entry.SignedAmount())

		if !entry.BalanceAfter.Equal(running) {
			discrepancies = append(discrepancies, LedgerDiscrepancy{
				Sequence:  entry.Sequence,
				Reference: entry.Reference,
				Field:     "balance_after",
				Expected:  running,
				Recorded:  entry.BalanceAfter,
			})
		}
	}

	return money.Normalize(running), discrepancies
}
