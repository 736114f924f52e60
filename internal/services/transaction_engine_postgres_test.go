package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"banking-ledger/internal/database"
	"banking-ledger/internal/dto"
	"banking-ledger/internal/models"
	"banking-ledger/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a pooled postgres and run only when LEDGER_TEST_POSTGRES_DSN is set.

func newPostgresFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	return newLedgerFixtureOn(t, database.SetupPostgresTestDB(t), nil, 2*time.Second)
}

func TestPostgres_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	f := newPostgresFixture(t)
	account := f.openAccount(t, models.AccountTypeSavings, models.AccountStatusActive)
	f.deposit(t, account, "10000")

	const workers = 20
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		succeeded    int
		insufficient int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Withdraw(context.Background(), dto.WithdrawRequest{
				AccountNumber: account.AccountNumber,
				Amount:        money.MustParse("1000"),
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInsufficientFunds):
				insufficient++
			default:
				assert.Fail(t, "unexpected error", err.Error())
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, succeeded)
	assert.Equal(t, workers-8, insufficient)
	assert.True(t, f.reload(t, account).Balance.IsZero())
	f.requireConsistent(t, account)
}

func TestPostgres_OppositeTransfersDoNotDeadlock(t *testing.T) {
	f := newPostgresFixture(t)
	a := f.openAccount(t, models.AccountTypeChecking, models.AccountStatusActive)
	b := f.openAccount(t, models.AccountTypeChecking, models.AccountStatusActive)
	f.deposit(t, a, "10000")
	f.deposit(t, b, "10000")

	const rounds = 25
	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	for i := 0; i < rounds; i++ {
		for _, pair := range [][2]*models.Account{{a, b}, {b, a}} {
			wg.Add(1)
			go func(from, to *models.Account) {
				defer wg.Done()
				_, err := f.engine.Transfer(context.Background(), dto.TransferRequest{
					SourceAccountNumber:      from.AccountNumber,
					DestinationAccountNumber: to.AccountNumber,
					Amount:                   money.MustParse("100"),
				})
				errs <- err
			}(pair[0], pair[1])
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// 25 fees of 100 each; the moved amounts cancel out
	assert.True(t, money.MustParse("7500").Equal(f.reload(t, a).Balance))
	assert.True(t, money.MustParse("7500").Equal(f.reload(t, b).Balance))
	f.requireConsistent(t, a)
	f.requireConsistent(t, b)
}

func TestPostgres_ReconcileDuringDeposits(t *testing.T) {
	f := newPostgresFixture(t)
	account := f.openAccount(t, models.AccountTypeChecking, models.AccountStatusActive)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			_, err := f.engine.Deposit(ctx, dto.DepositRequest{
				AccountNumber: account.AccountNumber,
				Amount:        money.MustParse("1"),
			})
			if err != nil && ctx.Err() == nil {
				assert.Fail(t, "deposit failed", err.Error())
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		report, err := f.reconciler.Reconcile(context.Background(), account.AccountNumber)
		require.NoError(t, err)
		require.True(t, report.Consistent, "stored %s, replayed %s", report.StoredBalance, report.ReplayedBalance)
	}

	cancel()
	wg.Wait()
}
