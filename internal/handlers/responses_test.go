package handlers

import (
	"context"
	"fmt"
	"testing"

	"banking-ledger/internal/errors"
	"banking-ledger/internal/models"
	"banking-ledger/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestServiceErrorCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		code errors.ErrorCode
	}{
		{"not found", services.ErrAccountNotFound, errors.AccountNotFound},
		{"wrapped insufficient funds", fmt.Errorf("%w: balance 1.00", services.ErrInsufficientFunds), errors.TransactionInsufficientFunds},
		{"limit", services.ErrLimitExceeded, errors.TransactionLimitExceeded},
		{"not operable", services.ErrAccountNotOperable, errors.AccountNotOperable},
		{"same account", services.ErrSameAccountTransfer, errors.TransferSameAccount},
		{"invalid amount", services.ErrInvalidAmount, errors.TransactionInvalidAmount},
		{"closure", fmt.Errorf("%w: %w", services.ErrAccountClosureNotAllowed, models.ErrNonZeroBalance), errors.AccountClosureNotAllowed},
		{"conflict", services.ErrConcurrencyConflict, errors.TransactionConcurrencyConflict},
		{"timeout", services.ErrStoreTimeout, errors.SystemTimeout},
		{"deadline", context.DeadlineExceeded, errors.SystemTimeout},
		{"breaker open", fmt.Errorf("%w: %w", services.ErrStoreUnavailable, services.ErrCircuitBreakerOpen), errors.SystemServiceUnavailable},
		{"unavailable wrapping a not found", fmt.Errorf("%w: %w", services.ErrStoreUnavailable, services.ErrAccountNotFound), errors.SystemServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, ok := serviceErrorCode(tc.err)
			assert.True(t, ok)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestServiceErrorCode_Unknown(t *testing.T) {
	_, ok := serviceErrorCode(fmt.Errorf("boom"))
	assert.False(t, ok)
}
