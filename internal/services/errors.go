package services

import (
	"context"
	"errors"

	"banking-ledger/internal/repositories"
)

var (
	ErrAccountNotFound          = errors.New("account not found")
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrAccountNotOperable       = errors.New("account status does not allow this operation")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrLimitExceeded            = errors.New("amount exceeds account limit")
	ErrSameAccountTransfer      = errors.New("cannot transfer to same account")
	ErrStoreUnavailable         = errors.New("ledger store unavailable")
	ErrInvalidAccountType       = errors.New("invalid account type")
	ErrInvalidOwner             = errors.New("invalid owner id")
	ErrInvalidAccountName       = errors.New("account name is required")
	ErrInvalidStatusTransition  = errors.New("account status transition not allowed")
	ErrInvalidLimit             = errors.New("invalid account limit")
	ErrAccountClosureNotAllowed = errors.New("account closure not allowed")

	// The store sentinels are shared so errors.Is works across layers.
	ErrConcurrencyConflict = repositories.ErrConcurrencyConflict
	ErrStoreTimeout        = repositories.ErrStoreTimeout
)

// businessErrors are rejections decided by ledger rules. They never count against
// the store circuit breaker.
var businessErrors = []error{
	ErrAccountNotFound,
	ErrInvalidAmount,
	ErrAccountNotOperable,
	ErrInsufficientFunds,
	ErrLimitExceeded,
	ErrSameAccountTransfer,
	ErrInvalidAccountType,
	ErrInvalidOwner,
	ErrInvalidAccountName,
	ErrInvalidStatusTransition,
	ErrInvalidLimit,
	ErrAccountClosureNotAllowed,
}

// IsRetryable reports whether the same request may succeed if submitted again
// unchanged. Nothing was written when it returns true.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) ||
		errors.Is(err, ErrStoreTimeout) ||
		errors.Is(err, ErrStoreUnavailable)
}

func isBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// isInfrastructureFailure reports whether err says something about store health.
// Lock contention and caller cancellation do not.
func isInfrastructureFailure(err error) bool {
	switch {
	case err == nil:
		return false
	case isBusinessError(err):
		return false
	case errors.Is(err, ErrConcurrencyConflict):
		return false
	case errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}

// rejectionReason is the metric and log label for a failed operation.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrAccountNotOperable):
		return "account_not_operable"
	case errors.Is(err, ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrSameAccountTransfer):
		return "same_account"
	case errors.Is(err, ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, ErrStoreTimeout):
		return "timeout"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}
