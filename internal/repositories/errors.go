package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrConcurrencyConflict means another unit of work holds or changed the row.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")
	// ErrStoreTimeout means the store did not answer within the operation deadline.
	ErrStoreTimeout = errors.New("store operation timed out")
)

// postgres SQLSTATE codes
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// classifyError maps driver failures onto the retryable sentinels. Everything else
// is returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrStoreTimeout) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrStoreTimeout, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return fmt.Errorf("%w: %s", ErrConcurrencyConflict, pgErr.Message)
		case codeQueryCanceled:
			return fmt.Errorf("%w: %s", ErrStoreTimeout, pgErr.Message)
		}
	}

	return err
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}

	return strings.Contains(err.Error(), "UNIQUE constraint")
}
