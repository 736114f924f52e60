package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassifyError(t *testing.T) {
	other := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: ErrStoreTimeout},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, want: ErrConcurrencyConflict},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: ErrConcurrencyConflict},
		{name: "lock not available", err: &pgconn.PgError{Code: "55P03"}, want: ErrConcurrencyConflict},
		{name: "statement timeout", err: &pgconn.PgError{Code: "57014"}, want: ErrStoreTimeout},
		{name: "already classified", err: fmt.Errorf("update: %w", ErrConcurrencyConflict), want: ErrConcurrencyConflict},
		{name: "unrelated", err: other, want: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyError(tt.err), tt.want)
		})
	}

	assert.NoError(t, classifyError(nil))
	assert.ErrorIs(t, classifyError(context.Canceled), context.Canceled)
	assert.NotErrorIs(t, classifyError(context.Canceled), ErrStoreTimeout)
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, isDuplicateKeyError(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isDuplicateKeyError(errors.New("UNIQUE constraint failed: accounts.account_number")))
	assert.False(t, isDuplicateKeyError(errors.New("boom")))
	assert.False(t, isDuplicateKeyError(nil))
}
