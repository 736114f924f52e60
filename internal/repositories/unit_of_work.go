package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// gormUnitOfWork implements UnitOfWork on a gorm transaction
type gormUnitOfWork struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewUnitOfWork creates a unit of work factory. lockTimeout bounds how long a
// postgres statement waits for a row lock; zero leaves the server default.
func NewUnitOfWork(db *gorm.DB, lockTimeout time.Duration) UnitOfWork {
	return &gormUnitOfWork{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

// NewStores binds the repositories to db without a surrounding transaction, for reads.
func NewStores(db *gorm.DB) Stores {
	return Stores{
		Accounts:   NewAccountRepository(db),
		Ledger:     NewLedgerRepository(db),
		Operations: NewOperationRepository(db),
	}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	if err := ctx.Err(); err != nil {
		return classifyError(err)
	}

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}

		return fn(ctx, NewStores(tx))
	})

	return classifyError(err)
}
