package repositories

import (
	"context"

	"banking-ledger/internal/models"

	"github.com/google/uuid"
)

// AccountRepositoryInterface defines the contract for account repository operations
type AccountRepositoryInterface interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]models.Account, error)
	// GetForUpdate reads the account and holds a row lock until the unit of work ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error)
	// Update saves every mutable column if the stored version still matches
	// account.Version, then bumps the version. A stale version yields ErrConcurrencyConflict.
	Update(ctx context.Context, account *models.Account) error
	AccountNumberExists(ctx context.Context, accountNumber string) (bool, error)
}

// LedgerRepositoryInterface is the append-only ledger. Reads are ordered by sequence.
type LedgerRepositoryInterface interface {
	Append(ctx context.Context, entry *models.Transaction) error
	ListForAccount(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]models.Transaction, int64, error)
	ListAllForAccount(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	ListByOperation(ctx context.Context, operationID uuid.UUID) ([]models.Transaction, error)
}

// OperationRepositoryInterface defines the contract for operation repository operations
type OperationRepositoryInterface interface {
	Create(ctx context.Context, operation *models.Operation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Operation, error)
}

// Stores are the repositories bound to one unit of work.
type Stores struct {
	Accounts   AccountRepositoryInterface
	Ledger     LedgerRepositoryInterface
	Operations OperationRepositoryInterface
}

// UnitOfWork runs fn inside one database transaction. Any error returned by fn, or a
// cancelled context, rolls back every write made through the stores.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
