package repositories

import (
	"context"
	"errors"
	"fmt"

	"banking-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrReferenceExists     = errors.New("transaction reference already exists")
)

// ledgerRepository implements LedgerRepositoryInterface. It never issues UPDATE or DELETE.
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepositoryInterface {
	return &ledgerRepository{
		db: db,
	}
}

// Append inserts one entry; the database assigns its sequence.
func (r *ledgerRepository) Append(ctx context.Context, entry *models.Transaction) error {
	if entry.Sequence != 0 {
		return errors.New("ledger entry already has a sequence")
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrReferenceExists
		}
		return fmt.Errorf("failed to append ledger entry: %w", classifyError(err))
	}
	return nil
}

// ListForAccount returns one page of an account's entries, oldest first, and the total count.
func (r *ledgerRepository) ListForAccount(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]models.Transaction, int64, error) {
	var entries []models.Transaction
	var total int64

	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Transaction{}).
		Where("account_id = ?", accountID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", classifyError(err))
	}

	if err := db.Where("account_id = ?", accountID).
		Order("sequence ASC").
		Offset(offset).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list ledger entries: %w", classifyError(err))
	}

	return entries, total, nil
}

// ListAllForAccount returns the full history of an account, oldest first.
func (r *ledgerRepository) ListAllForAccount(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error) {
	var entries []models.Transaction
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).
		Order("sequence ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", classifyError(err))
	}
	return entries, nil
}

// GetByReference retrieves an entry by reference
func (r *ledgerRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var entry models.Transaction
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get ledger entry by reference: %w", classifyError(err))
	}
	return &entry, nil
}

// ListByOperation returns the entries written by one operation in write order.
func (r *ledgerRepository) ListByOperation(ctx context.Context, operationID uuid.UUID) ([]models.Transaction, error) {
	var entries []models.Transaction
	if err := r.db.WithContext(ctx).Where("operation_id = ?", operationID).
		Order("sequence ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list operation entries: %w", classifyError(err))
	}
	return entries, nil
}
