package repositories

import (
	"context"
	"errors"
	"fmt"

	"banking-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountNumberExists = errors.New("account number already exists")
)

// mutableAccountColumns are written by Update. Identity, type and opening data never change.
var mutableAccountColumns = []string{
	"account_name",
	"balance",
	"status",
	"daily_withdrawal_limit",
	"daily_transfer_limit",
	"closed_at",
	"last_activity_at",
	"version",
	"updated_at",
}

// accountRepository implements AccountRepositoryInterface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepositoryInterface {
	return &accountRepository{
		db: db,
	}
}

// Create creates a new account
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrAccountNumberExists
		}
		return fmt.Errorf("failed to create account: %w", classifyError(err))
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", classifyError(err))
	}
	return &account, nil
}

// GetByAccountNumber retrieves an account by account number
func (r *accountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("account_number = ?", accountNumber).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by number: %w", classifyError(err))
	}
	return &account, nil
}

// GetByOwnerID retrieves all accounts of one owner, oldest first
func (r *accountRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("created_at ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to get accounts for owner: %w", classifyError(err))
	}
	return accounts, nil
}

// GetForUpdate locks the account row with SELECT ... FOR UPDATE. Dialects without row
// locks (sqlite) ignore the clause and rely on their single writer.
func (r *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", classifyError(err))
	}
	return &account, nil
}

// Update writes the mutable columns guarded by the version the caller read.
func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	expected := account.Version
	account.Version = expected + 1

	result := r.db.WithContext(ctx).
		Model(account).
		Where("version = ?", expected).
		Select(mutableAccountColumns).
		Updates(account)

	if result.Error != nil {
		account.Version = expected
		return fmt.Errorf("failed to update account: %w", classifyError(result.Error))
	}

	if result.RowsAffected == 0 {
		account.Version = expected
		return fmt.Errorf("account %s at version %d: %w", account.ID, expected, ErrConcurrencyConflict)
	}

	return nil
}

// AccountNumberExists checks if an account number already exists
func (r *accountRepository) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("account_number = ?", accountNumber).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check account number existence: %w", classifyError(err))
	}
	return count > 0, nil
}
