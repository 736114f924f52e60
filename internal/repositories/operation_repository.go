package repositories

import (
	"context"
	"errors"
	"fmt"

	"banking-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrOperationNotFound = errors.New("operation not found")

// operationRepository implements OperationRepositoryInterface
type operationRepository struct {
	db *gorm.DB
}

// NewOperationRepository creates a new operation repository
func NewOperationRepository(db *gorm.DB) OperationRepositoryInterface {
	return &operationRepository{
		db: db,
	}
}

// Create creates a new operation
func (r *operationRepository) Create(ctx context.Context, operation *models.Operation) error {
	if operation == nil {
		return errors.New("operation cannot be nil")
	}

	if err := r.db.WithContext(ctx).Create(operation).Error; err != nil {
		return fmt.Errorf("failed to create operation: %w", classifyError(err))
	}

	return nil
}

// GetByID retrieves an operation by ID
func (r *operationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Operation, error) {
	var operation models.Operation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&operation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOperationNotFound
		}
		return nil, fmt.Errorf("failed to get operation: %w", classifyError(err))
	}
	return &operation, nil
}
