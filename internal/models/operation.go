package models

import (
	"errors"
	"slices"
	"time"

	"banking-ledger/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OperationTypeDeposit    = "deposit"
	OperationTypeWithdrawal = "withdrawal"
	OperationTypeTransfer   = "transfer"

	OperationStatusCompleted = "completed"
)

var (
	ErrInvalidOperationType = errors.New("invalid operation type")
	ErrInvalidOperationFee  = errors.New("operation fee cannot be negative")
	ErrSameAccount          = errors.New("source and destination accounts cannot be the same")
	ErrImmutableOperation   = errors.New("operations cannot be modified")
)

// Operation groups the ledger entries written by one deposit, withdrawal or transfer.
type Operation struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OperationType        string          `gorm:"type:varchar(20);not null;index" json:"operation_type"`
	SourceAccountID      *uuid.UUID      `gorm:"type:uuid;index" json:"source_account_id,omitempty"`
	DestinationAccountID *uuid.UUID      `gorm:"type:uuid;index" json:"destination_account_id,omitempty"`
	Amount               decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Fee                  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"fee"`
	Description          string          `gorm:"type:text;not null" json:"description"`
	Status               string          `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	CreatedAt            time.Time       `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate hook for Operation
func (o *Operation) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}

	if o.Status == "" {
		o.Status = OperationStatusCompleted
	}

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	return o.Validate()
}

// BeforeUpdate refuses every update.
func (o *Operation) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableOperation
}

// Validate validates the operation fields
func (o *Operation) Validate() error {
	switch o.OperationType {
	case OperationTypeDeposit:
		if o.DestinationAccountID == nil || o.SourceAccountID != nil {
			return errors.New("deposit requires only a destination account")
		}
	case OperationTypeWithdrawal:
		if o.SourceAccountID == nil || o.DestinationAccountID != nil {
			return errors.New("withdrawal requires only a source account")
		}
	case OperationTypeTransfer:
		if o.SourceAccountID == nil || o.DestinationAccountID == nil {
			return errors.New("transfer requires source and destination accounts")
		}
		if *o.SourceAccountID == *o.DestinationAccountID {
			return ErrSameAccount
		}
	default:
		return ErrInvalidOperationType
	}

	if err := money.ValidatePositive(o.Amount); err != nil {
		return ErrInvalidAmount
	}

	if err := money.ValidateNonNegative(o.Fee); err != nil {
		return ErrInvalidOperationFee
	}

	if o.Description == "" {
		return errors.New("description is required")
	}

	if o.Status != OperationStatusCompleted {
		return errors.New("invalid operation status")
	}

	return nil
}

// Total is the amount charged to the source account.
func (o *Operation) Total() decimal.Decimal {
	return o.Amount.Add(o.Fee)
}

// TableName returns the table name for Operation
func (o *Operation) TableName() string {
	return "operations"
}

// OperationTypes lists every operation type.
func OperationTypes() []string {
	return []string{OperationTypeDeposit, OperationTypeWithdrawal, OperationTypeTransfer}
}

// IsValidOperationType checks if the operation type is valid
func IsValidOperationType(operationType string) bool {
	return slices.Contains(OperationTypes(), operationType)
}
