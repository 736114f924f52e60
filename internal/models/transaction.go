package models

import (
	"errors"
	"slices"
	"strings"
	"time"

	"banking-ledger/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransactionTypeDeposit     = "deposit"
	TransactionTypeWithdrawal  = "withdrawal"
	TransactionTypeTransferIn  = "transfer_in"
	TransactionTypeTransferOut = "transfer_out"
	TransactionTypeFee         = "fee"

	TransactionStatusCompleted = "completed"
)

var (
	ErrInvalidTransactionType   = errors.New("invalid transaction type")
	ErrInvalidTransactionStatus = errors.New("invalid transaction status")
	ErrInvalidAmount            = errors.New("transaction amount must be positive with at most 2 decimal places")
	ErrBalanceMismatch          = errors.New("balance calculation mismatch")
	ErrImmutableEntry           = errors.New("ledger entries cannot be modified")
)

// Transaction is one ledger entry: a single balance movement on a single account.
// Entries are append-only; Sequence gives the global order of occurrence.
type Transaction struct {
	Sequence        int64           `gorm:"primaryKey;autoIncrement" json:"sequence"`
	Reference       string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	OperationID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"operation_id"`
	AccountID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"account_id"`
	TransactionType string          `gorm:"type:varchar(20);not null" json:"transaction_type"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	BalanceBefore   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"balance_before"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"balance_after"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	Status          string          `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	CreatedAt       time.Time       `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TransactionStatusCompleted
	}

	if t.Reference == "" {
		t.Reference = GenerateTransactionReference()
	}

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	return t.Validate()
}

// BeforeUpdate refuses every update.
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableEntry
}

// BeforeDelete refuses every delete.
func (t *Transaction) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutableEntry
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.AccountID == uuid.Nil {
		return errors.New("account ID is required")
	}

	if t.OperationID == uuid.Nil {
		return errors.New("operation ID is required")
	}

	if !IsValidTransactionType(t.TransactionType) {
		return ErrInvalidTransactionType
	}

	if t.Status != TransactionStatusCompleted {
		return ErrInvalidTransactionStatus
	}

	if err := money.ValidatePositive(t.Amount); err != nil {
		return ErrInvalidAmount
	}

	if strings.TrimSpace(t.Description) == "" {
		return errors.New("transaction description is required")
	}

	if t.BalanceAfter.IsNegative() {
		return ErrInvalidBalance
	}

	if !t.BalanceBefore.Add(t.SignedAmount()).Equal(t.BalanceAfter) {
		return ErrBalanceMismatch
	}

	return nil
}

// IsCredit reports whether the entry increases the balance.
func (t *Transaction) IsCredit() bool {
	return IsCreditType(t.TransactionType)
}

// SignedAmount is Amount for credits and -Amount for debits.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.IsCredit() {
		return t.Amount
	}
	return t.Amount.Neg()
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

// TransactionTypes lists every ledger entry type.
func TransactionTypes() []string {
	return []string{
		TransactionTypeDeposit,
		TransactionTypeWithdrawal,
		TransactionTypeTransferIn,
		TransactionTypeTransferOut,
		TransactionTypeFee,
	}
}

// IsValidTransactionType checks if the transaction type is valid
func IsValidTransactionType(transactionType string) bool {
	return slices.Contains(TransactionTypes(), transactionType)
}

// IsCreditType reports whether entries of this type add to the balance.
func IsCreditType(transactionType string) bool {
	return transactionType == TransactionTypeDeposit || transactionType == TransactionTypeTransferIn
}

// GenerateTransactionReference generates a unique transaction reference
func GenerateTransactionReference() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "TXN-" + time.Now().UTC().Format("20060102") + "-" + id
}
