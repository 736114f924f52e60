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
	AccountTypeSavings      = "Savings"
	AccountTypeChecking     = "Checking"
	AccountTypeBusiness     = "Business"
	AccountTypeFixedDeposit = "Fixed Deposit"
	AccountTypeCurrent      = "Current"

	AccountStatusActive    = "ACTIVE"
	AccountStatusDormant   = "DORMANT"
	AccountStatusFrozen    = "FROZEN"
	AccountStatusClosed    = "CLOSED"
	AccountStatusPending   = "PENDING"
	AccountStatusSuspended = "SUSPENDED"

	// AccountNumberLength is the length of a generated account number.
	AccountNumberLength = 20
)

var (
	ErrInvalidAccountType   = errors.New("invalid account type")
	ErrInvalidAccountStatus = errors.New("invalid account status")
	ErrInvalidBalance       = errors.New("balance cannot be negative")
	ErrInvalidLimit         = errors.New("limits cannot be negative")
	ErrAccountAlreadyClosed = errors.New("account is already closed")
	ErrNonZeroBalance       = errors.New("account balance must be zero to close")
	ErrInvalidTransition    = errors.New("account status transition not allowed")
)

// Account is a customer account. Balance only moves through the transaction engine;
// every other column is either fixed at creation or administrative.
type Account struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AccountNumber        string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"account_number"`
	OwnerID              uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	AccountName          string          `gorm:"type:varchar(100);not null" json:"account_name"`
	AccountType          string          `gorm:"type:varchar(20);not null" json:"account_type"`
	Balance              decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	Status               string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	InterestRate         decimal.Decimal `gorm:"type:decimal(5,3);not null;default:0" json:"interest_rate"`
	DailyWithdrawalLimit decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"daily_withdrawal_limit"`
	DailyTransferLimit   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"daily_transfer_limit"`
	Currency             string          `gorm:"type:varchar(3);not null;default:'XAF'" json:"currency"`
	OpenedAt             time.Time       `gorm:"not null" json:"opened_at"`
	ClosedAt             *time.Time      `json:"closed_at,omitempty"`
	LastActivityAt       *time.Time      `json:"last_activity_at,omitempty"`
	Version              int64           `gorm:"not null;default:1" json:"version"`
	CreatedAt            time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Account
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	if a.AccountNumber == "" {
		a.AccountNumber = GenerateAccountNumber()
	}

	if a.Status == "" {
		a.Status = AccountStatusPending
	}

	if a.Currency == "" {
		a.Currency = money.DefaultCurrency
	}

	if a.Version == 0 {
		a.Version = 1
	}

	now := time.Now().UTC()
	if a.OpenedAt.IsZero() {
		a.OpenedAt = now
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	return a.Validate()
}

// BeforeUpdate hook for Account
func (a *Account) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now().UTC()
	return a.Validate()
}

// Validate validates the account fields
func (a *Account) Validate() error {
	if a.OwnerID == uuid.Nil {
		return errors.New("owner ID is required")
	}

	if strings.TrimSpace(a.AccountName) == "" {
		return errors.New("account name is required")
	}

	if !ValidateAccountNumber(a.AccountNumber) {
		return errors.New("account number must be 20 upper-case hexadecimal characters")
	}

	if !IsValidAccountType(a.AccountType) {
		return ErrInvalidAccountType
	}

	if !IsValidAccountStatus(a.Status) {
		return ErrInvalidAccountStatus
	}

	if a.Balance.IsNegative() {
		return ErrInvalidBalance
	}

	if a.DailyWithdrawalLimit.IsNegative() || a.DailyTransferLimit.IsNegative() {
		return ErrInvalidLimit
	}

	return nil
}

// IsActive returns true if the account is active
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// AcceptsCredits reports whether money may be paid into the account.
func (a *Account) AcceptsCredits() bool {
	switch a.Status {
	case AccountStatusActive, AccountStatusDormant, AccountStatusPending:
		return true
	default:
		return false
	}
}

// AcceptsDebits reports whether money may leave the account.
func (a *Account) AcceptsDebits() bool {
	return a.IsActive()
}

// CanTransitionTo checks an administrative status change. Closing goes through
// Close so the zero-balance rule is enforced.
func (a *Account) CanTransitionTo(newStatus string) bool {
	if !IsValidAccountStatus(newStatus) || newStatus == AccountStatusClosed {
		return false
	}
	return a.Status != AccountStatusClosed
}

// Close closes the account
func (a *Account) Close(at time.Time) error {
	if a.Status == AccountStatusClosed {
		return ErrAccountAlreadyClosed
	}

	if !a.Balance.IsZero() {
		return ErrNonZeroBalance
	}

	a.Status = AccountStatusClosed
	a.ClosedAt = &at
	return nil
}

// TableName returns the table name for Account
func (a *Account) TableName() string {
	return "accounts"
}

// AccountTypes lists every supported account type.
func AccountTypes() []string {
	return []string{
		AccountTypeSavings,
		AccountTypeChecking,
		AccountTypeBusiness,
		AccountTypeFixedDeposit,
		AccountTypeCurrent,
	}
}

// AccountStatuses lists every supported account status.
func AccountStatuses() []string {
	return []string{
		AccountStatusActive,
		AccountStatusDormant,
		AccountStatusFrozen,
		AccountStatusClosed,
		AccountStatusPending,
		AccountStatusSuspended,
	}
}

// IsValidAccountType checks if the account type is valid
func IsValidAccountType(accountType string) bool {
	return slices.Contains(AccountTypes(), accountType)
}

// IsValidAccountStatus checks if the account status is valid
func IsValidAccountStatus(status string) bool {
	return slices.Contains(AccountStatuses(), status)
}

// GenerateAccountNumber returns 20 upper-case hex characters taken from a random uuid.
// Uniqueness is checked by the caller against the store.
func GenerateAccountNumber() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw[:AccountNumberLength])
}

// ValidateAccountNumber validates an account number format
func ValidateAccountNumber(accountNumber string) bool {
	if len(accountNumber) != AccountNumberLength {
		return false
	}

	for _, char := range accountNumber {
		isDigit := char >= '0' && char <= '9'
		isUpperHex := char >= 'A' && char <= 'F'
		if !isDigit && !isUpperHex {
			return false
		}
	}

	return true
}
