package dto

import (
	"github.com/shopspring/decimal"
)

// Amounts accept either a JSON string ("1500.50") or a JSON number; both are parsed
// as exact decimals. Positivity and scale are checked by the engine.

// DepositRequest credits an account.
type DepositRequest struct {
	AccountNumber string          `json:"account_number" validate:"required,account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description" validate:"max=255"`
}

// WithdrawRequest debits an account plus the withdrawal fee.
type WithdrawRequest struct {
	AccountNumber string          `json:"account_number" validate:"required,account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description" validate:"max=255"`
}

// TransferRequest moves money between two accounts; the source also pays the fee.
type TransferRequest struct {
	SourceAccountNumber      string          `json:"source_account_number" validate:"required,account_number"`
	DestinationAccountNumber string          `json:"destination_account_number" validate:"required,account_number"`
	Amount                   decimal.Decimal `json:"amount"`
	Description              string          `json:"description" validate:"max=255"`
}

// PaginationParams contains pagination parameters
type PaginationParams struct {
	Offset int `query:"offset"`
	Limit  int `query:"limit"`
}
