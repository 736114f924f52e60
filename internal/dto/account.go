package dto

import (
	"banking-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// Account Request DTOs

// CreateAccountRequest opens an account. Rates and limits come from the account type
// and cannot be supplied here.
type CreateAccountRequest struct {
	OwnerID     string `json:"owner_id" validate:"required,uuid"`
	AccountName string `json:"account_name" validate:"required,min=1,max=100"`
	AccountType string `json:"account_type" validate:"required,account_type"`
}

// UpdateAccountStatusRequest represents the request payload for updating account status
type UpdateAccountStatusRequest struct {
	Status string `json:"status" validate:"required,account_status"`
}

// UpdateLimitsRequest changes the per-operation ceilings of an existing account.
// Omitted fields keep their current value.
type UpdateLimitsRequest struct {
	DailyWithdrawalLimit *decimal.Decimal `json:"daily_withdrawal_limit"`
	DailyTransferLimit   *decimal.Decimal `json:"daily_transfer_limit"`
}

// Account Response DTOs

// AccountListResponse represents the accounts of one owner
type AccountListResponse struct {
	Accounts []models.Account `json:"accounts"`
	Total    int              `json:"total"`
}

// LedgerPageResponse is one page of an account's ledger, oldest entry first.
type LedgerPageResponse struct {
	AccountNumber string               `json:"account_number"`
	Entries       []models.Transaction `json:"entries"`
	Total         int64                `json:"total"`
	Offset        int                  `json:"offset"`
	Limit         int                  `json:"limit"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
