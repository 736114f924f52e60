package handlers

import (
	"net/http"

	"banking-ledger/internal/dto"
	"banking-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

// TransactionHandler exposes the transaction engine
type TransactionHandler struct {
	engine services.TransactionEngineInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(engine services.TransactionEngineInterface) *TransactionHandler {
	return &TransactionHandler{engine: engine}
}

// Deposit credits an account
// @Summary Deposit
// @Tags Transactions
// @Accept json
// @Produce json
// @Param request body dto.DepositRequest true "Deposit details"
// @Success 201 {object} models.Transaction "Ledger entry written"
// @Failure 400 {object} errors.ErrorResponse "TRANSACTION_001 - Invalid amount"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001 - Account not found"
// @Failure 422 {object} errors.ErrorResponse "ACCOUNT_002 - Account not operable"
// @Router /api/v1/deposits [post]
func (h *TransactionHandler) Deposit(c echo.Context) error {
	var req dto.DepositRequest
	if reqErr := bindRequest(c, &req); reqErr != nil {
		return sendRequestError(c, reqErr)
	}

	entry, err := h.engine.Deposit(c.Request().Context(), req)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, entry)
}

// Withdraw debits an account plus the withdrawal fee
// @Summary Withdraw
// @Tags Transactions
// @Accept json
// @Produce json
// @Param request body dto.WithdrawRequest true "Withdrawal details"
// @Success 201 {object} services.WithdrawalResult "Withdrawal and fee entries"
// @Failure 422 {object} errors.ErrorResponse "TRANSACTION_002 - Insufficient funds or TRANSACTION_003 - Limit exceeded"
// @Router /api/v1/withdrawals [post]
func (h *TransactionHandler) Withdraw(c echo.Context) error {
	var req dto.WithdrawRequest
	if reqErr := bindRequest(c, &req); reqErr != nil {
		return sendRequestError(c, reqErr)
	}

	result, err := h.engine.Withdraw(c.Request().Context(), req)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

// Transfer moves money between two accounts
// @Summary Transfer
// @Tags Transactions
// @Accept json
// @Produce json
// @Param request body dto.TransferRequest true "Transfer details"
// @Success 201 {object} services.TransferResult "Transfer, fee and credit entries"
// @Failure 400 {object} errors.ErrorResponse "TRANSFER_001 - Same account"
// @Failure 409 {object} errors.ErrorResponse "TRANSACTION_004 - Concurrent modification, retry"
// @Failure 422 {object} errors.ErrorResponse "TRANSACTION_002 - Insufficient funds"
// @Router /api/v1/transfers [post]
func (h *TransactionHandler) Transfer(c echo.Context) error {
	var req dto.TransferRequest
	if reqErr := bindRequest(c, &req); reqErr != nil {
		return sendRequestError(c, reqErr)
	}

	result, err := h.engine.Transfer(c.Request().Context(), req)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}
