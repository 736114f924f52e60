package handlers

import (
	"net/http"

	"banking-ledger/internal/dto"
	"banking-ledger/internal/errors"
	"banking-ledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService        services.AccountServiceInterface
	reconciliationService services.ReconciliationServiceInterface
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService services.AccountServiceInterface, reconciliationService services.ReconciliationServiceInterface) *AccountHandler {
	return &AccountHandler{
		accountService:        accountService,
		reconciliationService: reconciliationService,
	}
}

// CreateAccount opens a new account with the defaults of its account type
// @Summary Create a new account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body dto.CreateAccountRequest true "Account creation details"
// @Success 201 {object} models.Account "Account created successfully"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request body or validation error"
// @Failure 503 {object} errors.ErrorResponse "SYSTEM_003 - Ledger store unavailable"
// @Router /api/v1/accounts [post]
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	var req dto.CreateAccountRequest
	if reqErr := bindRequest(c, &req); reqErr != nil {
		return sendRequestError(c, reqErr)
	}

	account, err := h.accountService.CreateAccount(c.Request().Context(), req)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, account)
}

// GetAccount retrieves a specific account by number
// @Summary Get account by number
// @Tags Accounts
// @Produce json
// @Param accountNumber path string true "Account number"
// @Success 200 {object} models.Account "Account details"
// @Failure 400 {object} errors.ErrorResponse "ACCOUNT_004 - Invalid account number"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001 - Account not found"
// @Router /api/v1/accounts/{accountNumber} [get]
func (h *AccountHandler) GetAccount(c echo.Context) error {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return SendError(c, errors.AccountInvalidNumber)
	}

	account, err := h.accountService.GetAccountByNumber(c.Request().Context(), accountNumber)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, account)
}

// GetOwnerAccounts lists every account held by one owner
// @Summary Get all accounts of an owner
// @Tags Accounts
// @Produce json
// @Param ownerId path string true "Owner ID (UUID)"
// @Success 200 {object} dto.AccountListResponse "Owner's accounts"
// @Failure 400 {object} errors.ErrorResponse "ACCOUNT_008 - Invalid owner ID"
// @Router /api/v1/owners/{ownerId}/accounts [get]
func (h *AccountHandler) GetOwnerAccounts(c echo.Context) error {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil || ownerID == uuid.Nil {
		return SendError(c, errors.AccountInvalidOwner)
	}

	accounts, err := h.accountService.GetOwnerAccounts(c.Request().Context(), ownerID)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.AccountListResponse{
		Accounts: accounts,
		Total:    len(accounts),
	})
}

// UpdateAccountStatus changes the administrative status of an account
// @Summary Update account status
// @Tags Accounts
// @Accept json
// @Produce json
// @Param accountNumber path string true "Account number"
// @Param request body dto.UpdateAccountStatusRequest true "New account status"
// @Success 200 {object} models.Account "Updated account details"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001 - Account not found"
// @Failure 409 {object} errors.ErrorResponse "ACCOUNT_005 - Status change not allowed"
// @Router /api/v1/accounts/{accountNumber}/status [patch]
func (h *AccountHandler) UpdateAccountStatus(c echo.Context) error {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return SendError(c, errors.AccountInvalidNumber)
	}

	var req dto.UpdateAccountStatusRequest
	if reqErr := bindRequest(c, &req); reqErr != nil {
		return sendRequestError(c, reqErr)
	}

	account, err := h.accountService.UpdateAccountStatus(c.Request().Context(), accountNumber, req.Status)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, account)
}

// UpdateLimits changes the withdrawal and transfer limits of an account
// @Summary Update account limits
// @Tags Accounts
// @Accept json
// @Produce json
// @Param accountNumber path string true "Account number"
// @Param request body dto.UpdateLimitsRequest true "New limits"
// @Success 200 {object} models.Account "Updated account details"
// @Failure 400 {object} errors.ErrorResponse "ACCOUNT_007 - Invalid limit"
// @Router /api/v1/accounts/{accountNumber}/limits [patch]
func (h *AccountHandler) UpdateLimits(c echo.Context) error {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return SendError(c, errors.AccountInvalidNumber)
	}

	var req dto.UpdateLimitsRequest
	if reqErr := bindRequest(c, &req); reqErr != nil {
		return sendRequestError(c, reqErr)
	}

	account, err := h.accountService.UpdateLimits(c.Request().Context(), accountNumber, req)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, account)
}

// CloseAccount closes an account whose balance is zero
// @Summary Close account
// @Tags Accounts
// @Produce json
// @Param accountNumber path string true "Account number"
// @Success 200 {object} models.Account "Closed account"
// @Failure 409 {object} errors.ErrorResponse "ACCOUNT_006 - Account cannot be closed"
// @Router /api/v1/accounts/{accountNumber}/close [post]
func (h *AccountHandler) CloseAccount(c echo.Context) error {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return SendError(c, errors.AccountInvalidNumber)
	}

	account, err := h.accountService.CloseAccount(c.Request().Context(), accountNumber)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, account)
}

// GetLedger returns one page of an account's ledger, oldest entry first
// @Summary Get account ledger
// @Tags Ledger
// @Produce json
// @Param accountNumber path string true "Account number"
// @Param offset query int false "Entries to skip" default(0)
// @Param limit query int false "Page size (max 200)" default(50)
// @Success 200 {object} dto.LedgerPageResponse "Ledger page"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001 - Account not found"
// @Router /api/v1/accounts/{accountNumber}/ledger [get]
func (h *AccountHandler) GetLedger(c echo.Context) error {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return SendError(c, errors.AccountInvalidNumber)
	}

	offset := getIntParam(c, "offset", 0)
	limit := getIntParam(c, "limit", services.DefaultPageSize)

	page, err := h.accountService.GetLedger(c.Request().Context(), accountNumber, offset, limit)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, page)
}

// Reconcile replays an account's ledger and compares it with the stored balance
// @Summary Reconcile account
// @Tags Ledger
// @Produce json
// @Param accountNumber path string true "Account number"
// @Success 200 {object} services.ReconciliationReport "Reconciliation report"
// @Failure 404 {object} errors.ErrorResponse "ACCOUNT_001 - Account not found"
// @Router /api/v1/accounts/{accountNumber}/reconciliation [get]
func (h *AccountHandler) Reconcile(c echo.Context) error {
	accountNumber, ok := accountNumberParam(c)
	if !ok {
		return SendError(c, errors.AccountInvalidNumber)
	}

	report, err := h.reconciliationService.Reconcile(c.Request().Context(), accountNumber)
	if err != nil {
		return SendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, report)
}
