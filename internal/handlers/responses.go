package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	"banking-ledger/internal/errors"
	"banking-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

// STANDARDIZED ERROR HANDLING PATTERNS
//
// All handlers must use the following standardized error response functions:
//
// 1. SendError - For request errors detected in the handler itself (4xx responses)
//    Use cases:
//    - Validation errors: SendError(c, errors.ValidationGeneral, errors.WithDetails("..."))
//    - Malformed path parameters: SendError(c, errors.AccountInvalidNumber)
//
// 2. SendServiceError - For every error returned by a service
//    Ledger rule rejections keep their message as a detail; store failures are
//    reported without internal details.
//
// 3. SendSystemError - For unexpected errors (500 responses)
//
// DO NOT USE:
//    - echo.NewHTTPError() - Use SendError or SendSystemError instead
//    - Direct c.JSON() for errors - Use the helper functions
//    - return err without wrapping - Use SendSystemError to protect internal details

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
)

// SuccessResponse represents a standard success response
// Used for successful API responses with data, messages, and metadata
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse is an alias for the standardized error response type
type ErrorResponse = errors.ErrorResponse

// getTraceID extracts the trace ID from the Echo context
func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SendError sends a standardized error response with trace ID from context.
// Retryable codes also get a Retry-After header.
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	traceID := getTraceID(c)
	errorResponse := errors.NewErrorResponse(code, traceID, opts...)
	if errorResponse.Retryable() {
		c.Response().Header().Set("Retry-After", errors.RetryAfterSeconds)
	}
	return c.JSON(errorResponse.GetHTTPStatus(), errorResponse)
}

// SendSystemError wraps a system error with generic message and logs the internal error
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	errorResponse, internalErr := errors.WrapSystemError(err, traceID)
	slog.ErrorContext(c.Request().Context(), "request failed",
		"trace_id", traceID,
		"path", c.Path(),
		"client_ip", c.RealIP(),
		"error", internalErr,
	)
	return c.JSON(http.StatusInternalServerError, errorResponse)
}

// SendServiceError maps a service error onto its API error code.
func SendServiceError(c echo.Context, err error) error {
	code, ok := serviceErrorCode(err)
	if !ok {
		return SendSystemError(c, err)
	}

	// retryable failures carry no detail; the store error text is internal
	if errors.IsRetryable(code) {
		return SendError(c, code)
	}

	return SendError(c, code, errors.WithDetails(err.Error()))
}

// serviceErrorCode reports the code for a known service error. Store failures are
// checked first because they may wrap other sentinels.
func serviceErrorCode(err error) (errors.ErrorCode, bool) {
	switch {
	case stderrors.Is(err, services.ErrStoreTimeout), stderrors.Is(err, context.DeadlineExceeded):
		return errors.SystemTimeout, true
	case stderrors.Is(err, services.ErrStoreUnavailable):
		return errors.SystemServiceUnavailable, true
	case stderrors.Is(err, services.ErrConcurrencyConflict):
		return errors.TransactionConcurrencyConflict, true
	case stderrors.Is(err, context.Canceled):
		// the client is gone; the status is only seen in access logs
		return errors.SystemTimeout, true
	case stderrors.Is(err, services.ErrAccountNotFound):
		return errors.AccountNotFound, true
	case stderrors.Is(err, services.ErrInvalidAmount):
		return errors.TransactionInvalidAmount, true
	case stderrors.Is(err, services.ErrAccountNotOperable):
		return errors.AccountNotOperable, true
	case stderrors.Is(err, services.ErrInsufficientFunds):
		return errors.TransactionInsufficientFunds, true
	case stderrors.Is(err, services.ErrLimitExceeded):
		return errors.TransactionLimitExceeded, true
	case stderrors.Is(err, services.ErrSameAccountTransfer):
		return errors.TransferSameAccount, true
	case stderrors.Is(err, services.ErrInvalidAccountType):
		return errors.AccountInvalidType, true
	case stderrors.Is(err, services.ErrInvalidOwner):
		return errors.AccountInvalidOwner, true
	case stderrors.Is(err, services.ErrInvalidAccountName):
		return errors.ValidationRequiredField, true
	case stderrors.Is(err, services.ErrInvalidStatusTransition):
		return errors.AccountInvalidStatusTransition, true
	case stderrors.Is(err, services.ErrInvalidLimit):
		return errors.AccountInvalidLimit, true
	case stderrors.Is(err, services.ErrAccountClosureNotAllowed):
		return errors.AccountClosureNotAllowed, true
	default:
		return "", false
	}
}
