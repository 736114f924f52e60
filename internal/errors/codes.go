package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationUnknownField  ErrorCode = "VALIDATION_005"
)

// Account error codes (ACCOUNT_*)
const (
	AccountNotFound                ErrorCode = "ACCOUNT_001"
	AccountNotOperable             ErrorCode = "ACCOUNT_002"
	AccountInvalidType             ErrorCode = "ACCOUNT_003"
	AccountInvalidNumber           ErrorCode = "ACCOUNT_004"
	AccountInvalidStatusTransition ErrorCode = "ACCOUNT_005"
	AccountClosureNotAllowed       ErrorCode = "ACCOUNT_006"
	AccountInvalidLimit            ErrorCode = "ACCOUNT_007"
	AccountInvalidOwner            ErrorCode = "ACCOUNT_008"
)

// Transaction error codes (TRANSACTION_*)
const (
	TransactionInvalidAmount       ErrorCode = "TRANSACTION_001"
	TransactionInsufficientFunds   ErrorCode = "TRANSACTION_002"
	TransactionLimitExceeded       ErrorCode = "TRANSACTION_003"
	TransactionConcurrencyConflict ErrorCode = "TRANSACTION_004"
)

// Transfer error codes (TRANSFER_*)
const (
	TransferSameAccount ErrorCode = "TRANSFER_001"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemTimeout            ErrorCode = "SYSTEM_004"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_005"
	SystemRouteNotFound      ErrorCode = "SYSTEM_006"
	SystemMethodNotAllowed   ErrorCode = "SYSTEM_007"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Invalid field format",
	ValidationOutOfRange:    "Field value is out of allowed range",
	ValidationUnknownField:  "Request contains unknown fields",

	// Account errors
	AccountNotFound:                "Account not found",
	AccountNotOperable:             "Account status does not allow this operation",
	AccountInvalidType:             "Invalid account type",
	AccountInvalidNumber:           "Invalid account number",
	AccountInvalidStatusTransition: "Account status change not allowed",
	AccountClosureNotAllowed:       "Account cannot be closed",
	AccountInvalidLimit:            "Invalid account limit",
	AccountInvalidOwner:            "Invalid owner ID",

	// Transaction errors
	TransactionInvalidAmount:       "Amount must be positive with at most two decimal places",
	TransactionInsufficientFunds:   "Insufficient account balance for this transaction",
	TransactionLimitExceeded:       "Amount exceeds the account limit",
	TransactionConcurrencyConflict: "Account was modified concurrently. Please retry",

	// Transfer errors
	TransferSameAccount: "Cannot transfer to the same account",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please contact support with trace ID",
	SystemDatabaseError:      "Database connection error",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemTimeout:            "The request timed out. Please retry",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
	SystemRouteNotFound:      "Resource not found",
	SystemMethodNotAllowed:   "Method not allowed",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}

// IsRetryable reports whether a client may resend the same request unchanged.
func IsRetryable(code ErrorCode) bool {
	switch code {
	case TransactionConcurrencyConflict, SystemServiceUnavailable, SystemTimeout, SystemRateLimitExceeded:
		return true
	default:
		return false
	}
}
