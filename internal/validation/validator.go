package validation

import (
	"reflect"
	"strings"

	"banking-ledger/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with the ledger's custom rules
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the custom rules registered. Field names in errors
// are the JSON names so they match what the client sent.
func New() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("account_number", validateAccountNumber)
	_ = v.RegisterValidation("account_type", validateAccountType)
	_ = v.RegisterValidation("account_status", validateAccountStatus)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates a struct against its validate tags
func (v *Validator) Struct(i interface{}) error {
	return v.validate.Struct(i)
}

// validateAccountNumber accepts a 20 character hexadecimal account number in either
// case; the engine upper-cases it before lookup.
func validateAccountNumber(fl validator.FieldLevel) bool {
	number := strings.ToUpper(strings.TrimSpace(fl.Field().String()))
	return models.ValidateAccountNumber(number)
}

// validateAccountType validates that account type is one of the supported types
func validateAccountType(fl validator.FieldLevel) bool {
	return models.IsValidAccountType(fl.Field().String())
}

// validateAccountStatus accepts statuses that can be set administratively. CLOSED
// is reached only through account closure.
func validateAccountStatus(fl validator.FieldLevel) bool {
	status := strings.ToUpper(fl.Field().String())
	return models.IsValidAccountStatus(status) && status != models.AccountStatusClosed
}
