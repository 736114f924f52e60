package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"banking-ledger/internal/errors"
	"banking-ledger/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator implements echo.Validator interface
type CustomValidator struct {
	validator *validation.Validator
}

// NewValidator creates a new custom validator
func NewValidator() echo.Validator {
	return &CustomValidator{validator: validation.New()}
}

// Validate implements the echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// validationDetails flattens validator errors into "field: rule" strings.
func validationDetails(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule = fmt.Sprintf("%s=%s", rule, fe.Param())
		}
		details = append(details, fmt.Sprintf("%s: failed %s", fe.Field(), rule))
	}
	return details
}

// requestError is a rejected request body: the code to send and its details.
type requestError struct {
	code    errors.ErrorCode
	details []string
}

// bindRequest decodes a JSON body into dst, refusing unknown fields and trailing
// data, then validates it.
func bindRequest(c echo.Context, dst interface{}) *requestError {
	body := c.Request().Body
	if body == nil {
		return &requestError{code: errors.ValidationGeneral, details: []string{"Request body is required"}}
	}

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return &requestError{
				code:    errors.ValidationUnknownField,
				details: []string{strings.TrimPrefix(err.Error(), "json: ")},
			}
		}
		if err == io.EOF {
			return &requestError{code: errors.ValidationGeneral, details: []string{"Request body is required"}}
		}
		return &requestError{code: errors.ValidationGeneral, details: []string{"Invalid request body"}}
	}

	if decoder.More() {
		return &requestError{code: errors.ValidationGeneral, details: []string{"Unexpected data after request body"}}
	}

	if err := c.Validate(dst); err != nil {
		return &requestError{code: errors.ValidationGeneral, details: validationDetails(err)}
	}

	return nil
}

func sendRequestError(c echo.Context, reqErr *requestError) error {
	return SendError(c, reqErr.code, errors.WithDetails(reqErr.details...))
}
