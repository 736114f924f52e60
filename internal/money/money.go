// Package money holds the fixed-point helpers used for every balance and ledger amount.
// Amounts are shopspring decimals kept at a scale of two fractional digits; binary
// floating point never enters a calculation.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by every stored amount.
const Scale int32 = 2

// DefaultCurrency is the settlement currency of every account.
const DefaultCurrency = "XAF"

var (
	ErrEmptyAmount    = errors.New("amount is required")
	ErrMalformed      = errors.New("amount must be numeric")
	ErrNotPositive    = errors.New("amount must be greater than zero")
	ErrScaleExceeded  = errors.New("amount must have at most 2 decimal places")
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// Parse converts a decimal string into an amount, rejecting values with more than
// two fractional digits instead of rounding them.
func Parse(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformed, trimmed)
	}

	if !HasValidScale(amount) {
		return decimal.Zero, ErrScaleExceeded
	}

	return amount, nil
}

// MustParse is Parse for constants known at compile time. It panics on bad input.
func MustParse(value string) decimal.Decimal {
	amount, err := Parse(value)
	if err != nil {
		panic(fmt.Sprintf("money: invalid constant %q: %v", value, err))
	}
	return amount
}

// HasValidScale reports whether the amount is exactly representable at Scale.
func HasValidScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(Scale))
}

// ValidatePositive checks an operation amount: strictly positive, at most two decimals.
func ValidatePositive(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrNotPositive
	}
	if !HasValidScale(amount) {
		return ErrScaleExceeded
	}
	return nil
}

// ValidateNonNegative checks a configured amount such as a limit or a fee.
func ValidateNonNegative(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if !HasValidScale(amount) {
		return ErrScaleExceeded
	}
	return nil
}

// Normalize pins an amount to Scale so that stored and compared values agree.
func Normalize(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Scale)
}

// Sum adds amounts exactly.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Format renders an amount with exactly two fractional digits.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(Scale)
}
