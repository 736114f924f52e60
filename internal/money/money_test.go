package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{name: "integer", input: "250", expected: "250"},
		{name: "two decimals", input: "2.50", expected: "2.5"},
		{name: "surrounding spaces", input: "  10.01 ", expected: "10.01"},
		{name: "negative parses", input: "-1.00", expected: "-1"},
		{name: "empty", input: "   ", err: ErrEmptyAmount},
		{name: "not numeric", input: "ten", err: ErrMalformed},
		{name: "three decimals", input: "1.005", err: ErrScaleExceeded},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			amount, err := Parse(tc.input)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.expected).Equal(amount), "got %s", amount)
		})
	}
}

func TestMustParse_PanicsOnInvalidConstant(t *testing.T) {
	assert.Panics(t, func() { MustParse("1.999") })
	assert.NotPanics(t, func() { MustParse("1.99") })
}

func TestValidatePositive(t *testing.T) {
	assert.NoError(t, ValidatePositive(decimal.RequireFromString("0.01")))
	assert.ErrorIs(t, ValidatePositive(decimal.Zero), ErrNotPositive)
	assert.ErrorIs(t, ValidatePositive(decimal.RequireFromString("-5")), ErrNotPositive)
	assert.ErrorIs(t, ValidatePositive(decimal.RequireFromString("0.001")), ErrScaleExceeded)
}

func TestValidateNonNegative(t *testing.T) {
	assert.NoError(t, ValidateNonNegative(decimal.Zero))
	assert.ErrorIs(t, ValidateNonNegative(decimal.RequireFromString("-0.01")), ErrNegativeAmount)
	assert.ErrorIs(t, ValidateNonNegative(decimal.RequireFromString("3.141")), ErrScaleExceeded)
}

func TestSum_IsExactOverManyEntries(t *testing.T) {
	cent := decimal.RequireFromString("0.01")
	amounts := make([]decimal.Decimal, 10000)
	for i := range amounts {
		amounts[i] = cent
	}

	assert.True(t, decimal.NewFromInt(100).Equal(Sum(amounts...)))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "250.00", Format(decimal.NewFromInt(250)))
	assert.Equal(t, "0.10", Format(decimal.RequireFromString("0.1")))
}
