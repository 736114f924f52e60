package handlers

import (
	"strconv"
	"strings"

	"banking-ledger/internal/models"

	"github.com/labstack/echo/v4"
)

func getIntParam(c echo.Context, name string, defaultValue int) int {
	param := c.QueryParam(name)
	if param == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(param)
	if err != nil {
		return defaultValue
	}

	return value
}

// accountNumberParam reads the :accountNumber path parameter in canonical form.
func accountNumberParam(c echo.Context) (string, bool) {
	number := strings.ToUpper(strings.TrimSpace(c.Param("accountNumber")))
	return number, models.ValidateAccountNumber(number)
}
