package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"banking-ledger/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstrumentedEcho(t *testing.T) (*echo.Echo, *prometheus.Registry, *bytes.Buffer) {
	t.Helper()

	reg := prometheus.NewRegistry()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))

	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(discardLogger())
	e.Use(RequestID())
	e.Use(RequestMetrics(services.NewPrometheusMetrics(reg), logger))

	e.GET("/api/v1/accounts/:accountNumber", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"account_number": c.Param("accountNumber")})
	})
	e.POST("/api/v1/deposits", func(c echo.Context) error {
		return errors.New("unhandled")
	})
	return e, reg, logs
}

func TestRequestMetrics_CountsByRouteTemplate(t *testing.T) {
	e, reg, logs := newInstrumentedEcho(t)

	for _, number := range []string{"0A1B2C3D4E5F60718293", "FEDCBA98765432100123"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+number, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	expected := `
# HELP http_requests_total Total number of HTTP requests
# TYPE http_requests_total counter
http_requests_total{method="GET",route="/api/v1/accounts/:accountNumber",status="200"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "http_requests_total"))
	assert.Contains(t, logs.String(), `"msg":"request completed"`)
	assert.Contains(t, logs.String(), `"trace_id"`)
}

func TestRequestMetrics_RecordsFinalStatusOfErrors(t *testing.T) {
	e, reg, logs := newInstrumentedEcho(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/deposits", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	expected := `
# HELP http_requests_total Total number of HTTP requests
# TYPE http_requests_total counter
http_requests_total{method="POST",route="/api/v1/deposits",status="500"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "http_requests_total"))
	assert.Contains(t, logs.String(), `"level":"ERROR"`)
	count, err := testutil.GatherAndCount(reg, "http_request_duration_milliseconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
