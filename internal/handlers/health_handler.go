package handlers

import (
	"net/http"
	"time"

	"banking-ledger/internal/errors"
	"banking-ledger/internal/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	db      *gorm.DB
	breaker services.CircuitBreakerInterface
}

// HealthStatus is the body of a healthy response.
type HealthStatus struct {
	Status       string `json:"status"`
	StoreBreaker string `json:"store_breaker"`
	Time         string `json:"time"`
}

// NewHealthCheckHandler creates a new health check handler
func NewHealthCheckHandler(db *gorm.DB, breaker services.CircuitBreakerInterface) *HealthCheckHandler {
	return &HealthCheckHandler{db: db, breaker: breaker}
}

// HealthCheck reports database connectivity and the ledger store breaker state
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthStatus "Service is healthy"
// @Failure 503 {object} errors.ErrorResponse "SYSTEM_003 - Database unreachable or store breaker open"
// @Router /health [get]
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return unavailable(c, "Database connection failed")
	}

	if err := sqlDB.PingContext(c.Request().Context()); err != nil {
		return unavailable(c, "Database connection failed")
	}

	state := h.breaker.GetState()
	if state == services.StateOpen {
		return unavailable(c, "Ledger store circuit breaker is open")
	}

	return c.JSON(http.StatusOK, HealthStatus{
		Status:       "healthy",
		StoreBreaker: state.String(),
		Time:         time.Now().UTC().Format(time.RFC3339),
	})
}

func unavailable(c echo.Context, detail string) error {
	traceID := getTraceIDFromContext(c)
	errorResponse := errors.NewErrorResponse(
		errors.SystemServiceUnavailable,
		traceID,
		errors.WithDetails(detail),
	)
	return c.JSON(http.StatusServiceUnavailable, errorResponse)
}

// Helper to get trace ID from context
func getTraceIDFromContext(c echo.Context) string {
	traceID := c.Response().Header().Get("X-Trace-ID")
	if traceID == "" {
		traceID = getTraceID(c)
	}
	if traceID == "" {
		traceID = "unknown"
	}
	return traceID
}
