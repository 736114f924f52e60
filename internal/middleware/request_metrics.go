package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"banking-ledger/internal/services"

	"github.com/labstack/echo/v4"
)

// RequestMetrics counts requests by route and status and logs one line per request.
// Register it after RequestID so the trace id is available.
func RequestMetrics(metrics services.MetricsRecorderInterface, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}

			duration := time.Since(start)
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			metrics.IncrementCounter(services.MetricHTTPRequest, map[string]string{
				"method": c.Request().Method,
				"route":  route,
				"status": strconv.Itoa(status),
			})
			metrics.RecordProcessingTime(services.MetricHTTPRequest, duration)

			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			} else if status >= 400 {
				level = slog.LevelWarn
			}
			logger.Log(c.Request().Context(), level, "request completed",
				"trace_id", GetTraceID(c),
				"method", c.Request().Method,
				"route", route,
				"status", status,
				"duration_ms", duration.Milliseconds(),
			)

			return nil
		}
	}
}
