package services

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names accepted by PrometheusMetrics
const (
	MetricOperationSuccess  = "ledger.operation.success"
	MetricOperationRejected = "ledger.operation.rejected"
	MetricOperationAmount   = "ledger.operation.amount"
	MetricAccountCreated    = "account.created"
	MetricAccountStatus     = "account.status_changed"
	MetricBreakerState      = "circuit_breaker.state"
	MetricHTTPRequest       = "http.request"
	MetricReconciliation    = "reconciliation.completed"

	// RecordProcessingTime names are prefixed with this and the operation type.
	metricOperationDurationPrefix = "ledger.duration."
)

type PrometheusMetrics struct {
	operationsTotal     *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	operationAmount     *prometheus.HistogramVec
	accountsCreated     *prometheus.CounterVec
	statusChanges       *prometheus.CounterVec
	circuitBreakerState *prometheus.GaugeVec
	reconciliations     *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        prometheus.Histogram
}

// NewPrometheusMetrics registers the ledger collectors on reg. Passing a fresh
// registry per test keeps collectors from clashing.
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Total number of ledger operations by outcome",
			},
			[]string{"operation", "status"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_milliseconds",
				Help:    "Ledger operation duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"operation"},
		),
		operationAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_amount",
				Help:    "Amount moved by completed operations in currency units",
				Buckets: prometheus.ExponentialBuckets(1, 10, 8),
			},
			[]string{"operation"},
		),
		accountsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accounts_created_total",
				Help: "Total number of accounts opened",
			},
			[]string{"account_type"},
		),
		statusChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_status_changes_total",
				Help: "Total number of account status changes by new status",
			},
			[]string{"status"},
		),
		circuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
		reconciliations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_reconciliations_total",
				Help: "Total number of account reconciliations by result",
			},
			[]string{"result"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_milliseconds",
				Help:    "HTTP request duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	operation := tags["operation"]

	switch name {
	case MetricOperationSuccess:
		m.operationsTotal.WithLabelValues(operation, "success").Inc()
	case MetricOperationRejected:
		m.operationsTotal.WithLabelValues(operation, "rejected_"+tags["reason"]).Inc()
	case MetricAccountCreated:
		m.accountsCreated.WithLabelValues(tags["account_type"]).Inc()
	case MetricAccountStatus:
		if status := tags["status"]; status != "" {
			m.statusChanges.WithLabelValues(status).Inc()
		}
	case MetricReconciliation:
		m.reconciliations.WithLabelValues(tags["result"]).Inc()
	case MetricHTTPRequest:
		m.httpRequests.WithLabelValues(tags["method"], tags["route"], tags["status"]).Inc()
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	ms := float64(duration.Milliseconds())

	switch {
	case name == MetricHTTPRequest:
		m.httpDuration.Observe(ms)
	case strings.HasPrefix(name, metricOperationDurationPrefix):
		m.operationDuration.WithLabelValues(strings.TrimPrefix(name, metricOperationDurationPrefix)).Observe(ms)
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricOperationAmount:
		m.operationAmount.WithLabelValues(tags["operation"]).Observe(value)
	case MetricBreakerState:
		m.circuitBreakerState.WithLabelValues(tags["service"]).Set(value)
	}
}

// OperationDurationMetric is the RecordProcessingTime name for an operation type.
func OperationDurationMetric(operation string) string {
	return metricOperationDurationPrefix + operation
}
