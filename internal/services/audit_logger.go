package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type correlationIDKey struct{}

// WithCorrelationID returns a copy of ctx carrying id. Audit events read it back.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationID returns the id stored by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) AuditLoggerInterface {
	return &AuditLogger{
		logger: logger,
	}
}

func (al *AuditLogger) LogOperationCompleted(ctx context.Context, operationID uuid.UUID, operation string, durationMs int64) {
	al.logger.InfoContext(ctx, "operation completed",
		slog.String("event_type", "operation_completed"),
		slog.String("operation_id", operationID.String()),
		slog.String("operation", operation),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogOperationRejected(ctx context.Context, operation, reason, errorMsg string, durationMs int64) {
	al.logger.WarnContext(ctx, "operation rejected",
		slog.String("event_type", "operation_rejected"),
		slog.String("operation", operation),
		slog.String("reason", reason),
		slog.String("error", errorMsg),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogBalanceUpdate(ctx context.Context, accountID uuid.UUID, oldBalance, newBalance string, operationID uuid.UUID) {
	al.logger.InfoContext(ctx, "balance update",
		slog.String("event_type", "balance_update"),
		slog.String("account_id", accountID.String()),
		slog.String("old_balance", oldBalance),
		slog.String("new_balance", newBalance),
		slog.String("operation_id", operationID.String()),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogAccountCreated(ctx context.Context, accountID uuid.UUID, accountNumber, accountType string) {
	al.logger.InfoContext(ctx, "account created",
		slog.String("event_type", "account_created"),
		slog.String("account_id", accountID.String()),
		slog.String("account_number", accountNumber),
		slog.String("account_type", accountType),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogAccountStatusChange(ctx context.Context, accountID uuid.UUID, oldStatus, newStatus string) {
	al.logger.InfoContext(ctx, "account status change",
		slog.String("event_type", "account_status_change"),
		slog.String("account_id", accountID.String()),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogLimitsUpdate(ctx context.Context, accountID uuid.UUID, withdrawalLimit, transferLimit string) {
	al.logger.InfoContext(ctx, "account limits update",
		slog.String("event_type", "account_limits_update"),
		slog.String("account_id", accountID.String()),
		slog.String("daily_withdrawal_limit", withdrawalLimit),
		slog.String("daily_transfer_limit", transferLimit),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string) {
	al.logger.WarnContext(ctx, "circuit breaker state change",
		slog.String("event_type", "circuit_breaker_state_change"),
		slog.String("service", service),
		slog.String("old_state", oldState),
		slog.String("new_state", newState),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogReconciliationMismatch(ctx context.Context, accountID uuid.UUID, storedBalance, replayedBalance string, discrepancies int) {
	al.logger.ErrorContext(ctx, "reconciliation mismatch",
		slog.String("event_type", "reconciliation_mismatch"),
		slog.String("account_id", accountID.String()),
		slog.String("stored_balance", storedBalance),
		slog.String("replayed_balance", replayedBalance),
		slog.Int("discrepancies", discrepancies),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", CorrelationID(ctx)),
	)
}
