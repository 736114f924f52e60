package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"banking-ledger/internal/repositories"
)

const storeServiceName = "ledger_store"

// StoreGuard runs units of work under a deadline and feeds their outcome to the
// store circuit breaker. Every service that touches the ledger store shares one.
type StoreGuard struct {
	uow     repositories.UnitOfWork
	breaker CircuitBreakerInterface
	metrics MetricsRecorderInterface
	audit   AuditLoggerInterface
	timeout time.Duration
}

// NewStoreGuard creates a guard. A zero timeout leaves the caller's deadline alone.
func NewStoreGuard(
	uow repositories.UnitOfWork,
	breaker CircuitBreakerInterface,
	metrics MetricsRecorderInterface,
	audit AuditLoggerInterface,
	timeout time.Duration,
) *StoreGuard {
	return &StoreGuard{
		uow:     uow,
		breaker: breaker,
		metrics: metrics,
		audit:   audit,
		timeout: timeout,
	}
}

// Do runs fn in one unit of work. Unclassified store failures come back wrapped in
// ErrStoreUnavailable; an open breaker rejects fn without calling it.
func (g *StoreGuard) Do(ctx context.Context, fn func(ctx context.Context, stores repositories.Stores) error) error {
	before := g.breaker.GetState()
	if g.breaker.IsOpen() {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, ErrCircuitBreakerOpen)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	err := g.uow.Do(ctx, fn)
	if isInfrastructureFailure(err) {
		g.breaker.RecordFailure()
		if !errors.Is(err, ErrStoreTimeout) {
			err = fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	} else {
		g.breaker.RecordSuccess()
	}

	g.observe(ctx, before)
	return err
}

func (g *StoreGuard) observe(ctx context.Context, before CircuitBreakerState) {
	after := g.breaker.GetState()
	if after == before {
		return
	}

	g.audit.LogCircuitBreakerStateChange(ctx, storeServiceName, before.String(), after.String())
	g.metrics.RecordGauge(MetricBreakerState, float64(after), map[string]string{"service": storeServiceName})
}
