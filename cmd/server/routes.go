package main

import (
	"log/slog"

	"banking-ledger/internal/config"
	"banking-ledger/internal/handlers"
	"banking-ledger/internal/middleware"
	"banking-ledger/internal/policy"
	"banking-ledger/internal/repositories"
	"banking-ledger/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const requestBodyLimit = "64K"

// newServer wires the stores, services and handlers onto a fresh echo instance.
func newServer(
	cfg *config.Config,
	db *gorm.DB,
	pol *policy.Policy,
	registry *prometheus.Registry,
	limiter *middleware.IPRateLimiter,
	logger *slog.Logger,
) (*echo.Echo, error) {
	ipExtractor, err := middleware.NewIPExtractor(cfg.Security.TrustedProxies)
	if err != nil {
		return nil, err
	}

	metrics := services.NewPrometheusMetrics(registry)
	audit := services.NewAuditLogger(logger)

	breaker := services.NewCircuitBreaker(services.CircuitBreakerConfig{
		MaxFailures:     cfg.Ledger.BreakerMaxFailures,
		ResetTimeout:    cfg.Ledger.BreakerResetTimeout,
		HalfOpenMaxSucc: cfg.Ledger.BreakerHalfOpenSuccess,
	})
	uow := repositories.NewUnitOfWork(db, cfg.Ledger.LockTimeout)
	store := services.NewStoreGuard(uow, breaker, metrics, audit, cfg.Ledger.OperationTimeout)

	engine := services.NewTransactionEngine(store, pol, metrics, audit, logger)
	accountService := services.NewAccountService(store, pol, metrics, audit, logger, cfg.Ledger.InitialAccountStatus)
	reconciliationService := services.NewReconciliationService(store, metrics, audit)

	accountHandler := handlers.NewAccountHandler(accountService, reconciliationService)
	transactionHandler := handlers.NewTransactionHandler(engine)
	healthHandler := handlers.NewHealthCheckHandler(db, breaker)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = ipExtractor
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.NewHTTPErrorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestMetrics(metrics, logger))
	e.Use(middleware.PanicRecovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.Server.CORSAllowOrigins,
		AllowMethods:  []string{echo.GET, echo.POST, echo.PATCH},
		AllowHeaders:  []string{echo.HeaderContentType, middleware.TraceIDHeader},
		ExposeHeaders: []string{middleware.TraceIDHeader},
	}))
	e.Use(echomw.BodyLimit(requestBodyLimit))

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	api := e.Group("/api/v1", limiter.Middleware())

	api.POST("/accounts", accountHandler.CreateAccount)
	api.GET("/accounts/:accountNumber", accountHandler.GetAccount)
	api.PATCH("/accounts/:accountNumber/status", accountHandler.UpdateAccountStatus)
	api.PATCH("/accounts/:accountNumber/limits", accountHandler.UpdateLimits)
	api.POST("/accounts/:accountNumber/close", accountHandler.CloseAccount)
	api.GET("/accounts/:accountNumber/ledger", accountHandler.GetLedger)
	api.GET("/accounts/:accountNumber/reconciliation", accountHandler.Reconcile)
	api.GET("/owners/:ownerId/accounts", accountHandler.GetOwnerAccounts)

	api.POST("/deposits", transactionHandler.Deposit)
	api.POST("/withdrawals", transactionHandler.Withdraw)
	api.POST("/transfers", transactionHandler.Transfer)

	return e, nil
}
