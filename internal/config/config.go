package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"banking-ledger/internal/models"
	"banking-ledger/internal/policy"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Ledger   LedgerConfig
	Security SecurityConfig
	Policy   policy.Config
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	LogLevel         string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	SQLitePath      string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	SeedDatabase    bool
}

// LedgerConfig bounds every unit of work and tunes the store circuit breaker.
type LedgerConfig struct {
	OperationTimeout       time.Duration
	LockTimeout            time.Duration
	InitialAccountStatus   string
	BreakerMaxFailures     int
	BreakerResetTimeout    time.Duration
	BreakerHalfOpenSuccess int
}

type SecurityConfig struct {
	RateLimitPerSecond int
	RateLimitBurst     int
	// TrustedProxies lists the CIDR ranges allowed to set X-Forwarded-For. When empty
	// the client address is the TCP peer.
	TrustedProxies []string
}

func Load() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "localhost"),
			Environment:     getEnv("APP_ENV", "development"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "ledger_user"),
			Password:        getEnv("DB_PASSWORD", "ledger_password"),
			Name:            getEnv("DB_NAME", "ledger_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:      getEnv("DB_SQLITE_PATH", "ledger.db"),
			MaxConnections:  getIntEnv("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			AutoMigrate:     getBoolEnv("AUTO_MIGRATE", false),
			SeedDatabase:    getBoolEnv("SEED_DATABASE", false),
		},
		Ledger: LedgerConfig{
			OperationTimeout:       getDurationEnv("LEDGER_OPERATION_TIMEOUT", 5*time.Second),
			LockTimeout:            getDurationEnv("LEDGER_LOCK_TIMEOUT", 2*time.Second),
			InitialAccountStatus:   strings.ToUpper(getEnv("LEDGER_INITIAL_ACCOUNT_STATUS", models.AccountStatusPending)),
			BreakerMaxFailures:     getIntEnv("LEDGER_BREAKER_MAX_FAILURES", 5),
			BreakerResetTimeout:    getDurationEnv("LEDGER_BREAKER_RESET_TIMEOUT", 30*time.Second),
			BreakerHalfOpenSuccess: getIntEnv("LEDGER_BREAKER_HALF_OPEN_SUCCESSES", 2),
		},
		Security: SecurityConfig{
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 40),
			TrustedProxies:     getListEnv("TRUSTED_PROXIES"),
		},
		Policy: loadPolicy(),
	}

	config.Server.CORSAllowOrigins = config.loadCORSAllowOrigins()

	return config
}

// Validate reports configuration that would make the ledger misbehave at runtime.
func (c *Config) Validate() error {
	if c.Ledger.OperationTimeout <= 0 {
		return fmt.Errorf("LEDGER_OPERATION_TIMEOUT must be positive")
	}
	if c.Ledger.LockTimeout < 0 {
		return fmt.Errorf("LEDGER_LOCK_TIMEOUT cannot be negative")
	}
	switch c.Ledger.InitialAccountStatus {
	case models.AccountStatusPending, models.AccountStatusActive:
	default:
		return fmt.Errorf("LEDGER_INITIAL_ACCOUNT_STATUS must be %s or %s", models.AccountStatusPending, models.AccountStatusActive)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	for _, cidr := range c.Security.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not a CIDR range", cidr)
		}
	}
	if _, err := policy.New(c.Policy); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *ServerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadPolicy starts from the reference table and applies POLICY_<TYPE>_* and FEE_*
// overrides, e.g. POLICY_FIXED_DEPOSIT_DAILY_WITHDRAWAL_LIMIT or FEE_TRANSFER.
func loadPolicy() policy.Config {
	cfg := policy.DefaultConfig()

	for accountType, limits := range cfg.Limits {
		prefix := "POLICY_" + envKey(accountType) + "_"
		limits.InterestRate = getDecimalEnv(prefix+"INTEREST_RATE", limits.InterestRate)
		limits.DailyWithdrawalLimit = getDecimalEnv(prefix+"DAILY_WITHDRAWAL_LIMIT", limits.DailyWithdrawalLimit)
		limits.DailyTransferLimit = getDecimalEnv(prefix+"DAILY_TRANSFER_LIMIT", limits.DailyTransferLimit)
		cfg.Limits[accountType] = limits
	}

	for op, fee := range cfg.Fees {
		cfg.Fees[op] = getDecimalEnv("FEE_"+envKey(op), fee)
	}

	return cfg
}

func envKey(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getDecimalEnv(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if amount, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil {
			return amount
		}
		slog.Warn("ignoring malformed decimal setting", "key", key, "value", value)
	}
	return defaultValue
}

// getListEnv splits a comma separated variable, dropping blank items.
func getListEnv(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// loadCORSAllowOrigins retrieves CORS allowed origins from environment or returns default
func (c *Config) loadCORSAllowOrigins() []string {
	corsOrigins := os.Getenv("CORS_ALLOW_ORIGINS")

	if corsOrigins == "" {
		if c.IsProduction() {
			slog.Warn("CORS_ALLOW_ORIGINS not set in production, allowing all origins")
		}
		return []string{"*"}
	}

	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	return origins
}
