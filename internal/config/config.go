package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ReadTimeoutSeconds     int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
}

// EmailConfig contains SendGrid settings. An empty API key logs emails instead of sending them.
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	// SendGridHost overrides the API host, e.g. https://api.eu.sendgrid.com.
	SendGridHost   string `yaml:"sendgrid_host"`
	From           string `yaml:"from"`
	FromName       string `yaml:"from_name"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret             string `yaml:"secret"`
	AccessTokenExpiry  int    `yaml:"access_token_expiry_minutes"`
	RefreshTokenExpiry int    `yaml:"refresh_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// LedgerConfig contains balance movement policies
type LedgerConfig struct {
	LockTimeoutMs         int      `yaml:"lock_timeout_ms"`
	MaxRetries            int      `yaml:"max_retries"`
	RetryBackoffMs        int      `yaml:"retry_backoff_ms"`
	OverdraftAccountTypes []string `yaml:"overdraft_account_types"`
	ObjectiveOverflow     string   `yaml:"objective_overflow"` // "accept" or "reject"
	DebtOverpayment       string   `yaml:"debt_overpayment"`   // "reject" or "clamp"
	DefaultCurrency       string   `yaml:"default_currency"`
}

const (
	ObjectiveOverflowAccept = "accept"
	ObjectiveOverflowReject = "reject"
	DebtOverpaymentReject   = "reject"
	DebtOverpaymentClamp    = "clamp"
)

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}
	if val := os.Getenv("SENDGRID_HOST"); val != "" {
		c.Email.SendGridHost = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.From = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Ledger
	if val := os.Getenv("LEDGER_OVERDRAFT_ACCOUNT_TYPES"); val != "" {
		c.Ledger.OverdraftAccountTypes = strings.Split(val, ",")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 15
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
	if c.JWT.RefreshTokenExpiry == 0 {
		c.JWT.RefreshTokenExpiry = 7 * 24 * 60
	}

	if c.Email.From == "" {
		c.Email.From = "no-reply@suivi-budget.local"
	}

	// Ledger defaults
	if c.Ledger.LockTimeoutMs <= 0 {
		c.Ledger.LockTimeoutMs = 2000
	}
	if c.Ledger.MaxRetries <= 0 {
		c.Ledger.MaxRetries = 3
	}
	if c.Ledger.RetryBackoffMs <= 0 {
		c.Ledger.RetryBackoffMs = 50
	}
	switch c.Ledger.ObjectiveOverflow {
	case "":
		c.Ledger.ObjectiveOverflow = ObjectiveOverflowAccept
	case ObjectiveOverflowAccept, ObjectiveOverflowReject:
	default:
		return fmt.Errorf("invalid ledger objective_overflow: %q", c.Ledger.ObjectiveOverflow)
	}
	switch c.Ledger.DebtOverpayment {
	case "":
		c.Ledger.DebtOverpayment = DebtOverpaymentReject
	case DebtOverpaymentReject, DebtOverpaymentClamp:
	default:
		return fmt.Errorf("invalid ledger debt_overpayment: %q", c.Ledger.DebtOverpayment)
	}
	if c.Ledger.DefaultCurrency == "" {
		c.Ledger.DefaultCurrency = "MGA"
	}

	// Scheduler defaults
	if c.Scheduler.RecomputeStatuses == "" {
		c.Scheduler.RecomputeStatuses = "0 5 0 * * *" // 00:05 UTC
	}
	if c.Scheduler.ChargeSubscriptions == "" {
		c.Scheduler.ChargeSubscriptions = "0 0 1 * * *" // 1 AM UTC
	}
	if c.Scheduler.SendDebtReminders == "" {
		c.Scheduler.SendDebtReminders = "0 0 8 * * *" // 8 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// AllowsOverdraft reports whether accounts of the given type may go negative.
func (l LedgerConfig) AllowsOverdraft(accountType string) bool {
	for _, t := range l.OverdraftAccountTypes {
		if strings.TrimSpace(t) == accountType {
			return true
		}
	}
	return false
}

func (l LedgerConfig) LockTimeout() time.Duration {
	return time.Duration(l.LockTimeoutMs) * time.Millisecond
}

func (l LedgerConfig) RetryBackoff() time.Duration {
	return time.Duration(l.RetryBackoffMs) * time.Millisecond
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	RecomputeStatuses   string `yaml:"recompute_statuses"`
	ChargeSubscriptions string `yaml:"charge_subscriptions"`
	SendDebtReminders   string `yaml:"send_debt_reminders"`
}
