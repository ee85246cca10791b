package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	SES      SESConfig      `yaml:"ses"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxIdleSecs int    `yaml:"conn_max_idle_secs"`
}

// RedisConfig holds the eligibility scan cache settings.
type RedisConfig struct {
	Addr            string `yaml:"addr"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	Enabled         bool   `yaml:"enabled"`
	ScanTTLSeconds  int    `yaml:"scan_ttl_seconds"`
}

// ScanTTL returns the eligibility scan cache TTL as a duration.
func (c RedisConfig) ScanTTL() time.Duration {
	return time.Duration(c.ScanTTLSeconds) * time.Second
}

// SESConfig holds AWS SES API configuration for warning emails.
type SESConfig struct {
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Enabled        bool   `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration.
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CleanupConfig holds the customer cleanup criteria and behavior flags.
type CleanupConfig struct {
	Enabled              bool `yaml:"enabled"`
	DryRun               bool `yaml:"dry_run"`
	InactiveDays         int  `yaml:"inactive_days"`
	NoOrdersDays         int  `yaml:"no_orders_days"`
	LastOrderYears       int  `yaml:"last_order_years"`
	IncludeNeverLoggedIn bool `yaml:"include_never_logged_in"`
	AnonymizeOrders      bool `yaml:"anonymize_orders"`
	DeleteAddresses      bool `yaml:"delete_addresses"`
	DeleteReviews        bool `yaml:"delete_reviews"`

	NotificationsEnabled bool   `yaml:"notifications_enabled"`
	WarningDays          int    `yaml:"warning_days"`
	SenderEmail          string `yaml:"sender_email"`
	SenderName           string `yaml:"sender_name"`
	EmailTemplate        string `yaml:"email_template"`
	StoreName            string `yaml:"store_name"`
	StoreURL             string `yaml:"store_url"`
}

// CleanupSnapshot is an immutable copy of CleanupConfig taken at the start
// of an evaluation or cleanup call, so every rule in one run sees the same
// settings even if the live config is reloaded mid-run.
type CleanupSnapshot struct {
	Enabled              bool
	DryRun               bool
	InactiveDays         int
	NoOrdersDays         int
	LastOrderYears       int
	IncludeNeverLoggedIn bool
	AnonymizeOrders      bool
	DeleteAddresses      bool
	DeleteReviews        bool
	NotificationsEnabled bool
	WarningDays          int
	SenderEmail          string
	SenderName           string
	EmailTemplate        string
	StoreName            string
	StoreURL             string
}

// Snapshot returns a value copy of the cleanup settings.
func (c CleanupConfig) Snapshot() CleanupSnapshot {
	return CleanupSnapshot(c)
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.ScanTTLSeconds == 0 {
		cfg.Redis.ScanTTLSeconds = 300
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-east-1"
	}
	if cfg.Cleanup.WarningDays == 0 {
		cfg.Cleanup.WarningDays = 30
	}
	if cfg.Cleanup.SenderEmail == "" {
		cfg.Cleanup.SenderEmail = "privacy@example.com"
	}
	if cfg.Cleanup.EmailTemplate == "" {
		cfg.Cleanup.EmailTemplate = "deletion_warning"
	}
	if cfg.Cleanup.StoreName == "" {
		cfg.Cleanup.StoreName = "Our Store"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so secrets
// can live in .env locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}

	// Safety overrides: operators can force dry-run or disable the module
	// entirely from the environment without touching the config file.
	if v := os.Getenv("CLEANUP_ENABLED"); v != "" {
		cfg.Cleanup.Enabled = parseBool(v)
	}
	if v := os.Getenv("CLEANUP_DRY_RUN"); v != "" {
		cfg.Cleanup.DryRun = parseBool(v)
	}

	return cfg, nil
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
