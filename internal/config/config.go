// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Shopee    ShopeeConfig    `yaml:"shopee"`
	Database  DatabaseConfig  `yaml:"database"`
	Sync      SyncConfig      `yaml:"sync"`
	Server    ServerConfig    `yaml:"server"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Logging   LoggingConfig   `yaml:"logging"`
	TokenFile string          `yaml:"token_file"`
}

// ShopeeConfig defines the partner API credentials and client behavior.
type ShopeeConfig struct {
	PartnerID         int64           `yaml:"partner_id"`
	PartnerKey        string          `yaml:"partner_key"`
	ShopID            int64           `yaml:"shop_id"`
	Environment       string          `yaml:"environment"` // production, sandbox
	RedirectURI       string          `yaml:"redirect_uri"`
	APIVersion        string          `yaml:"api_version"`
	Retries           *int            `yaml:"retries"`
	WindowDays        int             `yaml:"window_days"`
	TokenExpiryMargin time.Duration   `yaml:"token_expiry_margin"`
	Verbose           bool            `yaml:"verbose"`
	RateLimit         RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines partner API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// SyncConfig defines the sync daemon schedule.
type SyncConfig struct {
	Interval time.Duration `yaml:"interval"`
	Lookback time.Duration `yaml:"lookback"`
}

// ServerConfig defines the daemon's HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TracingConfig defines OpenTelemetry export settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyShopeeDefaults(&cfg.Shopee)
	applyDatabaseDefaults(&cfg.Database)
	applySyncDefaults(&cfg.Sync)
	applyServerDefaults(&cfg.Server)
	applyTracingDefaults(&cfg.Tracing)
	applyLoggingDefaults(&cfg.Logging)
	if cfg.TokenFile == "" {
		cfg.TokenFile = "shopee-token.yaml"
	}
}

func applyShopeeDefaults(s *ShopeeConfig) {
	if s.Environment == "" {
		s.Environment = "production"
	}
	if s.APIVersion == "" {
		s.APIVersion = "v2"
	}
	if s.WindowDays == 0 {
		s.WindowDays = 15
	}
	if s.TokenExpiryMargin == 0 {
		s.TokenExpiryMargin = 500 * time.Second
	}
	applyRateLimitDefaults(&s.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 5000
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applySyncDefaults(s *SyncConfig) {
	if s.Interval == 0 {
		s.Interval = 15 * time.Minute
	}
	if s.Lookback == 0 {
		s.Lookback = 30 * 24 * time.Hour
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Shopee.PartnerID == 0 {
		errs = append(errs, fmt.Errorf("shopee.partner_id is required"))
	}
	if cfg.Shopee.PartnerKey == "" {
		errs = append(errs, fmt.Errorf("shopee.partner_key is required"))
	}
	switch cfg.Shopee.Environment {
	case "production", "sandbox":
	default:
		errs = append(errs, fmt.Errorf(
			"shopee.environment must be one of: production, sandbox (got %q)",
			cfg.Shopee.Environment,
		))
	}
	if cfg.Shopee.APIVersion != "v1" && cfg.Shopee.APIVersion != "v2" {
		errs = append(errs, fmt.Errorf(
			"shopee.api_version must be v1 or v2 (got %q)", cfg.Shopee.APIVersion,
		))
	}

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	return errors.Join(errs...)
}
