package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: `
shopee:
  partner_id: 840226
  partner_key: secret-key
  shop_id: 73000
database:
  host: localhost
  name: orders
  user: sync
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, int64(840226), cfg.Shopee.PartnerID)
				assert.Equal(t, "secret-key", cfg.Shopee.PartnerKey)
				assert.Equal(t, int64(73000), cfg.Shopee.ShopID)
				assert.Equal(t, "localhost", cfg.Database.Host)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `
shopee:
  partner_id: 840226
  partner_key: secret-key
database:
  host: localhost
  name: orders
  user: sync
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "production", cfg.Shopee.Environment)
				assert.Equal(t, "v2", cfg.Shopee.APIVersion)
				assert.Equal(t, 15, cfg.Shopee.WindowDays)
				assert.Equal(t, 500*time.Second, cfg.Shopee.TokenExpiryMargin)
				assert.Nil(t, cfg.Shopee.Retries)
				assert.Equal(t, 5.0, cfg.Shopee.RateLimit.PerSecond)
				assert.Equal(t, 10, cfg.Shopee.RateLimit.Burst)
				assert.Equal(t, int64(5000), cfg.Shopee.RateLimit.DailyLimit)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 10, cfg.Database.PoolSize)
				assert.Equal(t, 15*time.Minute, cfg.Sync.Interval)
				assert.Equal(t, 30*24*time.Hour, cfg.Sync.Lookback)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
				assert.Equal(t, "shopee-token.yaml", cfg.TokenFile)
			},
		},
		{
			name: "env var substitution",
			yaml: `
shopee:
  partner_id: 840226
  partner_key: "${TEST_PARTNER_KEY}"
database:
  host: localhost
  name: orders
  user: sync
`,
			envVars: map[string]string{
				"TEST_PARTNER_KEY": "from-env",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "from-env", cfg.Shopee.PartnerKey)
			},
		},
		{
			name: "missing partner_id",
			yaml: `
shopee:
  partner_key: secret-key
database:
  host: localhost
  name: orders
  user: sync
`,
			wantErr: "shopee.partner_id is required",
		},
		{
			name: "missing partner_key",
			yaml: `
shopee:
  partner_id: 840226
database:
  host: localhost
  name: orders
  user: sync
`,
			wantErr: "shopee.partner_key is required",
		},
		{
			name: "invalid environment",
			yaml: `
shopee:
  partner_id: 840226
  partner_key: secret-key
  environment: staging
database:
  host: localhost
  name: orders
  user: sync
`,
			wantErr: `shopee.environment must be one of: production, sandbox (got "staging")`,
		},
		{
			name: "invalid api version",
			yaml: `
shopee:
  partner_id: 840226
  partner_key: secret-key
  api_version: v3
database:
  host: localhost
  name: orders
  user: sync
`,
			wantErr: `shopee.api_version must be v1 or v2 (got "v3")`,
		},
		{
			name: "missing required database.host",
			yaml: `
shopee:
  partner_id: 840226
  partner_key: secret-key
database:
  name: orders
  user: sync
`,
			wantErr: "database.host is required",
		},
		{
			name:    "invalid YAML",
			yaml:    `{{{not valid yaml`,
			wantErr: "parsing config YAML",
		},
		{
			name: "full config with overrides",
			yaml: `
shopee:
  partner_id: 840226
  partner_key: secret-key
  shop_id: 73000
  environment: sandbox
  redirect_uri: https://example.com/callback
  api_version: v1
  retries: 0
  window_days: 7
  token_expiry_margin: 10m
  verbose: true
  rate_limit:
    per_second: 2.5
    burst: 5
    daily_limit: 1000
database:
  host: db.example.com
  port: 5433
  name: orders_prod
  user: admin
  password: pass
  sslmode: require
  pool_size: 20
sync:
  interval: 30m
  lookback: 168h
server:
  host: "127.0.0.1"
  port: 9090
tracing:
  enabled: true
  endpoint: otel-collector:4317
  sample_ratio: 0.25
logging:
  level: debug
  format: json
token_file: /var/lib/shopee/token.yaml
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "sandbox", cfg.Shopee.Environment)
				assert.Equal(t, "v1", cfg.Shopee.APIVersion)
				require.NotNil(t, cfg.Shopee.Retries)
				// An explicit zero survives and means a single attempt.
				assert.Equal(t, 0, *cfg.Shopee.Retries)
				assert.Equal(t, 7, cfg.Shopee.WindowDays)
				assert.Equal(t, 10*time.Minute, cfg.Shopee.TokenExpiryMargin)
				assert.True(t, cfg.Shopee.Verbose)
				assert.Equal(t, 2.5, cfg.Shopee.RateLimit.PerSecond)
				assert.Equal(t, int64(1000), cfg.Shopee.RateLimit.DailyLimit)
				assert.Equal(t, "db.example.com", cfg.Database.Host)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, 30*time.Minute, cfg.Sync.Interval)
				assert.Equal(t, 7*24*time.Hour, cfg.Sync.Lookback)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.True(t, cfg.Tracing.Enabled)
				assert.Equal(t, "otel-collector:4317", cfg.Tracing.Endpoint)
				assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "/var/lib/shopee/token.yaml", cfg.TokenFile)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only parallelize tests that don't modify env vars.
			if len(tt.envVars) == 0 {
				t.Parallel()
			}

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "orders",
		User:     "sync",
		Password: "testpass",
		SSLMode:  "disable",
	}
	assert.Equal(
		t,
		"host=localhost port=5432 dbname=orders user=sync password=testpass sslmode=disable",
		cfg.DSN(),
	)
}
