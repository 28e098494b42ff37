package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"STORE_DRIVER", "DB_CONN_STR", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "SQLITE_PATH",
	"HTTP_PORT", "GRPC_PORT", "JWT_SECRET", "LOCK_DRIVER", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"LOCK_TTL", "LOG_LEVEL", "LOG_PRETTY", "CURRENCY", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

// clearEnv blanks every key Load reads; empty values are ignored by the overrides
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, LockMemory, cfg.Lock.Driver)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, 8080, cfg.Server.GRPCPort)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=investfolio sslmode=disable", cfg.DSN())

	ttl, err := cfg.LockTTL()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, ttl)
}

func TestLoad_TOMLThenEnv(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "investfolio.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
currency = "USD"

[store]
driver = "sqlite"
sqlite_path = "/tmp/folio.db"

[server]
http_port = 9000

[lock]
driver = "redis"
ttl = "3s"
`), 0o600))

	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("CURRENCY", "eur")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load(filepath.Join(dir, "missing.toml"), path)

	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/folio.db", cfg.Store.SQLitePath)
	assert.Equal(t, LockRedis, cfg.Lock.Driver)
	assert.Equal(t, 9100, cfg.Server.HTTPPort)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.True(t, cfg.Logging.Pretty)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)

	ttl, err := cfg.LockTTL()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, ttl)
}

func TestLoad_ConnStrWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_CONN_STR", "postgres://u:p@db:5432/folio?sslmode=disable")
	t.Setenv("DB_HOST", "ignored")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/folio?sslmode=disable", cfg.DSN())
}

func TestLoad_RejectsBadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GRPC_PORT", "eighty")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRPC_PORT must be an integer")
}

func TestLoad_RejectsMalformedTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("currency = "), 0o600))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Defaults are valid", func(c *Config) {}, ""},
		{"Unknown store driver", func(c *Config) { c.Store.Driver = "mongo" }, "unknown store driver"},
		{"Unknown lock driver", func(c *Config) { c.Lock.Driver = "etcd" }, "unknown lock driver"},
		{"Empty JWT secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT_SECRET is required"},
		{"Zero HTTP port", func(c *Config) { c.Server.HTTPPort = 0 }, "invalid HTTP port"},
		{"Negative gRPC port", func(c *Config) { c.Server.GRPCPort = -1 }, "invalid gRPC port"},
		{"Same ports", func(c *Config) { c.Server.HTTPPort = c.Server.GRPCPort }, "must differ"},
		{"SQLite without path", func(c *Config) { c.Store.Driver = StoreSQLite; c.Store.SQLitePath = "" }, "SQLITE_PATH"},
		{"Bad lock TTL", func(c *Config) { c.Lock.TTL = "soon" }, "invalid LOCK_TTL"},
		{"Non-positive lock TTL", func(c *Config) { c.Lock.TTL = "0s" }, "LOCK_TTL must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
