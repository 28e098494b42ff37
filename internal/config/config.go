// Package config loads the server configuration: defaults, then TOML files, then .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Store drivers
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Lock drivers
const (
	LockMemory = "memory"
	LockRedis  = "redis"
)

// Config holds all configuration for the server
type Config struct {
	Currency  string          `toml:"currency"` // display currency for formatted amounts
	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
	Lock      LockConfig      `toml:"lock"`
	Auth      AuthConfig      `toml:"auth"`
	Logging   LoggingConfig   `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// ServerConfig holds the listen ports
type ServerConfig struct {
	HTTPPort int `toml:"http_port"`
	GRPCPort int `toml:"grpc_port"`
}

// StoreConfig selects and configures the holding store
type StoreConfig struct {
	Driver     string `toml:"driver"`
	ConnStr    string `toml:"conn_str"` // overrides the individual postgres fields
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	User       string `toml:"user"`
	Password   string `toml:"password"`
	Name       string `toml:"name"`
	SQLitePath string `toml:"sqlite_path"`
}

// LockConfig selects the per-holding lock implementation
type LockConfig struct {
	Driver        string `toml:"driver"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTL           string `toml:"ttl"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// RateLimitConfig limits buy and sell requests per user. RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `toml:"rps"`
	Burst int     `toml:"burst"`
}

// NewDefaultConfig returns a Config with development defaults
func NewDefaultConfig() *Config {
	return &Config{
		Currency: "INR",
		Server: ServerConfig{
			HTTPPort: 8081,
			GRPCPort: 8080,
		},
		Store: StoreConfig{
			Driver:     StorePostgres,
			Host:       "localhost",
			Port:       5432,
			User:       "postgres",
			Password:   "postgres",
			Name:       "investfolio",
			SQLitePath: "./data/investfolio.db",
		},
		Lock: LockConfig{
			Driver:    LockMemory,
			RedisAddr: "localhost:6379",
			TTL:       "10s",
		},
		Auth: AuthConfig{
			JWTSecret: "dev-jwt-secret-change-in-production",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RPS:   10,
			Burst: 20,
		},
	}
}

// Load builds the configuration from defaults, the TOML files in order (missing files are skipped),
// a .env file in the working directory, and finally environment variables.
func Load(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Load .env file if it exists; real environment variables win
	_ = godotenv.Load()

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) error {
	var errs []error
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s must be an integer: %w", key, err))
				return
			}
			*dst = n
		}
	}

	setString("STORE_DRIVER", &config.Store.Driver)
	setString("DB_CONN_STR", &config.Store.ConnStr)
	setString("DB_HOST", &config.Store.Host)
	setInt("DB_PORT", &config.Store.Port)
	setString("DB_USER", &config.Store.User)
	setString("DB_PASSWORD", &config.Store.Password)
	setString("DB_NAME", &config.Store.Name)
	setString("SQLITE_PATH", &config.Store.SQLitePath)

	setInt("HTTP_PORT", &config.Server.HTTPPort)
	setInt("GRPC_PORT", &config.Server.GRPCPort)

	setString("JWT_SECRET", &config.Auth.JWTSecret)

	setString("LOCK_DRIVER", &config.Lock.Driver)
	setString("REDIS_ADDR", &config.Lock.RedisAddr)
	setString("REDIS_PASSWORD", &config.Lock.RedisPassword)
	setInt("REDIS_DB", &config.Lock.RedisDB)
	setString("LOCK_TTL", &config.Lock.TTL)

	setString("LOG_LEVEL", &config.Logging.Level)
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOG_PRETTY must be a boolean: %w", err))
		} else {
			config.Logging.Pretty = b
		}
	}

	if v := os.Getenv("CURRENCY"); v != "" {
		config.Currency = strings.ToUpper(v)
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must be a number: %w", err))
		} else {
			config.RateLimit.RPS = rps
		}
	}
	setInt("RATE_LIMIT_BURST", &config.RateLimit.Burst)

	return errors.Join(errs...)
}

// Validate rejects unknown drivers, an empty JWT secret and bad ports
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StorePostgres, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Lock.Driver {
	case LockMemory, LockRedis:
	default:
		return fmt.Errorf("unknown lock driver %q", c.Lock.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port %d", c.Server.GRPCPort)
	}
	if c.Server.HTTPPort == c.Server.GRPCPort {
		return errors.New("HTTP and gRPC ports must differ")
	}
	if c.Store.Driver == StoreSQLite && c.Store.SQLitePath == "" {
		return errors.New("SQLITE_PATH is required for the sqlite store")
	}
	if _, err := c.LockTTL(); err != nil {
		return err
	}
	if c.Currency == "" {
		return errors.New("currency cannot be empty")
	}

	return nil
}

// DSN returns the postgres connection string
func (c *Config) DSN() string {
	if c.Store.ConnStr != "" {
		return c.Store.ConnStr
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Store.Host, c.Store.Port, c.Store.User, c.Store.Password, c.Store.Name)
}

// LockTTL parses the Redis lease duration
func (c *Config) LockTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.Lock.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid LOCK_TTL %q: %w", c.Lock.TTL, err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("LOCK_TTL must be positive, got %s", ttl)
	}
	return ttl, nil
}
