// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAdminPasswordHash is the SHA-256 hex digest of the shop's original
// admin password. Override it with ADMIN_PASSWORD_HASH.
const DefaultAdminPasswordHash = "a20401f9b531b404c6decff28f3ba43b46458dd6925917353941d0eeea0cb573"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache + sessions)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible object storage for uploaded images (optional)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Admin gate
	AdminPasswordHash string

	// SnapshotPath is the SQLite file holding the offline copy of the
	// content tree. Empty disables the snapshot.
	SnapshotPath string

	// Remote store retry policy
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// StartupAttempts bounds how many times PostgreSQL and Valkey are
	// pinged at boot before giving up.
	StartupAttempts int

	// Timers
	LeadsPollInterval  time.Duration
	HeroRotateInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is loaded first if present. Returns an error if critical values are
// missing in production mode.
func Load() (*Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "gutoautopecas"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "gutoautopecas"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "gutoautopecas"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		AdminPasswordHash: envOrDefault("ADMIN_PASSWORD_HASH", DefaultAdminPasswordHash),
		SnapshotPath:      envOrDefault("SNAPSHOT_PATH", "data/site_content.db"),
	}

	var err error
	if cfg.RetryAttempts, err = envInt("RETRY_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.StartupAttempts, err = envInt("STARTUP_ATTEMPTS", 8); err != nil {
		return nil, err
	}
	if cfg.RetryBaseDelay, err = envDuration("RETRY_BASE_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.LeadsPollInterval, err = envDuration("LEADS_POLL_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HeroRotateInterval, err = envDuration("HERO_ROTATE_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}

	if cfg.RetryAttempts < 1 {
		return nil, fmt.Errorf("RETRY_ATTEMPTS must be at least 1, got %d", cfg.RetryAttempts)
	}
	if cfg.StartupAttempts < 1 {
		return nil, fmt.Errorf("STARTUP_ATTEMPTS must be at least 1, got %d", cfg.StartupAttempts)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasStorage reports whether S3 credentials are configured.
func (c *Config) HasStorage() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt parses an integer environment variable.
func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// envDuration parses a Go duration ("30s", "2m") environment variable.
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
