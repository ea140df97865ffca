// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"strings"
	"testing"
	"time"
)

// allEnvVars lists every variable Load reads.
var allEnvVars = []string{
	"APP_HOST", "APP_PORT", "APP_ENV",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
	"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_PUBLIC_URL",
	"ADMIN_PASSWORD_HASH", "SNAPSHOT_PATH",
	"RETRY_ATTEMPTS", "RETRY_BASE_DELAY", "STARTUP_ATTEMPTS", "LEADS_POLL_INTERVAL", "HERO_ROTATE_INTERVAL",
}

// clearEnv sets every variable to "", which envOrDefault treats as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
}

// TestLoad_Defaults verifies that Load returns sensible development defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	check := func(field, got, want string) {
		t.Helper()
		if got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}

	check("Host", cfg.Host, "0.0.0.0")
	check("Port", cfg.Port, "8080")
	check("Env", cfg.Env, "development")
	check("DBHost", cfg.DBHost, "localhost")
	check("DBPort", cfg.DBPort, "5432")
	check("DBUser", cfg.DBUser, "gutoautopecas")
	check("DBPassword", cfg.DBPassword, "changeme")
	check("DBName", cfg.DBName, "gutoautopecas")
	check("ValkeyHost", cfg.ValkeyHost, "localhost")
	check("ValkeyPort", cfg.ValkeyPort, "6379")
	check("S3Region", cfg.S3Region, "us-east-1")
	check("S3Bucket", cfg.S3Bucket, "gutoautopecas")
	check("AdminPasswordHash", cfg.AdminPasswordHash, DefaultAdminPasswordHash)
	check("SnapshotPath", cfg.SnapshotPath, "data/site_content.db")

	if cfg.RetryAttempts != 3 {
		t.Errorf("RetryAttempts = %d, want 3", cfg.RetryAttempts)
	}
	if cfg.StartupAttempts != 8 {
		t.Errorf("StartupAttempts = %d, want 8", cfg.StartupAttempts)
	}
	if cfg.RetryBaseDelay != time.Second {
		t.Errorf("RetryBaseDelay = %v, want 1s", cfg.RetryBaseDelay)
	}
	if cfg.LeadsPollInterval != 30*time.Second {
		t.Errorf("LeadsPollInterval = %v, want 30s", cfg.LeadsPollInterval)
	}
	if cfg.HeroRotateInterval != 2*time.Second {
		t.Errorf("HeroRotateInterval = %v, want 2s", cfg.HeroRotateInterval)
	}
	if cfg.HasStorage() {
		t.Error("HasStorage() should be false without S3 credentials")
	}
}

// TestLoad_EnvOverrides verifies that environment variables override defaults.
func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	overrides := map[string]string{
		"APP_HOST":             "127.0.0.1",
		"APP_PORT":             "9090",
		"APP_ENV":              "testing",
		"POSTGRES_HOST":        "db.example.com",
		"POSTGRES_PASSWORD":    "testpass",
		"VALKEY_PASSWORD":      "cachepass",
		"S3_ENDPOINT":          "https://s3.example.com",
		"S3_ACCESS_KEY":        "AKIATEST",
		"S3_SECRET_KEY":        "secret",
		"ADMIN_PASSWORD_HASH":  "deadbeef",
		"SNAPSHOT_PATH":        "",
		"RETRY_ATTEMPTS":       "5",
		"RETRY_BASE_DELAY":     "250ms",
		"LEADS_POLL_INTERVAL":  "1m",
		"HERO_ROTATE_INTERVAL": "4s",
	}
	for k, v := range overrides {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Host != "127.0.0.1" || cfg.Port != "9090" || cfg.Env != "testing" {
		t.Errorf("server settings not overridden: %+v", cfg)
	}
	if cfg.DBHost != "db.example.com" || cfg.DBPassword != "testpass" {
		t.Errorf("db settings not overridden: host=%q password=%q", cfg.DBHost, cfg.DBPassword)
	}
	if cfg.ValkeyPassword != "cachepass" {
		t.Errorf("ValkeyPassword = %q, want %q", cfg.ValkeyPassword, "cachepass")
	}
	if !cfg.HasStorage() {
		t.Error("HasStorage() should be true with S3 credentials")
	}
	if cfg.AdminPasswordHash != "deadbeef" {
		t.Errorf("AdminPasswordHash = %q, want %q", cfg.AdminPasswordHash, "deadbeef")
	}
	if cfg.RetryAttempts != 5 {
		t.Errorf("RetryAttempts = %d, want 5", cfg.RetryAttempts)
	}
	if cfg.RetryBaseDelay != 250*time.Millisecond {
		t.Errorf("RetryBaseDelay = %v, want 250ms", cfg.RetryBaseDelay)
	}
	if cfg.LeadsPollInterval != time.Minute {
		t.Errorf("LeadsPollInterval = %v, want 1m", cfg.LeadsPollInterval)
	}
	if cfg.HeroRotateInterval != 4*time.Second {
		t.Errorf("HeroRotateInterval = %v, want 4s", cfg.HeroRotateInterval)
	}
}

// TestLoad_InvalidNumbers verifies that malformed numeric values are rejected.
func TestLoad_InvalidNumbers(t *testing.T) {
	tests := []struct {
		key, value, wantErr string
	}{
		{"RETRY_ATTEMPTS", "three", "RETRY_ATTEMPTS"},
		{"RETRY_ATTEMPTS", "0", "at least 1"},
		{"RETRY_BASE_DELAY", "soon", "RETRY_BASE_DELAY"},
		{"STARTUP_ATTEMPTS", "-2", "STARTUP_ATTEMPTS must be at least 1"},
		{"LEADS_POLL_INTERVAL", "30", "LEADS_POLL_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// TestLoad_ProductionRequiresPassword verifies production refuses the
// default database password.
func TestLoad_ProductionRequiresPassword(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err == nil {
		t.Fatal("expected error for default password in production, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
	if !strings.Contains(err.Error(), "POSTGRES_PASSWORD") {
		t.Errorf("error should mention POSTGRES_PASSWORD, got %q", err.Error())
	}

	t.Setenv("POSTGRES_PASSWORD", "s3cret")
	if _, err := Load(); err != nil {
		t.Errorf("unexpected error with explicit password: %v", err)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBUser:     "user",
		DBPassword: "pass",
		DBHost:     "db",
		DBPort:     "5432",
		DBName:     "guto",
	}
	want := "postgres://user:pass@db:5432/guto?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestAddr(t *testing.T) {
	cfg := &Config{Host: "0.0.0.0", Port: "8080"}
	if got := cfg.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q, want %q", got, "0.0.0.0:8080")
	}
}

func TestIsDev(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"production", false},
		{"testing", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := &Config{Env: tt.env}
			if got := cfg.IsDev(); got != tt.want {
				t.Errorf("IsDev() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("GUTO_TEST_KEY", "")
	if got := envOrDefault("GUTO_TEST_KEY", "fallback"); got != "fallback" {
		t.Errorf("empty value: got %q, want %q", got, "fallback")
	}
	t.Setenv("GUTO_TEST_KEY", "value")
	if got := envOrDefault("GUTO_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("set value: got %q, want %q", got, "value")
	}
}
