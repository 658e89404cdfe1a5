package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/bookshelf/pkg/session"
	"github.com/platinummonkey/bookshelf/pkg/users"
)

// clearEnv unsets every BOOKSHELF_ variable and restores them after the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key := strings.SplitN(kv, "=", 2)[0]
		if strings.HasPrefix(key, "BOOKSHELF_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func validConfig() Config {
	return Config{
		Server: ServerConfig{Port: "8080", ShutdownTimeout: time.Second},
		Database: users.DBConfig{
			URL:      "postgres://localhost/bookshelf",
			MaxConns: 10,
			MinConns: 2,
		},
		Redis: session.RedisConfig{URL: "redis://localhost:6379/0", DB: -1},
		Auth: AuthConfig{
			SessionTTL:      time.Hour,
			StoreTimeout:    time.Second,
			LoginRateLimit:  5,
			LoginRateWindow: time.Minute,
			BcryptCost:      10,
		},
	}
}

func TestGetEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOOKSHELF_TEST_VAR", "custom")

	if got := getEnv("BOOKSHELF_TEST_VAR", "default"); got != "custom" {
		t.Errorf("getEnv() = %v, want custom", got)
	}
	if got := getEnv("BOOKSHELF_TEST_VAR_NOT_SET", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want default", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"upper case", "TRUE", false, true},
		{"false", "false", true, false},
		{"unset", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.envValue != "" {
				t.Setenv("BOOKSHELF_TEST_BOOL", tt.envValue)
			}
			if got := getEnvBool("BOOKSHELF_TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     int
	}{
		{"valid", "42", 42},
		{"negative", "-1", -1},
		{"invalid falls back", "forty-two", 7},
		{"unset", "", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.envValue != "" {
				t.Setenv("BOOKSHELF_TEST_INT", tt.envValue)
			}
			if got := getEnvInt("BOOKSHELF_TEST_INT", 7); got != tt.want {
				t.Errorf("getEnvInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     time.Duration
	}{
		{"seconds", "30s", 30 * time.Second},
		{"hours", "24h", 24 * time.Hour},
		{"invalid falls back", "soon", time.Minute},
		{"unset", "", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.envValue != "" {
				t.Setenv("BOOKSHELF_TEST_DURATION", tt.envValue)
			}
			if got := getEnvDuration("BOOKSHELF_TEST_DURATION", time.Minute); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadServerConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)
		got := loadServerConfig()
		want := ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("loadServerConfig() = %+v, want %+v", got, want)
		}
		if got.Addr() != "0.0.0.0:8080" {
			t.Errorf("Addr() = %v, want 0.0.0.0:8080", got.Addr())
		}
	})

	t.Run("custom values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOKSHELF_HOST", "localhost")
		t.Setenv("BOOKSHELF_PORT", "3000")
		t.Setenv("BOOKSHELF_SHUTDOWN_TIMEOUT", "5s")

		got := loadServerConfig()
		if got.Host != "localhost" {
			t.Errorf("Host = %v, want localhost", got.Host)
		}
		if got.Port != "3000" {
			t.Errorf("Port = %v, want 3000", got.Port)
		}
		if got.ShutdownTimeout != 5*time.Second {
			t.Errorf("ShutdownTimeout = %v, want 5s", got.ShutdownTimeout)
		}
	})

	t.Run("trusted proxies", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOKSHELF_TRUSTED_PROXIES", " 10.0.0.0/8, ,192.0.2.7")

		got := loadServerConfig()
		want := []string{"10.0.0.0/8", "192.0.2.7"}
		if !reflect.DeepEqual(got.TrustedProxies, want) {
			t.Errorf("TrustedProxies = %v, want %v", got.TrustedProxies, want)
		}
	})
}

func TestLoadRedisConfig(t *testing.T) {
	clearEnv(t)
	got := loadRedisConfig()
	if got.DB != -1 {
		t.Errorf("DB = %v, want -1 so the URL database wins", got.DB)
	}

	t.Setenv("BOOKSHELF_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("BOOKSHELF_REDIS_PASSWORD", "secret")
	t.Setenv("BOOKSHELF_REDIS_DB", "3")
	got = loadRedisConfig()
	if got.URL != "redis://cache:6379/2" || got.Password != "secret" || got.DB != 3 {
		t.Errorf("loadRedisConfig() = %+v", got)
	}
}

func TestLoadAuthConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)
		got := loadAuthConfig()
		if got.SessionTTL != 24*time.Hour {
			t.Errorf("SessionTTL = %v, want 24h", got.SessionTTL)
		}
		if got.StoreTimeout != 2*time.Second {
			t.Errorf("StoreTimeout = %v, want 2s", got.StoreTimeout)
		}
		if got.LoginRateLimit != 10 || got.LoginRateWindow != time.Minute {
			t.Errorf("login rate = %d per %v, want 10 per 1m", got.LoginRateLimit, got.LoginRateWindow)
		}
		if got.BcryptCost != users.DefaultPasswordCost {
			t.Errorf("BcryptCost = %v, want %v", got.BcryptCost, users.DefaultPasswordCost)
		}
		if got.SeedFile != "" {
			t.Errorf("SeedFile = %v, want empty", got.SeedFile)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOKSHELF_SESSION_TTL", "30m")
		t.Setenv("BOOKSHELF_LOGIN_RATE_LIMIT", "0")
		t.Setenv("BOOKSHELF_SEED_FILE", "/etc/bookshelf/seed.yaml")

		got := loadAuthConfig()
		if got.SessionTTL != 30*time.Minute {
			t.Errorf("SessionTTL = %v, want 30m", got.SessionTTL)
		}
		if got.LoginRateLimit != 0 {
			t.Errorf("LoginRateLimit = %v, want 0", got.LoginRateLimit)
		}
		if got.SeedFile != "/etc/bookshelf/seed.yaml" {
			t.Errorf("SeedFile = %v", got.SeedFile)
		}
	})
}

func TestLoadObservabilityConfig(t *testing.T) {
	clearEnv(t)
	got := loadObservabilityConfig()
	if got.LogLevel != logrus.InfoLevel || !got.MetricsEnabled {
		t.Errorf("loadObservabilityConfig() defaults = %+v", got)
	}

	t.Setenv("BOOKSHELF_LOG_LEVEL", "debug")
	t.Setenv("BOOKSHELF_METRICS_ENABLED", "false")
	got = loadObservabilityConfig()
	if got.LogLevel != logrus.DebugLevel {
		t.Errorf("LogLevel = %v, want debug", got.LogLevel)
	}
	if got.MetricsEnabled {
		t.Error("MetricsEnabled = true, want false")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server port is required"},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "shutdown timeout must be positive"},
		{"trusted proxies", func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.0/8", "192.0.2.7"} }, ""},
		{"invalid trusted proxy", func(c *Config) { c.Server.TrustedProxies = []string{"proxy.local"} }, "invalid trusted proxy"},
		{"missing postgres url", func(c *Config) { c.Database.URL = "" }, "postgres URL is required"},
		{"zero max conns", func(c *Config) { c.Database.MaxConns = 0 }, "postgres max connections must be positive"},
		{"min above max", func(c *Config) { c.Database.MinConns = 20 }, "exceeds max connections"},
		{"missing redis url", func(c *Config) { c.Redis.URL = "" }, "redis URL is required"},
		{"zero ttl", func(c *Config) { c.Auth.SessionTTL = 0 }, "session TTL must be positive"},
		{"negative store timeout", func(c *Config) { c.Auth.StoreTimeout = -time.Second }, "store timeout must be positive"},
		{"negative rate limit", func(c *Config) { c.Auth.LoginRateLimit = -1 }, "login rate limit cannot be negative"},
		{"rate limit without window", func(c *Config) { c.Auth.LoginRateWindow = 0 }, "login rate window must be positive"},
		{"rate limit disabled without window", func(c *Config) {
			c.Auth.LoginRateLimit = 0
			c.Auth.LoginRateWindow = 0
		}, ""},
		{"bcrypt cost too low", func(c *Config) { c.Auth.BcryptCost = 2 }, "bcrypt cost must be between 4 and 31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOOKSHELF_POSTGRES_URL", "postgres://localhost/bookshelf?sslmode=disable")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Database.URL != "postgres://localhost/bookshelf?sslmode=disable" {
			t.Errorf("Database.URL = %v", cfg.Database.URL)
		}
	})

	t.Run("missing postgres url", func(t *testing.T) {
		clearEnv(t)

		_, err := LoadConfig()
		if err == nil {
			t.Fatal("LoadConfig() expected error, got nil")
		}
		if !strings.Contains(err.Error(), "configuration validation failed") {
			t.Errorf("LoadConfig() error = %v", err)
		}
	})
}
