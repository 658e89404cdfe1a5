package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/bookshelf/pkg/httputil"
	"github.com/platinummonkey/bookshelf/pkg/observability"
	"github.com/platinummonkey/bookshelf/pkg/session"
	"github.com/platinummonkey/bookshelf/pkg/users"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database users.DBConfig

	// Redis configuration for the session store and rate limiter
	Redis session.RedisConfig

	// Auth configuration
	Auth AuthConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Peers allowed to set X-Forwarded-For/X-Real-IP, as IPs or CIDR blocks
	TrustedProxies []string
}

// AuthConfig holds session and login settings
type AuthConfig struct {
	SessionTTL   time.Duration
	StoreTimeout time.Duration

	// Login rate limiting per client IP; a limit of 0 disables it
	LoginRateLimit  int
	LoginRateWindow time.Duration

	BcryptCost int
	SeedFile   string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       logrus.Level
	MetricsEnabled bool
	Version        string
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Redis:         loadRedisConfig(),
		Auth:          loadAuthConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("BOOKSHELF_HOST", "0.0.0.0"),
		Port:            getEnv("BOOKSHELF_PORT", "8080"),
		ReadTimeout:     getEnvDuration("BOOKSHELF_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("BOOKSHELF_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("BOOKSHELF_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("BOOKSHELF_SHUTDOWN_TIMEOUT", 30*time.Second),
		TrustedProxies:  getEnvList("BOOKSHELF_TRUSTED_PROXIES"),
	}
}

func loadDatabaseConfig() users.DBConfig {
	return users.DBConfig{
		URL:         getEnv("BOOKSHELF_POSTGRES_URL", ""),
		MaxConns:    getEnvInt("BOOKSHELF_POSTGRES_MAX_CONNS", 20),
		MinConns:    getEnvInt("BOOKSHELF_POSTGRES_MIN_CONNS", 5),
		Timeout:     getEnvDuration("BOOKSHELF_POSTGRES_TIMEOUT", 5*time.Second),
		MaxLifetime: getEnvDuration("BOOKSHELF_POSTGRES_MAX_LIFETIME", time.Hour),
		MaxIdleTime: getEnvDuration("BOOKSHELF_POSTGRES_MAX_IDLE_TIME", 10*time.Minute),
	}
}

func loadRedisConfig() session.RedisConfig {
	return session.RedisConfig{
		URL:         getEnv("BOOKSHELF_REDIS_URL", "redis://localhost:6379/0"),
		Password:    getEnv("BOOKSHELF_REDIS_PASSWORD", ""),
		DB:          getEnvInt("BOOKSHELF_REDIS_DB", -1),
		MaxRetries:  getEnvInt("BOOKSHELF_REDIS_MAX_RETRIES", 3),
		PoolSize:    getEnvInt("BOOKSHELF_REDIS_POOL_SIZE", 10),
		DialTimeout: getEnvDuration("BOOKSHELF_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout: getEnvDuration("BOOKSHELF_REDIS_READ_TIMEOUT", time.Second),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		SessionTTL:      getEnvDuration("BOOKSHELF_SESSION_TTL", session.DefaultTTL),
		StoreTimeout:    getEnvDuration("BOOKSHELF_STORE_TIMEOUT", 2*time.Second),
		LoginRateLimit:  getEnvInt("BOOKSHELF_LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: getEnvDuration("BOOKSHELF_LOGIN_RATE_WINDOW", time.Minute),
		BcryptCost:      getEnvInt("BOOKSHELF_BCRYPT_COST", users.DefaultPasswordCost),
		SeedFile:        getEnv("BOOKSHELF_SEED_FILE", ""),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       observability.ParseLevel(getEnv("BOOKSHELF_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("BOOKSHELF_METRICS_ENABLED", true),
		Version:        getEnv("BOOKSHELF_VERSION", "dev"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if _, err := httputil.ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		return err
	}

	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("postgres max connections must be positive")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("postgres min connections (%d) exceeds max connections (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("redis URL is required")
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Auth.StoreTimeout <= 0 {
		return fmt.Errorf("store timeout must be positive")
	}
	if c.Auth.LoginRateLimit < 0 {
		return fmt.Errorf("login rate limit cannot be negative")
	}
	if c.Auth.LoginRateLimit > 0 && c.Auth.LoginRateWindow <= 0 {
		return fmt.Errorf("login rate window must be positive when rate limiting is enabled")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvList splits a comma-separated environment variable, dropping empty entries
func getEnvList(key string) []string {
	var values []string
	for _, value := range strings.Split(os.Getenv(key), ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	return values
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
