// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings except the Postgres URL.
//
// # Configuration Structure
//
// Server settings:
//
//	BOOKSHELF_HOST="0.0.0.0"
//	BOOKSHELF_PORT="8080"
//	BOOKSHELF_READ_TIMEOUT="15s"
//	BOOKSHELF_SHUTDOWN_TIMEOUT="30s"
//
// Storage settings:
//
//	BOOKSHELF_POSTGRES_URL="postgres://localhost/bookshelf?sslmode=disable"
//	BOOKSHELF_POSTGRES_MAX_CONNS="20"
//	BOOKSHELF_REDIS_URL="redis://localhost:6379/0"
//	BOOKSHELF_REDIS_DB="-1"  # -1 keeps the database from the URL
//
// Auth settings:
//
//	BOOKSHELF_SESSION_TTL="24h"
//	BOOKSHELF_STORE_TIMEOUT="2s"
//	BOOKSHELF_LOGIN_RATE_LIMIT="10"  # 0 disables login rate limiting
//	BOOKSHELF_LOGIN_RATE_WINDOW="1m"
//	BOOKSHELF_BCRYPT_COST="10"
//	BOOKSHELF_SEED_FILE="/etc/bookshelf/seed.yaml"
//
// Observability settings:
//
//	BOOKSHELF_LOG_LEVEL="info"  # debug, info, warn, error
//	BOOKSHELF_METRICS_ENABLED="true"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Related Packages
//
//   - pkg/session: Uses the Redis configuration
//   - pkg/users: Uses the database configuration
package config
