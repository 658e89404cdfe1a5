package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig holds connection settings for the session Redis
type RedisConfig struct {
	URL        string
	Password   string
	DB         int // -1 keeps the database from the URL
	MaxRetries int
	PoolSize   int

	DialTimeout time.Duration
	// ReadTimeout also bounds writes; session calls must fail fast
	ReadTimeout time.Duration
}

// NewRedisClient parses the URL, applies overrides and verifies connectivity
func NewRedisClient(config RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.DB >= 0 {
		opts.DB = config.DB
	}
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}

	opts.DialTimeout = 5 * time.Second
	if config.DialTimeout > 0 {
		opts.DialTimeout = config.DialTimeout
	}
	opts.ReadTimeout = 3 * time.Second
	if config.ReadTimeout > 0 {
		opts.ReadTimeout = config.ReadTimeout
	}
	opts.WriteTimeout = opts.ReadTimeout
	opts.PoolTimeout = opts.ReadTimeout + time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
