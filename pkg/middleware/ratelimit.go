package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/bookshelf/pkg/auth"
	"github.com/platinummonkey/bookshelf/pkg/httputil"
	"github.com/platinummonkey/bookshelf/pkg/observability"
)

// RateLimitConfig defines rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerWindow is the max requests allowed in the time window
	RequestsPerWindow int
	// WindowDuration is the time window for rate limiting
	WindowDuration time.Duration
}

// DefaultLoginRateLimitConfig returns default login throttling settings
func DefaultLoginRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerWindow: 10,
		WindowDuration:    time.Minute,
	}
}

// RateLimiter is a fixed-window counter shared across instances through Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	prefix string
}

// NewRateLimiter creates a new Redis-backed rate limiter
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, prefix string) *RateLimiter {
	if config.RequestsPerWindow <= 0 || config.WindowDuration <= 0 {
		config = DefaultLoginRateLimitConfig()
	}
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &RateLimiter{
		redis:  redisClient,
		config: config,
		prefix: prefix,
	}
}

func (rl *RateLimiter) key(key string) string {
	return fmt.Sprintf("%s:%s", rl.prefix, key)
}

// Allow counts a request against the key and reports whether it is within the limit
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := rl.key(key)

	count, err := rl.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, fmt.Errorf("redis error: %w", err)
	}
	// The first hit opens the window; later hits must not extend it
	if count == 1 {
		if err := rl.redis.Expire(ctx, redisKey, rl.config.WindowDuration).Err(); err != nil {
			return true, fmt.Errorf("redis error: %w", err)
		}
	}

	return count <= int64(rl.config.RequestsPerWindow), nil
}

// Remaining returns the number of remaining requests in the window
func (rl *RateLimiter) Remaining(ctx context.Context, key string) (int, error) {
	count, err := rl.redis.Get(ctx, rl.key(key)).Int()
	if err == redis.Nil {
		return rl.config.RequestsPerWindow, nil
	} else if err != nil {
		return 0, err
	}

	remaining := rl.config.RequestsPerWindow - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// TTL returns the time until the rate limit window resets
func (rl *RateLimiter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return rl.redis.TTL(ctx, rl.key(key)).Result()
}

// Reset clears the rate limit for a key
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	return rl.redis.Del(ctx, rl.key(key)).Err()
}

// RateLimitMiddleware throttles requests per client IP as resolved by
// httputil.ClientIPMiddleware; proxy headers from untrusted peers never change the key.
// Redis errors fail open so an outage does not lock everyone out of login.
type RateLimitMiddleware struct {
	limiter *RateLimiter
	name    string
	logger  *logrus.Logger
	audit   *auth.AuditLogger
	metrics *observability.Metrics
}

// NewRateLimitMiddleware creates a rate limit middleware; name labels its metrics. metrics may be nil.
func NewRateLimitMiddleware(limiter *RateLimiter, name string, logger *logrus.Logger, metrics *observability.Metrics) *RateLimitMiddleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RateLimitMiddleware{
		limiter: limiter,
		name:    name,
		logger:  logger,
		audit:   auth.NewAuditLogger(logger),
		metrics: metrics,
	}
}

// Handler wraps an HTTP handler with rate limiting
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := "ip:" + httputil.ClientIP(r)

		allowed, err := m.limiter.Allow(ctx, key)
		if err != nil {
			observability.FromContext(ctx, m.logger).WithError(err).
				WithField("limiter", m.name).
				Warn("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			m.rateLimitExceeded(ctx, w, r, key)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limiter.config.RequestsPerWindow))
		if remaining, err := m.limiter.Remaining(ctx, key); err == nil {
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) rateLimitExceeded(ctx context.Context, w http.ResponseWriter, r *http.Request, key string) {
	if m.metrics != nil {
		m.metrics.RateLimitedTotal.WithLabelValues(m.name).Inc()
	}
	m.audit.LogFromRequest(r, auth.AuditEvent{
		Action: auth.ActionRateLimitHit,
		Status: auth.StatusDenied,
		Detail: m.name,
	})

	retryAfter := m.limiter.config.WindowDuration
	if ttl, err := m.limiter.TTL(ctx, key); err == nil && ttl > 0 {
		retryAfter = ttl
	}

	w.Header().Set("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limiter.config.RequestsPerWindow))
	w.Header().Set("X-RateLimit-Remaining", "0")
	httputil.WriteTooManyRequests(w)
}
