// Package contextkeys provides centralized context key definitions
//
// All request-scoped values used across the application are keyed here so that
// producers and consumers agree on names and types.
//
// USAGE PATTERN:
//
//	ctx = contextkeys.WithAuth(ctx, authCtx)
//	authCtx, _ := ctx.Value(contextkeys.AuthKey).(*auth.AuthContext)
package contextkeys

import (
	"context"
	"time"
)

// Key is the type for context keys to prevent collisions
type Key string

const (
	// AuthKey contains *auth.AuthContext
	// Set by: middleware.AuthMiddleware (pkg/middleware/auth.go)
	// Required by: every route behind the auth gate, role guards
	AuthKey Key = "auth_context"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: access logs, error logs, X-Request-ID response header
	RequestIDKey Key = "request_id"

	// UserIDKey contains the authenticated user's ID (int64)
	// Set by: middleware.AuthMiddleware after authentication
	// Used by: logger fields, audit events
	UserIDKey Key = "user_id"

	// RequestStartTimeKey contains the request start timestamp (time.Time)
	// Set by: httputil.RequestIDMiddleware
	RequestStartTimeKey Key = "request_start_time"

	// ClientIPKey contains the resolved client address without port (string)
	// Set by: httputil.ClientIPMiddleware
	// Used by: login rate limiter, audit events
	ClientIPKey Key = "client_ip"
)

// WithAuth adds authentication context to the context.
// The value is untyped so this package does not depend on auth.
func WithAuth(ctx context.Context, authCtx interface{}) context.Context {
	return context.WithValue(ctx, AuthKey, authCtx)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithUserID adds user ID to the context
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithRequestStartTime adds request start time to the context
func WithRequestStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, RequestStartTimeKey, startTime)
}

// WithClientIP adds the resolved client address to the context
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ClientIPKey, ip)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetUserID retrieves user ID from context; ok is false for anonymous requests
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetRequestStartTime retrieves the request start time from context
func GetRequestStartTime(ctx context.Context) (time.Time, bool) {
	start, ok := ctx.Value(RequestStartTimeKey).(time.Time)
	return start, ok
}

// GetClientIP retrieves the resolved client address from context
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ClientIPKey).(string)
	return ip
}
