// Package middleware provides HTTP middleware for authentication, authorization, and rate limiting.
//
// # Middleware Components
//
// AuthMiddleware: Bearer session authentication
//
//	authMW := middleware.NewAuthMiddleware(store, userRepo, logger, metrics)
//	router.Handle("/user/me", authMW.Handler(meHandler))
//	// 401 {"errors":["Unauthorized."]} unless the token maps to a live session
//
// RequireRole: Role guard, must be wrapped by AuthMiddleware.Handler
//
//	authMW.Handler(authMW.RequireRole(auth.RoleCreateBook)(createBookHandler))
//	// 403 {"errors":["Forbidden."]} when the caller's group lacks the role
//
// RateLimitMiddleware: Redis fixed-window throttling per client IP
//
//	limiter := middleware.NewRateLimiter(redisClient, middleware.DefaultLoginRateLimitConfig(), "ratelimit:login")
//	loginMW := middleware.NewRateLimitMiddleware(limiter, "login", logger, metrics)
//
// # Related Packages
//
//   - pkg/auth: Authenticator and permission gate
//   - pkg/session: Token store
package middleware
