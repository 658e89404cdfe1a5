// Package observability provides structured logging, Prometheus metrics, health checks,
// and graceful shutdown for the bookshelf API.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.ParseLevel("info"), os.Stdout)
//	observability.FromContext(r.Context(), logger).Info("login succeeded")
//
// FromContext adds request_id and user_id fields when the request carries them.
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//	observability.RegisterMetricsEndpoint(router, registry)
//
// InstrumentTokenStore wraps a session.TokenStore and counts every store call by
// operation and outcome.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(db, redisClient, version)
//	observability.RegisterHealthRoutes(router, checker)
//
// PostgreSQL and Redis are pinged concurrently. Sessions and users both live behind
// these dependencies, so either one failing marks the service unhealthy.
//
// # Graceful Shutdown
//
//	shutdown := observability.NewShutdownManager(logger, server, cfg.Server.ShutdownTimeout)
//	shutdown.Register("postgres", func(context.Context) error { return db.Close() })
//	shutdown.Register("redis", func(context.Context) error { return redisClient.Close() })
//	err := shutdown.WaitForShutdown()
//
// The HTTP server drains first; hooks then run newest first.
package observability
