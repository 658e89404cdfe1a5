package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/bookshelf/pkg/api"
	"github.com/platinummonkey/bookshelf/pkg/config"
	"github.com/platinummonkey/bookshelf/pkg/httputil"
	"github.com/platinummonkey/bookshelf/pkg/middleware"
	"github.com/platinummonkey/bookshelf/pkg/observability"
	"github.com/platinummonkey/bookshelf/pkg/session"
	"github.com/platinummonkey/bookshelf/pkg/users"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	db, err := users.OpenDB(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	logger.Info("connected to postgres")

	redisClient, err := session.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}
	logger.Info("connected to redis")

	if err := seed(context.Background(), cfg, db, logger); err != nil {
		logger.WithError(err).Fatal("failed to seed database")
	}

	redisStore, err := session.NewRedisStore(redisClient, cfg.Auth.SessionTTL,
		session.WithOperationTimeout(cfg.Auth.StoreTimeout))
	if err != nil {
		logger.WithError(err).Fatal("failed to create session store")
	}

	proxies, err := httputil.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		logger.WithError(err).Fatal("invalid trusted proxies")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	opts := api.Options{
		Store:  observability.InstrumentTokenStore(redisStore, metrics),
		Users:  users.NewRepository(db, users.WithPasswordCost(cfg.Auth.BcryptCost)),
		Logger: logger,
		Health: observability.NewHealthChecker(db, redisClient, cfg.Observability.Version),

		TrustedProxies: proxies,
	}
	if cfg.Observability.MetricsEnabled {
		opts.Metrics = metrics
		opts.Registry = registry
	}
	if cfg.Auth.LoginRateLimit > 0 {
		opts.LoginLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			RequestsPerWindow: cfg.Auth.LoginRateLimit,
			WindowDuration:    cfg.Auth.LoginRateWindow,
		}, "ratelimit:login")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewServer(opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, server, cfg.Server.ShutdownTimeout)
	shutdown.Register("postgres", func(context.Context) error {
		return db.Close()
	})
	shutdown.Register("redis", func(context.Context) error {
		return redisClient.Close()
	})

	go func() {
		defer observability.RecoverPanic(logger, "http server")

		logger.WithField("addr", server.Addr).Info("starting bookshelf server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown completed with errors")
		os.Exit(1)
	}
}

// seed ensures roles and groups exist, plus the root users from the seed file when configured
func seed(ctx context.Context, cfg *config.Config, db *sql.DB, logger *logrus.Logger) error {
	var seedFile *users.SeedFile
	if cfg.Auth.SeedFile != "" {
		var err error
		seedFile, err = users.LoadSeedFile(cfg.Auth.SeedFile)
		if err != nil {
			return err
		}
	}
	return users.NewSeeder(db, logger, cfg.Auth.BcryptCost).Seed(ctx, seedFile)
}
