package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultShutdownTimeout bounds the whole shutdown when no timeout is configured
const DefaultShutdownTimeout = 30 * time.Second

// ShutdownFunc releases one dependency during shutdown
type ShutdownFunc func(context.Context) error

type shutdownHook struct {
	name string
	fn   ShutdownFunc
}

// ShutdownManager drains the HTTP server on SIGINT/SIGTERM, then releases the
// registered dependencies in reverse registration order.
type ShutdownManager struct {
	logger  *logrus.Logger
	server  *http.Server
	timeout time.Duration

	mu    sync.Mutex
	hooks []shutdownHook
}

// NewShutdownManager creates a shutdown manager; server may be nil
func NewShutdownManager(logger *logrus.Logger, server *http.Server, timeout time.Duration) *ShutdownManager {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	return &ShutdownManager{
		logger:  logger,
		server:  server,
		timeout: timeout,
	}
}

// Register adds a named hook. Hooks registered later run first, so a dependency
// opened after another is closed before it.
func (sm *ShutdownManager) Register(name string, fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.hooks = append(sm.hooks, shutdownHook{name: name, fn: fn})
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then shuts down
func (sm *ShutdownManager) WaitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	sm.logger.WithField("signal", sig.String()).Info("starting graceful shutdown")

	return sm.Shutdown()
}

// Shutdown stops accepting requests, waits for in-flight ones, then runs every hook
// even when an earlier one fails. The returned error joins all failures.
func (sm *ShutdownManager) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	var errs []error

	// in-flight requests still use the session store and database, so the server goes first
	if sm.server != nil {
		if err := sm.server.Shutdown(ctx); err != nil {
			sm.logger.WithError(err).Error("HTTP server shutdown error")
			errs = append(errs, fmt.Errorf("http server: %w", err))
		} else {
			sm.logger.Info("HTTP server shutdown complete")
		}
	}

	sm.mu.Lock()
	hooks := make([]shutdownHook, len(sm.hooks))
	copy(hooks, sm.hooks)
	sm.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := ctx.Err(); err != nil {
			sm.logger.WithField("hook", h.name).Warn("shutdown timeout reached, skipping")
			errs = append(errs, fmt.Errorf("%s: shutdown timeout reached", h.name))
			continue
		}
		if err := sm.run(ctx, h); err != nil {
			sm.logger.WithError(err).WithField("hook", h.name).Error("shutdown hook failed")
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
			continue
		}
		sm.logger.WithField("hook", h.name).Debug("shutdown hook complete")
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	sm.logger.Info("graceful shutdown complete")
	return nil
}

// run bounds a hook by ctx even when the hook ignores it
func (sm *ShutdownManager) run(ctx context.Context, h shutdownHook) error {
	done := make(chan error, 1)
	go func() {
		err := errors.New("hook panicked")
		defer func() { done <- err }()
		defer RecoverPanic(sm.logger, "shutdown hook "+h.name)
		err = h.fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout reached")
	}
}
