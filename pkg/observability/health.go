package observability

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/bookshelf/pkg/httputil"
)

// HealthChecker provides health check functionality
type HealthChecker struct {
	db      *sql.DB
	redis   *redis.Client
	version string
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(db *sql.DB, redis *redis.Client, version string) *HealthChecker {
	return &HealthChecker{
		db:      db,
		redis:   redis,
		version: version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version,omitempty"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus represents the health of a single dependency
type DependencyStatus struct {
	Status    string        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Latency   time.Duration `json:"latency_ms,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Liveness answers the liveness check (always returns 200 if server is running)
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    StatusHealthy,
		"timestamp": time.Now(),
	})
}

// Readiness answers the readiness check (checks all dependencies)
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	code := http.StatusOK
	if status.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, code, status)
}

// Check pings PostgreSQL and Redis concurrently.
// Both back authentication, so either one down makes the service unhealthy.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Version:      h.version,
		Dependencies: make(map[string]DependencyStatus),
	}

	var mu sync.Mutex
	record := func(name string, dep DependencyStatus) {
		mu.Lock()
		defer mu.Unlock()
		status.Dependencies[name] = dep
	}

	// checks report through record and never fail the group
	var g errgroup.Group
	if h.db != nil {
		g.Go(func() error {
			record("database", h.checkDatabase(ctx))
			return nil
		})
	}
	if h.redis != nil {
		g.Go(func() error {
			record("redis", h.checkRedis(ctx))
			return nil
		})
	}
	_ = g.Wait()

	for _, dep := range status.Dependencies {
		switch dep.Status {
		case StatusUnhealthy:
			status.Status = StatusUnhealthy
		case StatusDegraded:
			if status.Status == StatusHealthy {
				status.Status = StatusDegraded
			}
		}
	}

	return status
}

// checkDatabase checks PostgreSQL health
func (h *HealthChecker) checkDatabase(ctx context.Context) DependencyStatus {
	start := time.Now()
	status := DependencyStatus{
		Status:    StatusHealthy,
		Timestamp: start,
	}

	var one int
	err := h.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	status.Latency = time.Since(start)

	if err != nil {
		status.Status = StatusUnhealthy
		status.Message = "query failed: " + err.Error()
		return status
	}

	stats := h.db.Stats()
	if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
		status.Status = StatusDegraded
		status.Message = "connection pool exhausted"
	}

	return status
}

// checkRedis checks Redis health
func (h *HealthChecker) checkRedis(ctx context.Context) DependencyStatus {
	start := time.Now()
	status := DependencyStatus{
		Status:    StatusHealthy,
		Timestamp: start,
	}

	err := h.redis.Ping(ctx).Err()
	status.Latency = time.Since(start)

	if err != nil {
		status.Status = StatusUnhealthy
		status.Message = err.Error()
	}

	return status
}

// RegisterHealthRoutes registers health check endpoints
func RegisterHealthRoutes(router *mux.Router, checker *HealthChecker) {
	router.HandleFunc("/health", checker.Readiness).Methods(http.MethodGet)
	router.HandleFunc("/health/live", checker.Liveness).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", checker.Readiness).Methods(http.MethodGet)
}
