package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestHealthChecker_Check_AllHealthy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	client, _ := setupRedis(t)

	status := NewHealthChecker(db, client, "test").Check(context.Background())

	assert.Equal(t, StatusHealthy, status.Status)
	assert.Equal(t, "test", status.Version)
	assert.Equal(t, StatusHealthy, status.Dependencies["database"].Status)
	assert.Equal(t, StatusHealthy, status.Dependencies["redis"].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthChecker_Check_DatabaseDown(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection refused"))

	client, _ := setupRedis(t)

	status := NewHealthChecker(db, client, "test").Check(context.Background())

	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Contains(t, status.Dependencies["database"].Message, "connection refused")
	assert.Equal(t, StatusHealthy, status.Dependencies["redis"].Status)
}

func TestHealthChecker_Check_RedisDown(t *testing.T) {
	client, mr := setupRedis(t)
	mr.Close()

	status := NewHealthChecker(nil, client, "test").Check(context.Background())

	assert.Equal(t, StatusUnhealthy, status.Status, "sessions cannot be validated without redis")
	assert.Equal(t, StatusUnhealthy, status.Dependencies["redis"].Status)
	assert.NotContains(t, status.Dependencies, "database")
}

func TestHealthChecker_Check_NoDependencies(t *testing.T) {
	status := NewHealthChecker(nil, nil, "").Check(context.Background())
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Empty(t, status.Dependencies)
}

func TestHealthChecker_Routes(t *testing.T) {
	client, mr := setupRedis(t)

	router := mux.NewRouter()
	RegisterHealthRoutes(router, NewHealthChecker(nil, client, "test"))

	t.Run("liveness", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, StatusHealthy, body["status"])
	})

	t.Run("readiness healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("readiness unhealthy", func(t *testing.T) {
		mr.Close()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var status HealthStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, StatusUnhealthy, status.Status)
	})
}
