package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShutdownManager_DefaultTimeout(t *testing.T) {
	logger, _ := test.NewNullLogger()

	sm := NewShutdownManager(logger, nil, 0)
	assert.Equal(t, DefaultShutdownTimeout, sm.timeout)

	sm = NewShutdownManager(logger, nil, time.Second)
	assert.Equal(t, time.Second, sm.timeout)
}

func TestShutdownManager_ReverseOrder(t *testing.T) {
	logger, hook := test.NewNullLogger()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	server := &http.Server{Handler: http.NotFoundHandler()}
	go server.Serve(ln)

	sm := NewShutdownManager(logger, server, 5*time.Second)

	var order []string
	for _, name := range []string{"postgres", "redis", "limiter"} {
		name := name
		sm.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, sm.Shutdown())
	assert.Equal(t, []string{"limiter", "redis", "postgres"}, order)
	assert.Equal(t, "graceful shutdown complete", hook.LastEntry().Message)
}

func TestShutdownManager_ContinuesAfterFailure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sm := NewShutdownManager(logger, nil, time.Second)

	closeErr := errors.New("close failed")
	var ranPostgres bool
	sm.Register("postgres", func(context.Context) error {
		ranPostgres = true
		return nil
	})
	sm.Register("redis", func(context.Context) error { return closeErr })

	err := sm.Shutdown()
	require.Error(t, err)
	assert.ErrorIs(t, err, closeErr)
	assert.Contains(t, err.Error(), "redis")
	assert.True(t, ranPostgres)
}

func TestShutdownManager_HookPanics(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sm := NewShutdownManager(logger, nil, time.Second)

	sm.Register("redis", func(context.Context) error { panic("boom") })

	err := sm.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hook panicked")

	var recovered bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "PANIC recovered" {
			recovered = true
		}
	}
	assert.True(t, recovered)
}

func TestShutdownManager_Timeout(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sm := NewShutdownManager(logger, nil, 50*time.Millisecond)

	release := make(chan struct{})
	defer close(release)
	sm.Register("postgres", func(context.Context) error { return nil })
	sm.Register("redis", func(context.Context) error {
		<-release
		return nil
	})

	err := sm.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: shutdown timeout reached")
	assert.Contains(t, err.Error(), "postgres: shutdown timeout reached")
}

func TestRecoverPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()

	func() {
		defer RecoverPanic(logger, "unit test")
		panic("boom")
	}()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "boom", entry.Data["panic"])
	assert.Equal(t, "unit test", entry.Data["context"])
}
