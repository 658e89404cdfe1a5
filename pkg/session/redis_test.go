package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(RedisConfig{
		URL: "redis://" + mr.Addr() + "/0",
		DB:  -1,
	})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisClient_Password(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("secret")

	_, err := NewRedisClient(RedisConfig{URL: "redis://" + mr.Addr(), DB: -1})
	assert.Error(t, err, "connecting without a password should fail")

	client, err := NewRedisClient(RedisConfig{URL: "redis://" + mr.Addr(), Password: "secret", DB: -1})
	require.NoError(t, err)
	client.Close()
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(RedisConfig{URL: "not-a-url://x"})
	assert.Error(t, err)
}
