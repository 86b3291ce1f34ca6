//go:build integration

package infra

import (
	"context"
	"testing"
	"time"

	"github.com/Ayush3323/crm-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	rdb, err := NewRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	cache := NewRedisCache(rdb)

	_, err = cache.Get(ctx, "analytics:tasks")
	assert.ErrorIs(t, err, service.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "analytics:tasks", []byte(`{"totalTasks":3}`), time.Minute))
	got, err := cache.Get(ctx, "analytics:tasks")
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalTasks":3}`, string(got))

	ttl, err := rdb.TTL(ctx, "crm:cache:analytics:tasks").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestNewRedis_BadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not a url")
	assert.Error(t, err)
}
