//go:build integration

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type countingHandler struct {
	calls atomic.Int32
	err   error
}

func (h *countingHandler) Process(context.Context, json.RawMessage) error {
	h.calls.Add(1)
	return h.err
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestPool_RetriesThenDeadLetters(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &countingHandler{err: errors.New("smtp down")}
	pool := NewPool(rdb, map[string]Handler{QueueEmail: h})
	pool.pollTimeout = time.Second
	pool.Start(ctx, 1)

	require.NoError(t, NewDispatcher(rdb).EnqueueEmail(ctx, EmailJobPayload{ToEmail: "a@plant.io"}))

	require.Eventually(t, func() bool {
		n, err := NewDeadLetters(rdb).Len(ctx, QueueEmail)
		return err == nil && n == 1
	}, 20*time.Second, 100*time.Millisecond)
	assert.Equal(t, int32(MaxAttempts), h.calls.Load())

	entries, err := NewDeadLetters(rdb).Newest(ctx, QueueEmail, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, jobTypeEmail, entries[0].JobType)
	assert.Equal(t, MaxAttempts, entries[0].Attempts)
	assert.Equal(t, "smtp down", entries[0].Reason)
}

func TestPool_PermanentFailureSkipsRetries(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &countingHandler{err: ErrPermanent}
	pool := NewPool(rdb, map[string]Handler{QueueEmail: h})
	pool.pollTimeout = time.Second
	pool.Start(ctx, 2)

	require.NoError(t, NewDispatcher(rdb).EnqueueEmail(ctx, EmailJobPayload{ToEmail: "a@plant.io"}))

	require.Eventually(t, func() bool {
		n, _ := NewDeadLetters(rdb).Len(ctx, QueueEmail)
		return n == 1
	}, 20*time.Second, 100*time.Millisecond)
	assert.Equal(t, int32(1), h.calls.Load())
}

func TestPool_DeadLetteredEmailKeepsNoBody(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewPool(rdb, map[string]Handler{QueueEmail: NewEmailWorker(&fakeSender{err: errors.New("smtp down")})})
	pool.pollTimeout = time.Second
	pool.Start(ctx, 1)

	require.NoError(t, NewDispatcher(rdb).EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: "a@plant.io", Subject: "Password reset", Body: "Your new password is: 0123abcd",
	}))

	dead := NewDeadLetters(rdb)
	require.Eventually(t, func() bool {
		n, err := dead.Len(ctx, QueueEmail)
		return err == nil && n == 1
	}, 20*time.Second, 100*time.Millisecond)

	entries, err := dead.Newest(ctx, QueueEmail, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.JSONEq(t, `{"to_email":"a@plant.io","subject":"Password reset"}`, string(entries[0].Payload))
}
