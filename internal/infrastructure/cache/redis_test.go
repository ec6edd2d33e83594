package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobScanner/internal/domain"
)

func redisURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	return url
}

func TestLockExcludesSecondHolder(t *testing.T) {
	ctx := context.Background()
	client, err := NewRedisClient(ctx, redisURL(t))
	require.NoError(t, err)
	defer client.Close()

	key := "jobscanner:test-lock:" + t.Name()
	lock := NewLock(client, key, time.Minute)

	release, ok, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = lock.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, release(ctx))

	release, ok, err = lock.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, release(ctx))
}

func TestReportPublisher(t *testing.T) {
	ctx := context.Background()
	client, err := NewRedisClient(ctx, redisURL(t))
	require.NoError(t, err)
	defer client.Close()

	channel := "jobscanner:test-reports"
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewReportPublisher(client, channel)
	require.NoError(t, pub.Emit(ctx, domain.CycleReport{ID: "c-1", Status: domain.CycleCompleted}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, `"id":"c-1"`)
	assert.Contains(t, msg.Payload, `"status":"completed"`)
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}
