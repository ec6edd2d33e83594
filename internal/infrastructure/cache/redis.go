// Package cache holds the Redis-backed helpers: a cross-process cycle lock
// and a pub/sub sink for cycle reports.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"JobScanner/internal/domain"
	"JobScanner/internal/ports"
)

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a SET NX PX lock with a per-acquisition token.
type Lock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

var _ ports.CycleLock = (*Lock)(nil)

// NewLock builds a lock on key expiring after ttl.
func NewLock(client *redis.Client, key string, ttl time.Duration) *Lock {
	return &Lock{client: client, key: key, ttl: ttl}
}

// TryAcquire never blocks; ok is false when someone else holds the key.
func (l *Lock) TryAcquire(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
			return fmt.Errorf("release %s: %w", l.key, err)
		}
		return nil
	}
	return release, true, nil
}

// ReportPublisher publishes every CycleReport as JSON on a channel.
type ReportPublisher struct {
	client  *redis.Client
	channel string
}

var _ ports.ReportSink = (*ReportPublisher)(nil)

// NewReportPublisher wires a client and channel name.
func NewReportPublisher(client *redis.Client, channel string) *ReportPublisher {
	return &ReportPublisher{client: client, channel: channel}
}

// Emit publishes the report.
func (p *ReportPublisher) Emit(ctx context.Context, report domain.CycleReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}
