// Package rediscache provides a Redis-backed alert cooldown store.
package rediscache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "arbscan:alert:"

// Cooldown suppresses repeat alerts using Redis keys with expiry, so the
// cooldown survives restarts and is shared between scanner instances.
type Cooldown struct {
	client *redis.Client
}

// New creates a Cooldown backed by the given Redis instance.
func New(client *redis.Client) *Cooldown {
	return &Cooldown{client: client}
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, url string) (*Cooldown, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return New(client), nil
}

// ShouldAlert atomically claims the key for the cooldown duration. It
// returns false while a previous claim is still live.
func (c *Cooldown) ShouldAlert(ctx context.Context, key string, cooldown time.Duration) (bool, error) {
	return c.client.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339), cooldown).Result()
}

// Ping verifies the connection, for health probes.
func (c *Cooldown) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Cooldown) Close() error {
	return c.client.Close()
}
