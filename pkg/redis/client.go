package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Shared client for the webhook idempotency fast path. May stay nil for the
// whole process lifetime; callers check GetClient and fall back to Postgres.
var client *redis.Client

const pingTimeout = 5 * time.Second

// Init dials Redis and verifies the connection with a ping.
func Init(url, password string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}
	if password != "" {
		opts.Password = password
	}

	c := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		// Leave client nil so the fast path is skipped instead of paying
		// a connect timeout on every delivery.
		_ = c.Close()
		return err
	}

	client = c
	return nil
}

// SetClient replaces the shared client. Tests use this with miniredis.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the shared client, nil when Redis is unavailable.
func GetClient() *redis.Client {
	return client
}

// Close releases the connection. Safe to call when Init never succeeded.
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// Set stores a key with expiration.
func Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value by key.
func Get(ctx context.Context, key string) (string, error) {
	return client.Get(ctx, key).Result()
}
