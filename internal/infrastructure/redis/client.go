package redis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourorg/itemvault/internal/reliability/circuitbreaker"
)

// commands is the slice of redis.Cmdable the cache uses. Tests stand in for
// a live server through it.
type commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Client wraps the Redis client behind a circuit breaker. It backs the item
// list cache: every operation is best-effort, and when Redis misbehaves the
// breaker opens so requests skip the cache instead of waiting on it. Only
// transport and server errors count against the breaker; a key that simply
// isn't there is a healthy answer.
type Client struct {
	rdb     commands
	closer  io.Closer
	breaker *circuitbreaker.Breaker
	logger  *slog.Logger
}

// NewClient creates a new Redis client and verifies connectivity
func NewClient(url string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{
		rdb:     rdb,
		closer:  rdb,
		breaker: newBreaker(logger),
		logger:  logger,
	}, nil
}

func newBreaker(logger *slog.Logger) *circuitbreaker.Breaker {
	breaker := circuitbreaker.New(5, 2, 30*time.Second)
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warn("redis circuit breaker state change",
			slog.Int("from", int(from)),
			slog.Int("to", int(to)),
		)
	})
	return breaker
}

// Set stores a value with a TTL. Failures are logged, never surfaced.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	err := c.breaker.Do(func() error {
		return c.rdb.Set(ctx, key, value, ttl).Err()
	})
	if err != nil && err != circuitbreaker.ErrOpen {
		c.logger.Warn("redis set failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Get retrieves a value. A missing key is an ordinary miss and does not
// count against the breaker; transport failures and an open breaker both
// read as misses too.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	found := false
	err := c.breaker.Do(func() error {
		v, err := c.rdb.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}
		value = v
		found = true
		return nil
	})
	if err != nil {
		if err != circuitbreaker.ErrOpen {
			c.logger.Warn("redis get failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil, false
	}
	return value, found
}

// Delete removes a key
func (c *Client) Delete(ctx context.Context, key string) {
	err := c.breaker.Do(func() error {
		return c.rdb.Del(ctx, key).Err()
	})
	if err != nil && err != circuitbreaker.ErrOpen {
		c.logger.Warn("redis delete failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Ping checks connectivity, bypassing the breaker (used by readiness checks)
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
