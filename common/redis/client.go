package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yuanzac/submarine/common/config"
)

// Client is the go-redis client used across the server.
type Client = redis.Client

const defaultDialTimeout = 3 * time.Second

// NewRedisClient creates a client; it does not dial until first use.
func NewRedisClient(cfg *config.RedisConfig) *Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: defaultDialTimeout,
	})
}

// Connect creates a client and pings it within timeout. The client is closed
// when the ping fails.
func Connect(ctx context.Context, cfg *config.RedisConfig, timeout time.Duration) (*Client, error) {
	client := NewRedisClient(cfg)
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Addr, err)
	}
	return client, nil
}

// Close closes the client; nil is a no-op.
func Close(client *Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
