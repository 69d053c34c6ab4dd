// Package kv connects to the Redis instance that holds sessions and
// password-reset tokens.
package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config describes the Redis connection.
type Config struct {
	Addr          string
	Password      string
	DB            int
	PoolSize      int
	MinIdleConns  int
	MaxRetries    int
	RetryInterval time.Duration
}

// DefaultConfig returns local defaults.
func DefaultConfig() Config {
	return Config{
		Addr:          "localhost:6379",
		PoolSize:      10,
		MinIdleConns:  2,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
}

// Connect dials Redis and pings it, retrying up to cfg.MaxRetries times.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*redis.Client, error) {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolTimeout:  4 * time.Second,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			lastErr = fmt.Errorf("ping redis: %w", err)
			_ = client.Close()
			logger.Warn("redis not reachable", zap.String("addr", cfg.Addr), zap.Int("attempt", attempt+1), zap.Error(err))
			if attempt < cfg.MaxRetries {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(cfg.RetryInterval):
				}
			}
			continue
		}
		return client, nil
	}
	return nil, fmt.Errorf("connect to redis after %d retries: %w", cfg.MaxRetries, lastErr)
}
