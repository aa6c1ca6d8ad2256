// Package cache wraps the optional redis instance. A nil *Client is valid and
// behaves as an always-empty cache whose locks are always granted, so callers
// never need to check whether redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/straye-as/backoffice-api/internal/config"
	"go.uber.org/zap"
)

// Client is a JSON cache and distributed lock backed by redis
type Client struct {
	rdb    *redis.Client
	locker *redislock.Client
	logger *zap.Logger
}

// New connects to redis. It returns nil without error when no address is configured.
func New(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil || !cfg.Enabled() {
		logger.Info("Redis not configured, cache and job locks disabled")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}

	logger.Info("Connected to redis", zap.String("address", cfg.Address), zap.Int("db", cfg.DB))

	return &Client{
		rdb:    rdb,
		locker: redislock.New(rdb),
		logger: logger,
	}, nil
}

// GetJSON loads key into dest. The boolean is false on a cache miss.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value under key for ttl
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// WithLock runs fn while holding the named lock. It returns false without
// running fn when another holder owns the lock.
func (c *Client) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) (bool, error) {
	if c == nil {
		return true, fn(ctx)
	}

	lock, err := c.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			c.logger.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}()

	return true, fn(ctx)
}

// Ping checks connectivity. A nil client is always healthy.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying connection pool
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
