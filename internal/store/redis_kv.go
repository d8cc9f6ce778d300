package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/satonic/satonic-storefront/internal/config"
)

const redisOpTimeout = 500 * time.Millisecond

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s failed: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisKV stores values as plain redis strings
type RedisKV struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisKV wraps client. Keys are stored under prefix; a zero ttl keeps
// entries forever.
func NewRedisKV(client *redis.Client, prefix string, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, prefix: prefix, ttl: ttl}
}

// opContext bounds a single redis call unless the caller already has a
// tighter deadline
func (r *RedisKV) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= redisOpTimeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, redisOpTimeout)
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisKV) Remove(ctx context.Context, key string) error {
	ctx, cancel := r.opContext(ctx)
	defer cancel()

	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
