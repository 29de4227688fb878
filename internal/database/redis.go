package database

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fileshelf/backend/internal/config"
)

// Redis wraps the key/value cache used for session tokens. Expiry is enforced
// by the store itself through TTLs; the application never renews them.
type Redis struct {
	rdb *redis.Client
}

func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return &Redis{rdb: rdb}, nil
}

// Get returns the value for key and whether it exists.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Redis) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.SetEx(ctx, key, value, ttl).Err()
}

// Del removes key and reports whether anything was deleted.
func (r *Redis) Del(ctx context.Context, key string) (bool, error) {
	deleted, err := r.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Client exposes the underlying connection for the job queue, which shares
// the same Redis instance.
func (r *Redis) Client() *redis.Client {
	return r.rdb
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
