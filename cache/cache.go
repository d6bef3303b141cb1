// Package cache is the sequence and denylist gateway backed by Redis.
package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Gateway is what the services need from the cache. Every method is a
// single Redis command, so each one is atomic on its own.
type Gateway interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string) error
	SetStringNX(ctx context.Context, key, value string) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	GetBit(ctx context.Context, key string, offset int64) (bool, error)
	SetBit(ctx context.Context, key string, offset int64, value bool) error
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) GetString(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetString writes without expiry.
func (s *RedisStore) SetString(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) SetStringNX(ctx context.Context, key, value string) (bool, error) {
	return s.rdb.SetNX(ctx, key, value, 0).Result()
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.rdb.Incr(ctx, key).Result()
}

func (s *RedisStore) GetBit(ctx context.Context, key string, offset int64) (bool, error) {
	v, err := s.rdb.GetBit(ctx, key, offset).Result()
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

func (s *RedisStore) SetBit(ctx context.Context, key string, offset int64, value bool) error {
	bit := 0
	if value {
		bit = 1
	}
	return s.rdb.SetBit(ctx, key, offset, bit).Err()
}
