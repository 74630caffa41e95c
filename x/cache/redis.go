package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
)

type redisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore backs the decorator caches with redis, so a fleet of
// gateways in front of the same cluster shares one identity cache.
func NewRedisStore(rdb *redis.Client, prefix string) Store {
	return &redisStore{rdb: rdb, prefix: prefix}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := tracer.Start(ctx, "Cache.Redis.Get")
	defer span.End()

	val, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", false, err
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	ctx, span := tracer.Start(ctx, "Cache.Redis.Set")
	defer span.End()

	err := s.rdb.Set(ctx, s.prefix+key, value, ttl).Err()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "Cache.Redis.Delete")
	defer span.End()

	return s.rdb.Del(ctx, s.prefix+key).Err()
}
