package cache

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"go.opentelemetry.io/otel/codes"
)

type memcachedStore struct {
	mc     *memcache.Client
	prefix string
}

func NewMemcachedStore(mc *memcache.Client, prefix string) Store {
	return &memcachedStore{mc: mc, prefix: prefix}
}

func (s *memcachedStore) Get(ctx context.Context, key string) (string, bool, error) {
	_, span := tracer.Start(ctx, "Cache.Memcached.Get")
	defer span.End()

	item, err := s.mc.Get(s.prefix + key)
	if err == memcache.ErrCacheMiss {
		return "", false, nil
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", false, err
	}
	return string(item.Value), true, nil
}

func (s *memcachedStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	_, span := tracer.Start(ctx, "Cache.Memcached.Set")
	defer span.End()

	// memcached expirations are whole seconds; round up so a sub-second
	// ttl still expires rather than living forever.
	seconds := int32(ttl / time.Second)
	if ttl%time.Second != 0 {
		seconds++
	}

	err := s.mc.Set(&memcache.Item{
		Key:        s.prefix + key,
		Value:      []byte(value),
		Expiration: seconds,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *memcachedStore) Delete(ctx context.Context, key string) error {
	_, span := tracer.Start(ctx, "Cache.Memcached.Delete")
	defer span.End()

	err := s.mc.Delete(s.prefix + key)
	if err == memcache.ErrCacheMiss {
		return nil
	}
	return err
}
