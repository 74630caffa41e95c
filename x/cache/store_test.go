package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mizuame/searchgate/internal/testutil"
	"github.com/mizuame/searchgate/x/cache"
)

func exerciseStore(t *testing.T, store cache.Store) {
	t.Helper()
	ctx := context.Background()

	assert.NoError(t, store.Set(ctx, "k", "v", time.Minute))

	value, hit, err := store.Get(ctx, "k")
	assert.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v", value)

	_, hit, err = store.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, store.Delete(ctx, "k"))
	_, hit, _ = store.Get(ctx, "k")
	assert.False(t, hit)
}

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping docker-backed test")
	}

	rdb, cleanup := testutil.CreateRDB()
	defer cleanup()

	exerciseStore(t, cache.NewRedisStore(rdb, "test"))
}

func TestMemcachedStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping docker-backed test")
	}

	mc, cleanup := testutil.CreateMC()
	defer cleanup()

	exerciseStore(t, cache.NewMemcachedStore(mc, "test"))
}
