package groups

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mizuame/searchgate/x/cache"
)

type cacheDecorator struct {
	underlying Client
	store      cache.Store
	ttl        time.Duration
	prefix     string
}

// Wrap caches resolved group sets by user id. No secret is involved here,
// so the entry is stored as plain JSON. A zero ttl disables caching.
func Wrap(name string, ttl time.Duration, store cache.Store, underlying Client) Client {
	if ttl == 0 {
		return underlying
	}
	return &cacheDecorator{
		underlying: underlying,
		store:      store,
		ttl:        ttl,
		prefix:     "groups:" + name + ":",
	}
}

func (d *cacheDecorator) GroupsOf(ctx context.Context, uid string) ([]string, error) {
	key := d.prefix + uid

	raw, hit, err := d.store.Get(ctx, key)
	if err == nil && hit {
		var groups []string
		if err := json.Unmarshal([]byte(raw), &groups); err == nil {
			return groups, nil
		}
	}

	groups, err := d.underlying.GroupsOf(ctx, uid)
	if err != nil {
		return nil, err
	}

	entry, _ := json.Marshal(groups)
	_ = d.store.Set(ctx, key, string(entry), d.ttl)

	return groups, nil
}
