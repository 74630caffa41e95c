package extauth

import (
	"context"
	"time"

	"github.com/mizuame/searchgate/x/cache"
)

// cacheDecorator remembers successful authentications as a salted hash of
// the password keyed by username. Only successes are cached: a failure must
// always hit the service again, and a hash mismatch within the TTL means
// the credential changed, which reads as "not authenticated".
type cacheDecorator struct {
	underlying Client
	store      cache.Store
	hasher     *cache.Hasher
	ttl        time.Duration
	prefix     string
}

// Wrap returns the client untouched when ttl is zero.
func Wrap(name string, ttl time.Duration, store cache.Store, hasher *cache.Hasher, underlying Client) Client {
	if ttl == 0 {
		return underlying
	}
	return &cacheDecorator{
		underlying: underlying,
		store:      store,
		hasher:     hasher,
		ttl:        ttl,
		prefix:     "extauth:" + name + ":",
	}
}

func (d *cacheDecorator) Authenticate(ctx context.Context, username, password string) (bool, error) {
	key := d.prefix + username

	storedHash, hit, err := d.store.Get(ctx, key)
	if err == nil && hit {
		return d.hasher.Compare(password, storedHash), nil
	}

	authenticated, err := d.underlying.Authenticate(ctx, username, password)
	if err != nil {
		return false, err
	}
	if authenticated {
		_ = d.store.Set(ctx, key, d.hasher.Hash(password), d.ttl)
	}
	return authenticated, nil
}
