package ldap

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/cache"
)

type authEntry struct {
	DN           string `json:"dn"`
	HashedSecret string `json:"hashedSecret"`
}

// cacheDecorator fronts a Client with TTL caches. Authentication results
// are stored as a salted hash of the presented password, never the
// password itself; a hash mismatch inside the TTL reads as "not
// authenticated" so rotated credentials cannot ride a stale entry.
type cacheDecorator struct {
	underlying Client
	store      cache.Store
	hasher     *cache.Hasher
	ttl        time.Duration
	prefix     string
}

// Wrap layers the cache in front of the client. A zero ttl disables
// caching and returns the client untouched.
func Wrap(name string, ttl time.Duration, store cache.Store, hasher *cache.Hasher, underlying Client) Client {
	if ttl == 0 {
		return underlying
	}
	return &cacheDecorator{
		underlying: underlying,
		store:      store,
		hasher:     hasher,
		ttl:        ttl,
		prefix:     "ldap:" + name + ":",
	}
}

func (d *cacheDecorator) Authenticate(ctx context.Context, uid, password string) (*core.LdapUser, error) {
	key := d.prefix + "auth:" + uid

	raw, hit, err := d.store.Get(ctx, key)
	if err == nil && hit {
		var entry authEntry
		if err := json.Unmarshal([]byte(raw), &entry); err == nil {
			if d.hasher.Compare(password, entry.HashedSecret) {
				return &core.LdapUser{UID: uid, DN: entry.DN}, nil
			}
			return nil, nil
		}
	}

	user, err := d.underlying.Authenticate(ctx, uid, password)
	if err != nil {
		return nil, err
	}
	if user != nil {
		entry, _ := json.Marshal(authEntry{DN: user.DN, HashedSecret: d.hasher.Hash(password)})
		_ = d.store.Set(ctx, key, string(entry), d.ttl)
	}
	return user, nil
}

func (d *cacheDecorator) UserByID(ctx context.Context, uid string) (*core.LdapUser, error) {
	key := d.prefix + "user:" + uid

	raw, hit, err := d.store.Get(ctx, key)
	if err == nil && hit {
		var user core.LdapUser
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			if user.UID == "" {
				return nil, nil
			}
			return &user, nil
		}
	}

	user, err := d.underlying.UserByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	var entry []byte
	if user == nil {
		entry, _ = json.Marshal(core.LdapUser{})
	} else {
		entry, _ = json.Marshal(user)
	}
	_ = d.store.Set(ctx, key, string(entry), d.ttl)

	return user, nil
}

func (d *cacheDecorator) GroupsOf(ctx context.Context, user *core.LdapUser) ([]string, error) {
	key := d.prefix + "groups:" + user.UID

	raw, hit, err := d.store.Get(ctx, key)
	if err == nil && hit {
		var groups []string
		if err := json.Unmarshal([]byte(raw), &groups); err == nil {
			return groups, nil
		}
	}

	groups, err := d.underlying.GroupsOf(ctx, user)
	if err != nil {
		return nil, err
	}

	entry, _ := json.Marshal(groups)
	_ = d.store.Set(ctx, key, string(entry), d.ttl)

	return groups, nil
}
