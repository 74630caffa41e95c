package ldap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mizuame/searchgate/x/settings"
)

func TestDialAppliesConnectionTimeout(t *testing.T) {
	// 192.0.2.0/24 is reserved for documentation and never routed, so the
	// dial can only end by hitting the configured timeout (or an immediate
	// network error), never the library default.
	c := NewClient(settings.Ldap{
		Name:                 "unreachable",
		Host:                 "192.0.2.1",
		Port:                 389,
		ConnectionTimeoutSec: 1,
	})

	start := time.Now()
	user, err := c.Authenticate(context.Background(), "alice", "secret")
	elapsed := time.Since(start)

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Less(t, elapsed, 5*time.Second)
}
