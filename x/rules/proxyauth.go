package rules

import (
	"context"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

// proxyAuthRule trusts an upstream reverse proxy that already
// authenticated the user and forwarded the identity in a header.
type proxyAuthRule struct {
	users *Matcher
}

func NewProxyAuthRule(value interface{}) (acl.Rule, error) {
	users, err := toStringSlice(value)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, core.NewErrorConfig("proxy_auth requires at least one user")
	}
	return &proxyAuthRule{users: NewMatcher(users)}, nil
}

func (r *proxyAuthRule) Key() string    { return "proxy_auth" }
func (r *proxyAuthRule) Authenticates() {}

func (r *proxyAuthRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	user := rc.Header(core.HeaderForwardedUser)
	if user == "" || !r.users.Match(user) {
		return false, nil
	}
	rc.SetLoggedUser(core.NewLoggedUser(user))
	return true, nil
}
