package rules

import (
	"context"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

// xForwardedForRule matches any hop in the X-Forwarded-For chain.
type xForwardedForRule struct {
	allowed *Matcher
}

func NewXForwardedForRule(value interface{}) (acl.Rule, error) {
	allowed, err := toStringSlice(value)
	if err != nil {
		return nil, err
	}
	if len(allowed) == 0 {
		return nil, core.NewErrorConfig("x_forwarded_for requires at least one address")
	}
	return &xForwardedForRule{allowed: NewMatcher(allowed)}, nil
}

func (r *xForwardedForRule) Key() string { return "x_forwarded_for" }

func (r *xForwardedForRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	for _, hop := range forwardedForChain(rc.Header(core.HeaderForwardedFor)) {
		if r.allowed.Match(hop) {
			return true, nil
		}
	}
	return false, nil
}
