package rules

import (
	"context"
	"strings"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

// headersRule requires every listed "name:value" pair to be present on the
// request, with wildcards allowed in the value part.
type headersRule struct {
	wanted map[string]*Matcher
}

func NewHeadersRule(value interface{}) (acl.Rule, error) {
	list, err := toStringSlice(value)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, core.NewErrorConfig("headers requires at least one name:value pair")
	}

	wanted := make(map[string]*Matcher, len(list))
	for _, item := range list {
		name, pattern, found := strings.Cut(item, ":")
		if !found || name == "" {
			return nil, core.NewErrorConfig("headers entries must be in the name:value format")
		}
		wanted[strings.ToLower(name)] = NewMatcher([]string{pattern})
	}
	return &headersRule{wanted: wanted}, nil
}

func (r *headersRule) Key() string { return "headers" }

func (r *headersRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	for name, matcher := range r.wanted {
		if !matcher.Match(rc.Header(name)) {
			return false, nil
		}
	}
	return true, nil
}
