package rules

import (
	"context"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

// indicesRule restricts which indices a request may touch. Patterns may
// contain variables, resolved per request. A read request targeting a
// mixed set is narrowed to the allowed subset instead of rejected; a write
// request must match in full.
type indicesRule struct {
	patterns []string
}

func NewIndicesRule(value interface{}) (acl.Rule, error) {
	patterns, err := toStringSlice(value)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, core.NewErrorConfig("indices requires at least one index pattern")
	}
	return &indicesRule{patterns: patterns}, nil
}

func (r *indicesRule) Key() string { return "indices" }

func (r *indicesRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	if !rc.InvolvesIndices() {
		return true, nil
	}

	resolved := make([]string, 0, len(r.patterns))
	for _, p := range r.patterns {
		v, ok := rc.ResolveVariable(p)
		if !ok {
			continue
		}
		resolved = append(resolved, v)
	}
	if len(resolved) == 0 {
		return false, nil
	}
	matcher := NewMatcher(resolved)

	indices := rc.CurrentIndices()

	// An indices-capable request naming no index reads the whole cluster;
	// only an unrestricted pattern set can let it through.
	if len(indices) == 0 {
		return matcher.Match("*"), nil
	}

	if matcher.MatchAll(indices) {
		return true, nil
	}

	if rc.IsReadRequest() {
		narrowed := matcher.Filter(indices)
		if len(narrowed) > 0 {
			rc.SetIndices(narrowed)
			return true, nil
		}
	}

	return false, nil
}
