package rules

import (
	"context"
	"regexp"

	"github.com/pkg/errors"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

// indicesRewriteRule rewrites the target indices before the request goes
// upstream. The settings value is a list whose last element is the
// replacement and the preceding elements are regular expressions; the
// replacement may contain variables. Mutation only happens when the block
// matches and commits, like every other context write.
type indicesRewriteRule struct {
	patterns    []*regexp.Regexp
	replacement string
}

func NewIndicesRewriteRule(value interface{}) (acl.Rule, error) {
	list, err := toStringSlice(value)
	if err != nil {
		return nil, err
	}
	if len(list) < 2 {
		return nil, core.NewErrorConfig("indices_rewrite requires at least one pattern and a replacement")
	}

	replacement := list[len(list)-1]
	patterns := make([]*regexp.Regexp, 0, len(list)-1)
	for _, p := range list[:len(list)-1] {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "indices_rewrite pattern %q does not compile", p)
		}
		patterns = append(patterns, re)
	}

	return &indicesRewriteRule{patterns: patterns, replacement: replacement}, nil
}

func (r *indicesRewriteRule) Key() string { return "indices_rewrite" }
func (r *indicesRewriteRule) Mutates()    {}

func (r *indicesRewriteRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	if !rc.InvolvesIndices() {
		return true, nil
	}

	replacement, ok := rc.ResolveVariable(r.replacement)
	if !ok {
		return false, nil
	}

	indices := rc.CurrentIndices()
	rewritten := make([]string, 0, len(indices))
	changed := false
	for _, index := range indices {
		out := index
		for _, re := range r.patterns {
			if re.MatchString(out) {
				out = re.ReplaceAllString(out, replacement)
				changed = true
			}
		}
		rewritten = append(rewritten, out)
	}

	if changed {
		rc.SetIndices(rewritten)
	}
	return true, nil
}
