package rules

import (
	"context"
	"regexp"

	"github.com/pkg/errors"

	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

type uriReRule struct {
	re *regexp.Regexp
}

func NewURIReRule(value interface{}) (acl.Rule, error) {
	pattern, err := toString(value)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, "uri_re pattern does not compile")
	}
	return &uriReRule{re: re}, nil
}

func (r *uriReRule) Key() string { return "uri_re" }

func (r *uriReRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	return r.re.MatchString(rc.Path()), nil
}
