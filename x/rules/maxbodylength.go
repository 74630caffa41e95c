package rules

import (
	"context"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

type maxBodyLengthRule struct {
	limit int64
}

func NewMaxBodyLengthRule(value interface{}) (acl.Rule, error) {
	limit, err := toInt(value)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, core.NewErrorConfig("max_body_length must not be negative")
	}
	return &maxBodyLengthRule{limit: int64(limit)}, nil
}

func (r *maxBodyLengthRule) Key() string { return "max_body_length" }

func (r *maxBodyLengthRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	return rc.ContentLength() <= r.limit, nil
}
