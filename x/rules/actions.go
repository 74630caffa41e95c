package rules

import (
	"context"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

type actionsRule struct {
	actions *Matcher
}

func NewActionsRule(value interface{}) (acl.Rule, error) {
	actions, err := toStringSlice(value)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, core.NewErrorConfig("actions requires at least one action pattern")
	}
	return &actionsRule{actions: NewMatcher(actions)}, nil
}

func (r *actionsRule) Key() string { return "actions" }

func (r *actionsRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	return r.actions.Match(rc.Action()), nil
}
