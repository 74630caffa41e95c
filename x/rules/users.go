package rules

import (
	"context"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

// usersRule restricts a block to specific authenticated user ids. It never
// authenticates on its own: with no logged user it simply does not match.
type usersRule struct {
	users *Matcher
}

func NewUsersRule(value interface{}) (acl.Rule, error) {
	users, err := toStringSlice(value)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, core.NewErrorConfig("users requires at least one user pattern")
	}
	return &usersRule{users: NewMatcher(users)}, nil
}

func (r *usersRule) Key() string { return "users" }

func (r *usersRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	logged := rc.LoggedUser()
	if logged == nil {
		return false, nil
	}
	return r.users.Match(logged.ID), nil
}
