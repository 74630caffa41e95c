package rules

import (
	"context"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/groups"
	"github.com/mizuame/searchgate/x/reqctx"
)

// groupsProviderAuthorizationRule asks an HTTP groups provider for the
// authenticated user's groups and requires an overlap with the configured
// list.
type groupsProviderAuthorizationRule struct {
	provider groups.Client
	groups   *Matcher
}

func NewGroupsProviderAuthorizationRule(value interface{}, defs *Definitions) (acl.Rule, error) {
	m, err := toMap(value)
	if err != nil {
		return nil, err
	}

	rawName, ok := m["user_groups_provider"]
	if !ok {
		return nil, core.NewErrorConfig("groups_provider_authorization requires a user_groups_provider name")
	}
	name, err := toString(rawName)
	if err != nil {
		return nil, err
	}
	provider, ok := defs.GroupProviders[name]
	if !ok {
		return nil, core.NewErrorConfig("unknown user groups provider: " + name)
	}

	rawGroups, ok := m["groups"]
	if !ok {
		return nil, core.NewErrorConfig("groups_provider_authorization requires a groups list")
	}
	wanted, err := toStringSlice(rawGroups)
	if err != nil {
		return nil, err
	}
	if len(wanted) == 0 {
		return nil, core.NewErrorConfig("groups_provider_authorization requires at least one group")
	}

	return &groupsProviderAuthorizationRule{provider: provider, groups: NewMatcher(wanted)}, nil
}

func (r *groupsProviderAuthorizationRule) Key() string { return "groups_provider_authorization" }
func (r *groupsProviderAuthorizationRule) Authorizes() {}

func (r *groupsProviderAuthorizationRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	logged := rc.LoggedUser()
	if logged == nil {
		return false, nil
	}

	memberOf, err := r.provider.GroupsOf(ctx, logged.ID)
	if err != nil {
		return false, err
	}

	available := r.groups.Filter(memberOf)
	if len(available) == 0 {
		return false, nil
	}

	logged.AddAvailableGroups(available)
	logged.ResolveCurrentGroup(rc.Header(core.HeaderCurrentGroup))
	rc.SetLoggedUser(logged)
	return true, nil
}
