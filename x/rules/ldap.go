package rules

import (
	"context"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/ldap"
	"github.com/mizuame/searchgate/x/reqctx"
)

func ldapByName(value interface{}, defs *Definitions) (ldap.Client, map[string]interface{}, error) {
	var name string
	var m map[string]interface{}

	switch value.(type) {
	case string:
		name, _ = toString(value)
	default:
		var err error
		if m, err = toMap(value); err != nil {
			return nil, nil, err
		}
		raw, ok := m["name"]
		if !ok {
			return nil, nil, core.NewErrorConfig("ldap rule requires the connector name")
		}
		if name, err = toString(raw); err != nil {
			return nil, nil, err
		}
	}

	client, ok := defs.Ldaps[name]
	if !ok {
		return nil, nil, core.NewErrorConfig("unknown ldap connector: " + name)
	}
	return client, m, nil
}

// ldapAuthenticationRule binds the Basic credentials against a directory.
type ldapAuthenticationRule struct {
	client ldap.Client
}

func NewLdapAuthenticationRule(value interface{}, defs *Definitions) (acl.Rule, error) {
	client, _, err := ldapByName(value, defs)
	if err != nil {
		return nil, err
	}
	return &ldapAuthenticationRule{client: client}, nil
}

func (r *ldapAuthenticationRule) Key() string    { return "ldap_authentication" }
func (r *ldapAuthenticationRule) Authenticates() {}

func (r *ldapAuthenticationRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	uid, password, ok := basicAuth(rc)
	if !ok {
		return false, nil
	}

	user, err := r.client.Authenticate(ctx, uid, password)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}

	rc.SetLoggedUser(core.NewLoggedUser(user.UID))
	return true, nil
}

// ldapAuthorizationRule checks that the already-authenticated user belongs
// to at least one of the configured directory groups. The matching groups
// become the user's available groups.
type ldapAuthorizationRule struct {
	client ldap.Client
	groups *Matcher
}

func NewLdapAuthorizationRule(value interface{}, defs *Definitions) (acl.Rule, error) {
	client, m, err := ldapByName(value, defs)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, core.NewErrorConfig("ldap_authorization requires a groups list")
	}
	raw, ok := m["groups"]
	if !ok {
		return nil, core.NewErrorConfig("ldap_authorization requires a groups list")
	}
	wanted, err := toStringSlice(raw)
	if err != nil {
		return nil, err
	}
	if len(wanted) == 0 {
		return nil, core.NewErrorConfig("ldap_authorization requires at least one group")
	}
	return &ldapAuthorizationRule{client: client, groups: NewMatcher(wanted)}, nil
}

func (r *ldapAuthorizationRule) Key() string { return "ldap_authorization" }
func (r *ldapAuthorizationRule) Authorizes() {}

func (r *ldapAuthorizationRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	logged := rc.LoggedUser()
	if logged == nil {
		return false, nil
	}

	entry, err := r.client.UserByID(ctx, logged.ID)
	if err != nil {
		return false, err
	}
	if entry == nil {
		return false, nil
	}

	memberOf, err := r.client.GroupsOf(ctx, entry)
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
