package rules

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
	"github.com/mizuame/searchgate/x/settings"
)

// groupsRule authenticates against the statically configured users and
// requires the matched user to belong to one of the listed groups. Group
// names may contain variables, resolved per request.
type groupsRule struct {
	groups []string
	users  []settings.User
}

func NewGroupsRule(value interface{}, defs *Definitions) (acl.Rule, error) {
	wanted, err := toStringSlice(value)
	if err != nil {
		return nil, err
	}
	if len(wanted) == 0 {
		return nil, core.NewErrorConfig("groups requires at least one group")
	}
	if len(defs.Users) == 0 {
		return nil, core.NewErrorConfig("groups rule requires users to be defined in the settings")
	}
	return &groupsRule{groups: wanted, users: defs.Users}, nil
}

func (r *groupsRule) Key() string    { return "groups" }
func (r *groupsRule) Authenticates() {}

func (r *groupsRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	user, password, ok := basicAuth(rc)
	if !ok {
		return false, nil
	}

	matched := r.findUser(user, password)
	if matched == nil {
		return false, nil
	}

	wanted := make([]string, 0, len(r.groups))
	for _, g := range r.groups {
		resolved, ok := rc.ResolveVariable(g)
		if !ok {
			continue
		}
		wanted = append(wanted, resolved)
	}

	available := NewMatcher(wanted).Filter(matched.Groups)
	if len(available) == 0 {
		return false, nil
	}

	logged := core.NewLoggedUser(matched.Username)
	logged.AddAvailableGroups(available)
	logged.ResolveCurrentGroup(rc.Header(core.HeaderCurrentGroup))
	rc.SetLoggedUser(logged)
	return true, nil
}

func (r *groupsRule) findUser(user, password string) *settings.User {
	for i := range r.users {
		u := &r.users[i]
		if u.Username != user {
			continue
		}
		if u.AuthKey != "" {
			wantUser, wantPass, found := strings.Cut(u.AuthKey, ":")
			if found &&
				subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(wantPass)) == 1 {
				return u
			}
		}
		if u.AuthKeySha256 != "" {
			sum := sha256.Sum256([]byte(user + ":" + password))
			presented := hex.EncodeToString(sum[:])
			if subtle.ConstantTimeCompare([]byte(presented), []byte(strings.ToLower(u.AuthKeySha256))) == 1 {
				return u
			}
		}
	}
	return nil
}
