package rules

import (
	"context"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/extauth"
	"github.com/mizuame/searchgate/x/reqctx"
)

// externalAuthenticationRule delegates Basic credentials to a configured
// external HTTP authentication service. The settings value is either the
// service name or a mapping with a "service" key.
type externalAuthenticationRule struct {
	service extauth.Client
}

func NewExternalAuthenticationRule(value interface{}, defs *Definitions) (acl.Rule, error) {
	var name string

	switch value.(type) {
	case string:
		name, _ = toString(value)
	default:
		m, err := toMap(value)
		if err != nil {
			return nil, err
		}
		raw, ok := m["service"]
		if !ok {
			return nil, core.NewErrorConfig("external_authentication requires a service name")
		}
		if name, err = toString(raw); err != nil {
			return nil, err
		}
	}

	service, ok := defs.AuthServices[name]
	if !ok {
		return nil, core.NewErrorConfig("unknown external authentication service: " + name)
	}
	return &externalAuthenticationRule{service: service}, nil
}

func (r *externalAuthenticationRule) Key() string    { return "external_authentication" }
func (r *externalAuthenticationRule) Authenticates() {}

func (r *externalAuthenticationRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	user, password, ok := basicAuth(rc)
	if !ok {
		return false, nil
	}

	authenticated, err := r.service.Authenticate(ctx, user, password)
	if err != nil {
		return false, err
	}
	if !authenticated {
		return false, nil
	}

	rc.SetLoggedUser(core.NewLoggedUser(user))
	return true, nil
}
