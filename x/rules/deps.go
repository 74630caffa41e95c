package rules

import (
	"github.com/mizuame/searchgate/client"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/cache"
	"github.com/mizuame/searchgate/x/extauth"
	"github.com/mizuame/searchgate/x/groups"
	"github.com/mizuame/searchgate/x/ldap"
	"github.com/mizuame/searchgate/x/settings"
)

// Definitions holds the named back-ends rules resolve at load time. They
// are built once from the settings and shared by every block referencing
// them, so two rules pointing at the same ldap share one cache.
type Definitions struct {
	Ldaps          map[string]ldap.Client
	AuthServices   map[string]extauth.Client
	GroupProviders map[string]groups.Client
	Users          []settings.User
}

// BuildDefinitions assembles the client for each definition in the
// settings, layered logging-over-cache-over-client.
func BuildDefinitions(root settings.Root, httpClient client.Client, store cache.Store, hasher *cache.Hasher) *Definitions {
	defs := &Definitions{
		Ldaps:          make(map[string]ldap.Client, len(root.Ldaps)),
		AuthServices:   make(map[string]extauth.Client, len(root.ExternalAuthServices)),
		GroupProviders: make(map[string]groups.Client, len(root.UserGroupsProviders)),
		Users:          root.Users,
	}

	for _, conf := range root.Ldaps {
		c := ldap.NewClient(conf)
		c = ldap.Wrap(conf.Name, conf.CacheTTL(), store, hasher, c)
		defs.Ldaps[conf.Name] = ldap.NewLoggingDecorator(conf.Name, c)
	}

	for _, conf := range root.ExternalAuthServices {
		c := extauth.NewClient(conf, httpClient)
		defs.AuthServices[conf.Name] = extauth.Wrap(conf.Name, conf.CacheTTL(), store, hasher, c)
	}

	for _, conf := range root.UserGroupsProviders {
		c := groups.NewClient(conf, httpClient)
		defs.GroupProviders[conf.Name] = groups.Wrap(conf.Name, conf.CacheTTL(), store, c)
	}

	return defs
}

// NewRegistry registers every rule constructor against the definitions.
func NewRegistry(defs *Definitions) *acl.Registry {
	r := acl.NewRegistry()

	r.Register("auth_key", NewAuthKeyRule)
	r.Register("auth_key_sha256", NewAuthKeySha256Rule)
	r.Register("proxy_auth", NewProxyAuthRule)
	r.Register("api_keys", NewApiKeysRule)
	r.Register("jwt_auth", NewJwtAuthRule)
	r.Register("external_authentication", func(value interface{}) (acl.Rule, error) {
		return NewExternalAuthenticationRule(value, defs)
	})
	r.Register("ldap_authentication", func(value interface{}) (acl.Rule, error) {
		return NewLdapAuthenticationRule(value, defs)
	})
	r.Register("ldap_authorization", func(value interface{}) (acl.Rule, error) {
		return NewLdapAuthorizationRule(value, defs)
	})
	r.Register("groups_provider_authorization", func(value interface{}) (acl.Rule, error) {
		return NewGroupsProviderAuthorizationRule(value, defs)
	})
	r.Register("groups", func(value interface{}) (acl.Rule, error) {
		return NewGroupsRule(value, defs)
	})
	r.Register("hosts", NewHostsRule)
	r.Register("x_forwarded_for", NewXForwardedForRule)
	r.Register("methods", NewMethodsRule)
	r.Register("uri_re", NewURIReRule)
	r.Register("headers", NewHeadersRule)
	r.Register("max_body_length", NewMaxBodyLengthRule)
	r.Register("indices", NewIndicesRule)
	r.Register("repositories", NewRepositoriesRule)
	r.Register("snapshots", NewSnapshotsRule)
	r.Register("actions", NewActionsRule)
	r.Register("users", NewUsersRule)
	r.Register("indices_rewrite", NewIndicesRewriteRule)

	return r
}
