package acl

// ruleOrdering fixes the evaluation order of rules inside a block,
// independent of how they appear in the settings file:
// authentication rules first because they establish the user information
// later rules rely on, then authorization, then read-only inspection,
// and finally rules that mutate the request, so inspection always sees
// the original, unmutated intent.
var ruleOrdering = []string{
	// authentication
	"auth_key",
	"auth_key_sha256",
	"proxy_auth",
	"jwt_auth",
	"ldap_authentication",
	"external_authentication",
	"groups",

	// authorization
	"ldap_authorization",
	"groups_provider_authorization",

	// inspection
	"hosts",
	"x_forwarded_for",
	"api_keys",
	"uri_re",
	"max_body_length",
	"methods",
	"headers",
	"indices",
	"repositories",
	"snapshots",
	"actions",
	"users",

	// mutation
	"indices_rewrite",
}

var orderingIndex = func() map[string]int {
	m := make(map[string]int, len(ruleOrdering))
	for i, key := range ruleOrdering {
		m[key] = i
	}
	return m
}()

func orderOf(key string) int {
	if i, ok := orderingIndex[key]; ok {
		return i
	}
	return len(ruleOrdering)
}
