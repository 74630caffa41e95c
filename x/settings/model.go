package settings

import (
	"time"
)

// Root is the searchgate section of the settings file. Blocks are listed
// in evaluation order; definitions (ldaps, providers, services, users) are
// referenced from rules by name.
type Root struct {
	Enable             bool `yaml:"enable"`
	PromptForBasicAuth bool `yaml:"prompt_for_basic_auth"`
	AuditCollector     bool `yaml:"audit_collector"`

	Blocks               []Block               `yaml:"access_control_rules"`
	Ldaps                []Ldap                `yaml:"ldaps"`
	UserGroupsProviders  []GroupsProvider      `yaml:"user_groups_providers"`
	ExternalAuthServices []ExternalAuthService `yaml:"external_authentication_service_settings"`
	Users                []User                `yaml:"users"`
}

// Block is one access-control rule block. Everything that is not one of
// the fixed keys is a rule: the key names the rule type and the value is
// its rule-specific configuration, resolved through the rule registry.
type Block struct {
	Name      string                 `yaml:"name"`
	Policy    string                 `yaml:"type"`
	Verbosity string                 `yaml:"verbosity"`
	Rules     map[string]interface{} `yaml:",inline"`
}

type Ldap struct {
	Name                  string `yaml:"name"`
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	SSL                   bool   `yaml:"ssl_enabled"`
	SSLTrustAllCerts      bool   `yaml:"ssl_trust_all_certs"`
	BindDN                string `yaml:"bind_dn"`
	BindPassword          string `yaml:"bind_password"`
	SearchUserBaseDN      string `yaml:"search_user_base_DN"`
	SearchGroupsBaseDN    string `yaml:"search_groups_base_DN"`
	UserIDAttribute       string `yaml:"user_id_attribute"`
	UniqueMemberAttribute string `yaml:"unique_member_attribute"`
	ConnectionTimeoutSec  int    `yaml:"connection_timeout_in_sec"`
	RequestTimeoutSec     int    `yaml:"request_timeout_in_sec"`
	CacheTTLSec           int    `yaml:"cache_ttl_in_sec"`
}

func (l Ldap) ConnectionTimeout() time.Duration {
	if l.ConnectionTimeoutSec <= 0 {
		return 1 * time.Second
	}
	return time.Duration(l.ConnectionTimeoutSec) * time.Second
}

func (l Ldap) RequestTimeout() time.Duration {
	if l.RequestTimeoutSec <= 0 {
		return 1 * time.Second
	}
	return time.Duration(l.RequestTimeoutSec) * time.Second
}

func (l Ldap) CacheTTL() time.Duration {
	return time.Duration(l.CacheTTLSec) * time.Second
}

// TokenPassing selects how a groups provider receives the user id.
const (
	TokenPassedAsQuery  = "QUERY_PARAM"
	TokenPassedAsHeader = "HEADER"
)

type GroupsProvider struct {
	Name                   string `yaml:"name"`
	GroupsEndpoint         string `yaml:"groups_endpoint"`
	AuthTokenName          string `yaml:"auth_token_name"`
	AuthTokenPassedAs      string `yaml:"auth_token_passed_as"`
	ResponseGroupsJSONPath string `yaml:"response_groups_json_path"`
	RequestTimeoutSec      int    `yaml:"request_timeout_in_sec"`
	CacheTTLSec            int    `yaml:"cache_ttl_in_sec"`
}

func (g GroupsProvider) RequestTimeout() time.Duration {
	if g.RequestTimeoutSec <= 0 {
		return 2 * time.Second
	}
	return time.Duration(g.RequestTimeoutSec) * time.Second
}

func (g GroupsProvider) CacheTTL() time.Duration {
	return time.Duration(g.CacheTTLSec) * time.Second
}

type ExternalAuthService struct {
	Name              string `yaml:"name"`
	Endpoint          string `yaml:"authentication_endpoint"`
	SuccessStatusCode int    `yaml:"success_status_code"`
	RequestTimeoutSec int    `yaml:"request_timeout_in_sec"`
	CacheTTLSec       int    `yaml:"cache_ttl_in_sec"`
}

func (e ExternalAuthService) RequestTimeout() time.Duration {
	if e.RequestTimeoutSec <= 0 {
		return 2 * time.Second
	}
	return time.Duration(e.RequestTimeoutSec) * time.Second
}

func (e ExternalAuthService) CacheTTL() time.Duration {
	return time.Duration(e.CacheTTLSec) * time.Second
}

// User is a statically configured user for the groups rule.
type User struct {
	Username      string   `yaml:"username"`
	AuthKey       string   `yaml:"auth_key"`
	AuthKeySha256 string   `yaml:"auth_key_sha256"`
	Groups        []string `yaml:"groups"`
}
