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
)

// authKeyRule matches a fixed "user:password" credential sent as Basic
// auth. The sha256 variant stores only the digest of the pair in the
// settings file.
type authKeyRule struct {
	key      string
	user     string
	password string
}

func NewAuthKeyRule(value interface{}) (acl.Rule, error) {
	s, err := toString(value)
	if err != nil {
		return nil, err
	}
	user, password, found := strings.Cut(s, ":")
	if !found || user == "" || password == "" {
		return nil, core.NewErrorConfig("auth_key must be in the user:password format")
	}
	return &authKeyRule{key: "auth_key", user: user, password: password}, nil
}

func (r *authKeyRule) Key() string    { return r.key }
func (r *authKeyRule) Authenticates() {}

func (r *authKeyRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	user, password, ok := basicAuth(rc)
	if !ok {
		return false, nil
	}

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(r.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(r.password)) == 1
	if !userOK || !passOK {
		return false, nil
	}

	rc.SetLoggedUser(core.NewLoggedUser(user))
	return true, nil
}

type authKeySha256Rule struct {
	digest string
}

func NewAuthKeySha256Rule(value interface{}) (acl.Rule, error) {
	s, err := toString(value)
	if err != nil {
		return nil, err
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != sha256.Size*2 {
		return nil, core.NewErrorConfig("auth_key_sha256 must be a hex encoded sha256 of user:password")
	}
	return &authKeySha256Rule{digest: s}, nil
}

func (r *authKeySha256Rule) Key() string    { return "auth_key_sha256" }
func (r *authKeySha256Rule) Authenticates() {}

func (r *authKeySha256Rule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	user, password, ok := basicAuth(rc)
	if !ok {
		return false, nil
	}

	sum := sha256.Sum256([]byte(user + ":" + password))
	presented := hex.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(presented), []byte(r.digest)) != 1 {
		return false, nil
	}

	rc.SetLoggedUser(core.NewLoggedUser(user))
	return true, nil
}
