package rules

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

// jwtAuthRule verifies an HMAC-signed bearer token and takes the user
// identity from a configurable claim. Only verification happens here;
// token issuance is someone else's job.
type jwtAuthRule struct {
	signatureKey []byte
	userClaim    string
	headerName   string
}

func NewJwtAuthRule(value interface{}) (acl.Rule, error) {
	m, err := toMap(value)
	if err != nil {
		return nil, err
	}

	rawKey, ok := m["signature_key"]
	if !ok {
		return nil, core.NewErrorConfig("jwt_auth requires a signature_key")
	}
	key, err := toString(rawKey)
	if err != nil {
		return nil, err
	}

	rule := &jwtAuthRule{
		signatureKey: []byte(key),
		userClaim:    "sub",
		headerName:   core.HeaderAuthorization,
	}

	if raw, ok := m["user_claim"]; ok {
		if rule.userClaim, err = toString(raw); err != nil {
			return nil, err
		}
	}
	if raw, ok := m["header_name"]; ok {
		if rule.headerName, err = toString(raw); err != nil {
			return nil, err
		}
	}

	return rule, nil
}

func (r *jwtAuthRule) Key() string    { return "jwt_auth" }
func (r *jwtAuthRule) Authenticates() {}

func (r *jwtAuthRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	raw := rc.Header(r.headerName)
	if raw == "" {
		return false, nil
	}
	if scheme, rest, found := strings.Cut(raw, " "); found && strings.EqualFold(scheme, "Bearer") {
		raw = rest
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, core.NewErrorConfig("unexpected jwt signing method: " + t.Method.Alg())
		}
		return r.signatureKey, nil
	})
	if err != nil || !token.Valid {
		// a bad token is a normal no-match, not an engine error
		return false, nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false, nil
	}
	user, ok := claims[r.userClaim].(string)
	if !ok || user == "" {
		return false, nil
	}

	rc.SetLoggedUser(core.NewLoggedUser(user))
	return true, nil
}
