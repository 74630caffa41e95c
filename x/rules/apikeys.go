package rules

import (
	"context"
	"crypto/subtle"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

type apiKeysRule struct {
	keys []string
}

func NewApiKeysRule(value interface{}) (acl.Rule, error) {
	keys, err := toStringSlice(value)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, core.NewErrorConfig("api_keys requires at least one key")
	}
	return &apiKeysRule{keys: keys}, nil
}

func (r *apiKeysRule) Key() string { return "api_keys" }

func (r *apiKeysRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	presented := rc.Header(core.HeaderApiKey)
	if presented == "" {
		return false, nil
	}
	for _, key := range r.keys {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
			return true, nil
		}
	}
	return false, nil
}
