package rules

import (
	"context"
	"strings"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

type methodsRule struct {
	methods map[string]struct{}
}

func NewMethodsRule(value interface{}) (acl.Rule, error) {
	list, err := toStringSlice(value)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, core.NewErrorConfig("methods requires at least one HTTP method")
	}
	methods := make(map[string]struct{}, len(list))
	for _, m := range list {
		methods[strings.ToUpper(m)] = struct{}{}
	}
	return &methodsRule{methods: methods}, nil
}

func (r *methodsRule) Key() string { return "methods" }

func (r *methodsRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	_, ok := r.methods[strings.ToUpper(rc.Method())]
	return ok, nil
}
