package rules_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/audit"
	"github.com/mizuame/searchgate/x/cache"
	"github.com/mizuame/searchgate/x/reqctx"
	"github.com/mizuame/searchgate/x/rules"
	"github.com/mizuame/searchgate/x/settings"
)

const engineSettings = `
searchgate:
  enable: true
  access_control_rules:

    - name: "admins"
      type: allow
      auth_key: admin:container
      indices: ["*"]

    - name: "no deletes"
      type: forbid
      actions: ["indices:admin/delete"]

    - name: "log readers"
      type: allow
      auth_key: logger:secret
      indices: ["logstash-*"]
      actions: ["indices:data/read/*"]
`

func newEngine(t *testing.T) acl.Service {
	t.Helper()

	root, err := settings.Parse([]byte(engineSettings))
	assert.NoError(t, err)

	defs := rules.BuildDefinitions(root, nil, cache.NewMemoryStore(), cache.NewHasher())
	service, err := acl.NewService(rules.NewRegistry(defs), audit.NewService(), root)
	assert.NoError(t, err)
	assert.Equal(t, 3, service.BlockCount())

	return service
}

func basicAuthHeader(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

func searchRequest(authorization string, indices []string, hooks reqctx.Hooks) *reqctx.RequestContext {
	headers := map[string]string{}
	if authorization != "" {
		headers["Authorization"] = authorization
	}
	return reqctx.NewRequestContext(reqctx.Descriptor{
		ID:              "req-1",
		Action:          "indices:data/read/search",
		Method:          "GET",
		Path:            "/_search",
		Headers:         headers,
		Indices:         indices,
		InvolvesIndices: true,
		IsReadRequest:   true,
	}, hooks)
}

func TestEngineAllowsAdminEverywhere(t *testing.T) {
	service := newEngine(t)

	rc := searchRequest(basicAuthHeader("admin", "container"), []string{"secret-index"}, reqctx.Hooks{})
	decision := service.Check(context.Background(), rc)

	assert.Equal(t, core.OutcomeAllowed, decision.Outcome)
	assert.Equal(t, "admins", decision.Block)
}

func TestEngineForbidsByDefault(t *testing.T) {
	service := newEngine(t)

	rc := searchRequest("", []string{"secret-index"}, reqctx.Hooks{})
	decision := service.Check(context.Background(), rc)

	assert.Equal(t, core.OutcomeForbidden, decision.Outcome)
	assert.Equal(t, "default", decision.Reason)
}

func TestEngineForbidBlockWinsOverLaterAllow(t *testing.T) {
	service := newEngine(t)

	rc := reqctx.NewRequestContext(reqctx.Descriptor{
		ID:              "req-2",
		Action:          "indices:admin/delete",
		Method:          "DELETE",
		Path:            "/logstash-2026",
		Headers:         map[string]string{"Authorization": basicAuthHeader("logger", "secret")},
		Indices:         []string{"logstash-2026"},
		InvolvesIndices: true,
	}, reqctx.Hooks{})

	decision := service.Check(context.Background(), rc)

	assert.Equal(t, core.OutcomeForbidden, decision.Outcome)
	assert.Equal(t, "no deletes", decision.Block)
}

func TestEngineNarrowsIndicesOnCommit(t *testing.T) {
	service := newEngine(t)

	var committed []string
	hooks := reqctx.Hooks{WriteIndices: func(indices []string) { committed = indices }}
	rc := searchRequest(
		basicAuthHeader("logger", "secret"),
		[]string{"logstash-2026", "metrics"},
		hooks,
	)

	decision := service.Check(context.Background(), rc)

	assert.Equal(t, core.OutcomeAllowed, decision.Outcome)
	assert.Equal(t, "log readers", decision.Block)
	assert.Equal(t, []string{"logstash-2026"}, committed)
}

func TestEngineRejectsWrongCredentials(t *testing.T) {
	service := newEngine(t)

	rc := searchRequest(basicAuthHeader("logger", "wrong"), []string{"logstash-2026"}, reqctx.Hooks{})
	decision := service.Check(context.Background(), rc)

	assert.Equal(t, core.OutcomeForbidden, decision.Outcome)
}
