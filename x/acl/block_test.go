package acl

import (
	"context"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/reqctx"
	"github.com/mizuame/searchgate/x/settings"
)

type stubRule struct {
	key     string
	match   bool
	err     error
	onMatch func(rc *reqctx.RequestContext)
	calls   *[]string
}

func (r *stubRule) Key() string { return r.key }

func (r *stubRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	if r.calls != nil {
		*r.calls = append(*r.calls, r.key)
	}
	if r.err != nil {
		return false, r.err
	}
	if r.match && r.onMatch != nil {
		r.onMatch(rc)
	}
	return r.match, nil
}

type stubAuthRule struct{ stubRule }

func (r *stubAuthRule) Authenticates() {}

type stubAuthzRule struct{ stubRule }

func (r *stubAuthzRule) Authorizes() {}

type stubMutationRule struct{ stubRule }

func (r *stubMutationRule) Mutates() {}

func stubRegistry(rules ...Rule) *Registry {
	registry := NewRegistry()
	for _, rule := range rules {
		rule := rule
		registry.Register(rule.Key(), func(value interface{}) (Rule, error) {
			return rule, nil
		})
	}
	return registry
}

func newTestRequestContext() *reqctx.RequestContext {
	return reqctx.NewRequestContext(reqctx.Descriptor{
		ID:              "req-1",
		Method:          "GET",
		Path:            "/idx/_search",
		Indices:         []string{"idx"},
		InvolvesIndices: true,
		IsReadRequest:   true,
	}, reqctx.Hooks{})
}

func TestBlockOrdersRulesByCategory(t *testing.T) {
	registry := stubRegistry(
		&stubMutationRule{stubRule{key: "indices_rewrite", match: true}},
		&stubRule{key: "hosts", match: true},
		&stubAuthzRule{stubRule{key: "ldap_authorization", match: true}},
		&stubAuthRule{stubRule{key: "auth_key", match: true}},
	)

	block, err := NewBlock(settings.Block{
		Name: "ordered",
		Rules: map[string]interface{}{
			"indices_rewrite":    nil,
			"hosts":              nil,
			"ldap_authorization": nil,
			"auth_key":           nil,
		},
	}, registry)
	assert.NoError(t, err)

	keys := make([]string, 0, len(block.Rules()))
	for _, r := range block.Rules() {
		keys = append(keys, r.Key())
	}
	assert.Equal(t, []string{"auth_key", "ldap_authorization", "hosts", "indices_rewrite"}, keys)
}

func TestBlockRejectsAuthorizationWithoutAuthentication(t *testing.T) {
	registry := stubRegistry(
		&stubAuthzRule{stubRule{key: "ldap_authorization", match: true}},
	)

	_, err := NewBlock(settings.Block{
		Name:  "broken",
		Rules: map[string]interface{}{"ldap_authorization": nil},
	}, registry)

	assert.Error(t, err)
	var confErr core.ErrorConfig
	assert.ErrorAs(t, err, &confErr)
}

func TestBlockRejectsUnknownRule(t *testing.T) {
	_, err := NewBlock(settings.Block{
		Name:  "unknown",
		Rules: map[string]interface{}{"no_such_rule": nil},
	}, NewRegistry())

	assert.Error(t, err)
}

func TestBlockShortCircuitsOnFirstNonMatch(t *testing.T) {
	var calls []string
	registry := stubRegistry(
		&stubRule{key: "hosts", match: false, calls: &calls},
		&stubRule{key: "methods", match: true, calls: &calls},
	)

	block, err := NewBlock(settings.Block{
		Name: "short",
		Rules: map[string]interface{}{
			"hosts":   nil,
			"methods": nil,
		},
	}, registry)
	assert.NoError(t, err)

	rc := newTestRequestContext()
	matched := block.Check(context.Background(), rc)

	assert.False(t, matched)
	assert.Equal(t, []string{"hosts"}, calls)
}

func TestBlockRecordsHistoryForEveryRuleRun(t *testing.T) {
	registry := stubRegistry(
		&stubRule{key: "hosts", match: true},
		&stubRule{key: "methods", match: false},
	)

	block, err := NewBlock(settings.Block{
		Name: "history",
		Rules: map[string]interface{}{
			"hosts":   nil,
			"methods": nil,
		},
	}, registry)
	assert.NoError(t, err)

	rc := newTestRequestContext()
	block.Check(context.Background(), rc)

	history := rc.History()
	assert.Len(t, history, 1)
	assert.Equal(t, "history", history[0].Block)
	assert.Equal(t, []core.RuleExit{
		{Rule: "hosts", Match: true},
		{Rule: "methods", Match: false},
	}, history[0].Entries)
}

func TestBlockTreatsRuleErrorAsNonMatch(t *testing.T) {
	registry := stubRegistry(
		&stubRule{key: "hosts", err: errors.New("backend down")},
	)

	block, err := NewBlock(settings.Block{
		Name:  "failing",
		Rules: map[string]interface{}{"hosts": nil},
	}, registry)
	assert.NoError(t, err)

	rc := newTestRequestContext()
	assert.False(t, block.Check(context.Background(), rc))
}

type recordingLogHandler struct {
	records []slog.Record
}

func (h *recordingLogHandler) Enabled(ctx context.Context, level slog.Level) bool { return true }
func (h *recordingLogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *recordingLogHandler) WithGroup(name string) slog.Handler       { return h }

func TestBlockLogsRuleErrorsAtDebug(t *testing.T) {
	capture := &recordingLogHandler{}
	prev := slog.Default()
	slog.SetDefault(slog.New(capture))
	defer slog.SetDefault(prev)

	registry := stubRegistry(
		&stubRule{key: "hosts", err: errors.New("backend down")},
	)

	block, err := NewBlock(settings.Block{
		Name:  "failing",
		Rules: map[string]interface{}{"hosts": nil},
	}, registry)
	assert.NoError(t, err)

	assert.False(t, block.Check(context.Background(), newTestRequestContext()))

	found := false
	for _, r := range capture.records {
		if r.Message == "rule matching got an error" {
			found = true
			assert.Equal(t, slog.LevelDebug, r.Level)
		}
	}
	assert.True(t, found)
}

func TestBlockRejectsBadPolicy(t *testing.T) {
	_, err := NewBlock(settings.Block{Name: "bad", Policy: "maybe"}, NewRegistry())
	assert.Error(t, err)
}
