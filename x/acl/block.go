package acl

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/reqctx"
	"github.com/mizuame/searchgate/x/settings"
)

// Block is one named, ordered unit of policy. It is built once at
// settings load, immutable afterwards, and replaced wholesale on reload.
type Block struct {
	name      string
	policy    core.Policy
	verbosity core.Verbosity
	rules     []Rule

	// authHeaderAccepted reports whether this block consumes credentials,
	// which the gateway uses to decide on the basic-auth prompt.
	authHeaderAccepted bool
}

// NewBlock instantiates and orders the rules of one settings block.
// Errors abort this block only; the caller keeps loading the others.
func NewBlock(bs settings.Block, registry *Registry) (*Block, error) {
	policy, err := core.ParsePolicy(bs.Policy)
	if err != nil {
		return nil, err
	}
	verbosity, err := core.ParseVerbosity(bs.Verbosity)
	if err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, len(bs.Rules))
	for key, value := range bs.Rules {
		rule, err := registry.Create(key, value)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	var hasAuthentication, hasAuthorization bool
	for _, r := range rules {
		if _, ok := r.(AuthenticationRule); ok {
			hasAuthentication = true
		}
		if _, ok := r.(AuthorizationRule); ok {
			hasAuthorization = true
		}
	}

	if hasAuthorization && !hasAuthentication {
		return nil, core.NewErrorConfig(fmt.Sprintf(
			"the %q block contains an authorization rule, but not an authentication rule; "+
				"this does not mean anything if you don't also set some authentication rule", bs.Name))
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return orderOf(rules[i].Key()) < orderOf(rules[j].Key())
	})

	return &Block{
		name:               bs.Name,
		policy:             policy,
		verbosity:          verbosity,
		rules:              rules,
		authHeaderAccepted: hasAuthentication || hasAuthorization,
	}, nil
}

func (b *Block) Name() string              { return b.name }
func (b *Block) Policy() core.Policy       { return b.policy }
func (b *Block) Verbosity() core.Verbosity { return b.verbosity }
func (b *Block) AuthHeaderAccepted() bool  { return b.authHeaderAccepted }

// Rules exposes the sorted rule chain, mainly for tests asserting the
// ordering contract.
func (b *Block) Rules() []Rule { return b.rules }

// Check evaluates the rules strictly in order, one at a time, waiting for
// each network-bound rule to finish before starting the next: the request
// context is not safe for concurrent mutation and the ordering encodes a
// security invariant. The first non-matching rule short-circuits the
// block. Every rule that ran is recorded in the context history, match or
// not.
func (b *Block) Check(ctx context.Context, rc *reqctx.RequestContext) bool {
	history := make([]core.RuleExit, 0, len(b.rules))
	matched := true

	for _, rule := range b.rules {
		ok, err := rule.Match(ctx, rc)
		if err != nil {
			// fail closed: a broken dependency never authorizes anything
			slog.DebugContext(ctx, "rule matching got an error",
				slog.String("block", b.name),
				slog.String("rule", rule.Key()),
				slog.String("error", err.Error()),
			)
			ok = false
		}

		history = append(history, core.RuleExit{Rule: rule.Key(), Match: ok})

		if !ok {
			matched = false
			break
		}
	}

	rc.AddHistory(b.name, history)
	return matched
}

func (b *Block) String() string {
	return fmt.Sprintf("{ name: %q, policy: %s }", b.name, b.policy)
}
