package rules

import (
	"context"
	"strings"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

const snapshotActionPrefix = "cluster:admin/snapshot"

// repositoriesRule restricts which snapshot repositories a request may
// touch. Requests outside the snapshot API match unconditionally; within
// it the same narrowing contract as the indices rule applies.
type repositoriesRule struct {
	patterns []string
}

func NewRepositoriesRule(value interface{}) (acl.Rule, error) {
	patterns, err := toStringSlice(value)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, core.NewErrorConfig("repositories requires at least one repository pattern")
	}
	return &repositoriesRule{patterns: patterns}, nil
}

func (r *repositoriesRule) Key() string { return "repositories" }

func (r *repositoriesRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	if !strings.HasPrefix(rc.Action(), snapshotActionPrefix) {
		return true, nil
	}
	return matchSnapshotScope(rc, r.patterns, rc.CurrentRepositories(), rc.SetRepositories)
}

// snapshotsRule restricts which snapshot names a request may touch, with
// the same contract as the repositories rule.
type snapshotsRule struct {
	patterns []string
}

func NewSnapshotsRule(value interface{}) (acl.Rule, error) {
	patterns, err := toStringSlice(value)
	if err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, core.NewErrorConfig("snapshots requires at least one snapshot pattern")
	}
	return &snapshotsRule{patterns: patterns}, nil
}

func (r *snapshotsRule) Key() string { return "snapshots" }

func (r *snapshotsRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	if !strings.HasPrefix(rc.Action(), snapshotActionPrefix) {
		return true, nil
	}
	return matchSnapshotScope(rc, r.patterns, rc.CurrentSnapshots(), rc.SetSnapshots)
}

// matchSnapshotScope applies the shared pattern contract: a request naming
// nothing addresses everything and needs an unrestricted pattern; a read
// request may be narrowed to the allowed subset; a write must match in
// full.
func matchSnapshotScope(rc *reqctx.RequestContext, patterns, current []string, narrow func([]string)) (bool, error) {
	resolved := make([]string, 0, len(patterns))
	for _, p := range patterns {
		v, ok := rc.ResolveVariable(p)
		if !ok {
			continue
		}
		resolved = append(resolved, v)
	}
	if len(resolved) == 0 {
		return false, nil
	}
	matcher := NewMatcher(resolved)

	if len(current) == 0 {
		return matcher.Match("*"), nil
	}

	if matcher.MatchAll(current) {
		return true, nil
	}

	if rc.IsReadRequest() {
		narrowed := matcher.Filter(current)
		if len(narrowed) > 0 {
			narrow(narrowed)
			return true, nil
		}
	}

	return false, nil
}
