package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/reqctx"
)

func snapshotRequest(repositories, snapshots []string, isRead bool) *reqctx.RequestContext {
	return reqctx.NewRequestContext(reqctx.Descriptor{
		ID:            "req-1",
		Action:        "cluster:admin/snapshot",
		Repositories:  repositories,
		Snapshots:     snapshots,
		IsReadRequest: isRead,
	}, reqctx.Hooks{})
}

func TestRepositoriesMatchesOutsideSnapshotAPI(t *testing.T) {
	rule, _ := NewRepositoriesRule([]interface{}{"backups-*"})

	rc := reqctx.NewRequestContext(reqctx.Descriptor{
		ID:     "req-1",
		Action: "indices:data/read/search",
	}, reqctx.Hooks{})
	ok, err := rule.Match(context.Background(), rc)

	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestRepositoriesFullMatch(t *testing.T) {
	rule, _ := NewRepositoriesRule([]interface{}{"backups-*"})

	rc := snapshotRequest([]string{"backups-daily"}, nil, true)
	ok, err := rule.Match(context.Background(), rc)

	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestRepositoriesNarrowsReadRequests(t *testing.T) {
	rule, _ := NewRepositoriesRule([]interface{}{"backups-*"})

	rc := snapshotRequest([]string{"backups-daily", "secret"}, nil, true)
	ok, err := rule.Match(context.Background(), rc)

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"backups-daily"}, rc.CurrentRepositories())
	assert.Equal(t, []string{"backups-daily", "secret"}, rc.Repositories())
}

func TestRepositoriesRejectsMixedWriteRequests(t *testing.T) {
	rule, _ := NewRepositoriesRule([]interface{}{"backups-*"})

	rc := snapshotRequest([]string{"backups-daily", "secret"}, nil, false)
	ok, err := rule.Match(context.Background(), rc)

	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoriesListingNeedsUnrestrictedPattern(t *testing.T) {
	restricted, _ := NewRepositoriesRule([]interface{}{"backups-*"})
	unrestricted, _ := NewRepositoriesRule([]interface{}{"*"})

	rc := snapshotRequest(nil, nil, true)

	ok, _ := restricted.Match(context.Background(), rc)
	assert.False(t, ok)

	ok, _ = unrestricted.Match(context.Background(), rc)
	assert.True(t, ok)
}

func TestRepositoriesRequiresAPattern(t *testing.T) {
	_, err := NewRepositoriesRule([]interface{}{})
	assert.Error(t, err)
}

func TestSnapshotsMatchesOutsideSnapshotAPI(t *testing.T) {
	rule, _ := NewSnapshotsRule([]interface{}{"nightly-*"})

	rc := reqctx.NewRequestContext(reqctx.Descriptor{
		ID:     "req-1",
		Action: "indices:data/read/search",
	}, reqctx.Hooks{})
	ok, err := rule.Match(context.Background(), rc)

	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestSnapshotsNarrowsReadRequests(t *testing.T) {
	rule, _ := NewSnapshotsRule([]interface{}{"nightly-*"})

	rc := snapshotRequest([]string{"backups"}, []string{"nightly-1", "adhoc"}, true)
	ok, err := rule.Match(context.Background(), rc)

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"nightly-1"}, rc.CurrentSnapshots())
	assert.Equal(t, []string{"nightly-1", "adhoc"}, rc.Snapshots())
}

func TestSnapshotsRejectsWriteOutsidePatterns(t *testing.T) {
	rule, _ := NewSnapshotsRule([]interface{}{"nightly-*"})

	rc := snapshotRequest([]string{"backups"}, []string{"adhoc"}, false)
	ok, err := rule.Match(context.Background(), rc)

	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotsResolvesUserVariable(t *testing.T) {
	rule, _ := NewSnapshotsRule([]interface{}{"@{user}-*"})

	rc := snapshotRequest([]string{"backups"}, []string{"alice-weekly"}, true)
	rc.SetLoggedUser(core.NewLoggedUser("alice"))

	ok, err := rule.Match(context.Background(), rc)
	assert.NoError(t, err)
	assert.True(t, ok)

	// no logged user: the variable cannot resolve, nothing can match
	rc2 := snapshotRequest([]string{"backups"}, []string{"alice-weekly"}, true)
	ok, _ = rule.Match(context.Background(), rc2)
	assert.False(t, ok)
}
