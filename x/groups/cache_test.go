package groups

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mock_groups "github.com/mizuame/searchgate/x/groups/mock"
)

type fakeStore struct {
	now     time.Time
	values  map[string]string
	expires map[string]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:     time.Unix(0, 0),
		values:  map[string]string{},
		expires: map[string]time.Time{},
	}
}

func (s *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := s.values[key]
	if !ok || s.now.After(s.expires[key]) {
		return "", false, nil
	}
	return v, true, nil
}

func (s *fakeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.values[key] = value
	s.expires[key] = s.now.Add(ttl)
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func TestWrapWithZeroTTLReturnsUnderlying(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	underlying := mock_groups.NewMockClient(ctrl)
	assert.Equal(t, underlying, Wrap("prov", 0, newFakeStore(), underlying))
}

func TestCacheServesRepeatedLookups(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	underlying := mock_groups.NewMockClient(ctrl)
	underlying.EXPECT().GroupsOf(gomock.Any(), "alice").Return([]string{"team1"}, nil).Times(1)

	wrapped := Wrap("prov", time.Minute, newFakeStore(), underlying)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		groups, err := wrapped.GroupsOf(ctx, "alice")
		assert.NoError(t, err)
		assert.Equal(t, []string{"team1"}, groups)
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	underlying := mock_groups.NewMockClient(ctrl)
	first := underlying.EXPECT().GroupsOf(gomock.Any(), "alice").Return([]string{"team1"}, nil)
	underlying.EXPECT().GroupsOf(gomock.Any(), "alice").Return([]string{"team2"}, nil).After(first)

	store := newFakeStore()
	wrapped := Wrap("prov", time.Second, store, underlying)
	ctx := context.Background()

	groups, _ := wrapped.GroupsOf(ctx, "alice")
	assert.Equal(t, []string{"team1"}, groups)

	store.now = store.now.Add(1500 * time.Millisecond)

	groups, _ = wrapped.GroupsOf(ctx, "alice")
	assert.Equal(t, []string{"team2"}, groups)
}

func TestCacheCachesEmptyGroupSets(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	underlying := mock_groups.NewMockClient(ctrl)
	underlying.EXPECT().GroupsOf(gomock.Any(), "nobody").Return([]string{}, nil).Times(1)

	wrapped := Wrap("prov", time.Minute, newFakeStore(), underlying)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		groups, err := wrapped.GroupsOf(ctx, "nobody")
		assert.NoError(t, err)
		assert.Empty(t, groups)
	}
}
