package ldap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/cache"
	mock_ldap "github.com/mizuame/searchgate/x/ldap/mock"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (s *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *fakeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.values[key] = value
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func TestWrapWithZeroTTLReturnsUnderlying(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	underlying := mock_ldap.NewMockClient(ctrl)
	assert.Equal(t, underlying, Wrap("ldap1", 0, newFakeStore(), cache.NewHasher(), underlying))
}

func TestAuthenticateCacheHitSkipsDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	user := &core.LdapUser{UID: "alice", DN: "cn=alice,ou=people"}

	underlying := mock_ldap.NewMockClient(ctrl)
	underlying.EXPECT().Authenticate(gomock.Any(), "alice", "s3cret").Return(user, nil).Times(1)

	wrapped := Wrap("ldap1", time.Minute, newFakeStore(), cache.NewHasher(), underlying)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := wrapped.Authenticate(ctx, "alice", "s3cret")
		assert.NoError(t, err)
		assert.Equal(t, user, got)
	}
}

func TestAuthenticateCacheStoresHashNotPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	underlying := mock_ldap.NewMockClient(ctrl)
	underlying.EXPECT().
		Authenticate(gomock.Any(), "alice", "s3cret").
		Return(&core.LdapUser{UID: "alice", DN: "cn=alice"}, nil)

	store := newFakeStore()
	wrapped := Wrap("ldap1", time.Minute, store, cache.NewHasher(), underlying)

	_, err := wrapped.Authenticate(context.Background(), "alice", "s3cret")
	assert.NoError(t, err)

	assert.NotEmpty(t, store.values)
	for _, value := range store.values {
		assert.NotContains(t, value, "s3cret")
	}
}

func TestAuthenticateHashMismatchIsNotAuthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	underlying := mock_ldap.NewMockClient(ctrl)
	underlying.EXPECT().
		Authenticate(gomock.Any(), "alice", "s3cret").
		Return(&core.LdapUser{UID: "alice", DN: "cn=alice"}, nil).
		Times(1)

	wrapped := Wrap("ldap1", time.Minute, newFakeStore(), cache.NewHasher(), underlying)
	ctx := context.Background()

	got, _ := wrapped.Authenticate(ctx, "alice", "s3cret")
	assert.NotNil(t, got)

	got, err := wrapped.Authenticate(ctx, "alice", "different")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserByIDCachesNegativeLookups(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	underlying := mock_ldap.NewMockClient(ctrl)
	underlying.EXPECT().UserByID(gomock.Any(), "ghost").Return(nil, nil).Times(1)

	wrapped := Wrap("ldap1", time.Minute, newFakeStore(), cache.NewHasher(), underlying)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := wrapped.UserByID(ctx, "ghost")
		assert.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestGroupsOfCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	user := &core.LdapUser{UID: "alice", DN: "cn=alice"}

	underlying := mock_ldap.NewMockClient(ctrl)
	underlying.EXPECT().GroupsOf(gomock.Any(), user).Return([]string{"team1"}, nil).Times(1)

	wrapped := Wrap("ldap1", time.Minute, newFakeStore(), cache.NewHasher(), underlying)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		groups, err := wrapped.GroupsOf(ctx, user)
		assert.NoError(t, err)
		assert.Equal(t, []string{"team1"}, groups)
	}
}
