package groups

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/mizuame/searchgate/client"
	mock_client "github.com/mizuame/searchgate/client/mock"
	"github.com/mizuame/searchgate/x/settings"
)

func TestGroupsOfPassesTokenAsQueryParam(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpMock := mock_client.NewMockClient(ctrl)
	httpMock.EXPECT().
		Get(gomock.Any(), "http://provider/groups?token=alice", map[string]string{}, gomock.Any()).
		Return(client.Response{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"groups": ["team1", "team2"]}`),
		}, nil)

	c := NewClient(settings.GroupsProvider{
		Name:              "prov",
		GroupsEndpoint:    "http://provider/groups",
		AuthTokenName:     "token",
		AuthTokenPassedAs: settings.TokenPassedAsQuery,
	}, httpMock)

	groups, err := c.GroupsOf(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Equal(t, []string{"team1", "team2"}, groups)
}

func TestGroupsOfPassesTokenAsHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpMock := mock_client.NewMockClient(ctrl)
	httpMock.EXPECT().
		Get(gomock.Any(), "http://provider/groups", map[string]string{"x-token": "alice"}, gomock.Any()).
		Return(client.Response{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"groups": ["team1"]}`),
		}, nil)

	c := NewClient(settings.GroupsProvider{
		Name:              "prov",
		GroupsEndpoint:    "http://provider/groups",
		AuthTokenName:     "x-token",
		AuthTokenPassedAs: settings.TokenPassedAsHeader,
	}, httpMock)

	groups, err := c.GroupsOf(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Equal(t, []string{"team1"}, groups)
}

func TestGroupsOfReadsNestedJSONPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpMock := mock_client.NewMockClient(ctrl)
	httpMock.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(client.Response{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"result": {"memberships": ["a", "b"]}}`),
		}, nil)

	c := NewClient(settings.GroupsProvider{
		Name:                   "prov",
		GroupsEndpoint:         "http://provider/groups",
		AuthTokenName:          "x-token",
		AuthTokenPassedAs:      settings.TokenPassedAsHeader,
		ResponseGroupsJSONPath: "result.memberships",
	}, httpMock)

	groups, err := c.GroupsOf(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, groups)
}

func TestGroupsOfNonOKStatusYieldsEmptySet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpMock := mock_client.NewMockClient(ctrl)
	httpMock.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(client.Response{StatusCode: http.StatusInternalServerError}, nil)

	c := NewClient(settings.GroupsProvider{
		Name:              "prov",
		GroupsEndpoint:    "http://provider/groups",
		AuthTokenName:     "x-token",
		AuthTokenPassedAs: settings.TokenPassedAsHeader,
	}, httpMock)

	groups, err := c.GroupsOf(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Empty(t, groups)
}

func TestGroupsOfMissingPathYieldsEmptySet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpMock := mock_client.NewMockClient(ctrl)
	httpMock.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(client.Response{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"unexpected": true}`),
		}, nil)

	c := NewClient(settings.GroupsProvider{
		Name:              "prov",
		GroupsEndpoint:    "http://provider/groups",
		AuthTokenName:     "x-token",
		AuthTokenPassedAs: settings.TokenPassedAsHeader,
	}, httpMock)

	groups, err := c.GroupsOf(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Empty(t, groups)
}
