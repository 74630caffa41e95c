//go:generate go run go.uber.org/mock/mockgen -source=client.go -destination=mock/client.go
package groups

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"

	"github.com/mizuame/searchgate/client"
	"github.com/mizuame/searchgate/x/settings"
)

var tracer = otel.Tracer("groups")

// Client fetches the groups a user belongs to from an HTTP groups
// provider. A non-success response or an unreadable body yields an empty
// group set, not an error: authorization fails closed on its own.
type Client interface {
	GroupsOf(ctx context.Context, uid string) ([]string, error)
}

type httpClient struct {
	conf settings.GroupsProvider
	http client.Client
}

func NewClient(conf settings.GroupsProvider, http client.Client) Client {
	if conf.ResponseGroupsJSONPath == "" {
		conf.ResponseGroupsJSONPath = "groups"
	}
	return &httpClient{conf: conf, http: http}
}

func (c *httpClient) GroupsOf(ctx context.Context, uid string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Groups.Client.GroupsOf")
	defer span.End()

	endpoint := c.conf.GroupsEndpoint
	headers := map[string]string{}

	switch c.conf.AuthTokenPassedAs {
	case settings.TokenPassedAsHeader:
		headers[c.conf.AuthTokenName] = uid
	default:
		u, err := url.Parse(endpoint)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		q := u.Query()
		q.Set(c.conf.AuthTokenName, uid)
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	resp, err := c.http.Get(ctx, endpoint, headers, c.conf.RequestTimeout())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		slog.DebugContext(ctx, "groups provider returned non-200",
			slog.String("provider", c.conf.Name),
			slog.Int("status", resp.StatusCode),
		)
		return []string{}, nil
	}

	result := gjson.GetBytes(resp.Body, c.conf.ResponseGroupsJSONPath)
	if !result.Exists() {
		slog.DebugContext(ctx, "groups provider response misses groups path",
			slog.String("provider", c.conf.Name),
			slog.String("path", c.conf.ResponseGroupsJSONPath),
		)
		return []string{}, nil
	}

	groups := []string{}
	for _, g := range result.Array() {
		if g.String() != "" {
			groups = append(groups, g.String())
		}
	}
	return groups, nil
}
