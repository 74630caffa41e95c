//go:generate go run go.uber.org/mock/mockgen -source=client.go -destination=mock/client.go
package extauth

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/mizuame/searchgate/client"
	"github.com/mizuame/searchgate/x/settings"
)

var tracer = otel.Tracer("extauth")

// Client checks credentials against an external HTTP authentication
// service. False with a nil error is a normal "wrong credentials" result.
type Client interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
}

type httpClient struct {
	conf settings.ExternalAuthService
	http client.Client
}

func NewClient(conf settings.ExternalAuthService, http client.Client) Client {
	if conf.SuccessStatusCode == 0 {
		conf.SuccessStatusCode = http1SuccessDefault
	}
	return &httpClient{conf: conf, http: http}
}

const http1SuccessDefault = http.StatusNoContent

func (c *httpClient) Authenticate(ctx context.Context, username, password string) (bool, error) {
	ctx, span := tracer.Start(ctx, "ExtAuth.Client.Authenticate")
	defer span.End()

	resp, err := c.http.GetWithBasicAuth(ctx, c.conf.Endpoint, username, password, c.conf.RequestTimeout())
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	return resp.StatusCode == c.conf.SuccessStatusCode, nil
}
