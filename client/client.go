//go:generate go run go.uber.org/mock/mockgen -source=client.go -destination=mock/client.go
package client

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var tracer = otel.Tracer("client")

const defaultTimeout = 10 * time.Second

// Response is the slice of an HTTP exchange the identity clients care
// about. Bodies are fully read so callers never hold a connection open.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client performs outbound HTTP calls to identity back-ends with an
// explicit per-call timeout.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (Response, error)
	GetWithBasicAuth(ctx context.Context, url, username, password string, timeout time.Duration) (Response, error)
}

type client struct{}

func NewClient() Client {
	return &client{}
}

func (c *client) Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (Response, error) {
	ctx, span := tracer.Start(ctx, "Client.Get")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		span.RecordError(err)
		return Response{}, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(ctx, req, timeout)
}

func (c *client) GetWithBasicAuth(ctx context.Context, url, username, password string, timeout time.Duration) (Response, error) {
	ctx, span := tracer.Start(ctx, "Client.GetWithBasicAuth")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		span.RecordError(err)
		return Response{}, err
	}
	req.SetBasicAuth(username, password)

	return c.do(ctx, req, timeout)
}

func (c *client) do(ctx context.Context, req *http.Request, timeout time.Duration) (Response, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	httpClient := new(http.Client)
	httpClient.Timeout = timeout
	resp, err := httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}
