package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/mizuame/searchgate/x/acl"
)

var tracer = otel.Tracer("gateway")

// Handler fronts the search cluster: every request is checked against the
// ACL and only allowed ones are proxied upstream.
type Handler interface {
	Handle(c echo.Context) error
	// Passthrough proxies without a decision, for deployments that disable
	// the engine in the settings.
	Passthrough(c echo.Context) error
}

type handler struct {
	service acl.Service
	proxy   *httputil.ReverseProxy
}

func NewHandler(service acl.Service, upstream *url.URL) Handler {
	proxy := httputil.NewSingleHostReverseProxy(upstream)

	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.Host = upstream.Host
		otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
	}
	proxy.Transport = otelhttp.NewTransport(http.DefaultTransport)

	return &handler{service: service, proxy: proxy}
}

func (h *handler) Handle(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Gateway.Handler.Handle")
	defer span.End()

	rc := NewRequestContext(c)
	decision := h.service.Check(ctx, rc)

	if decision.Allowed() {
		h.proxy.ServeHTTP(c.Response(), c.Request().WithContext(ctx))
		h.service.Conclude(ctx, decision, rc, c.Response().Status)
		return nil
	}

	if h.service.PromptForBasicAuth() {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="searchgate"`)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}

func (h *handler) Passthrough(c echo.Context) error {
	h.proxy.ServeHTTP(c.Response(), c.Request())
	return nil
}
