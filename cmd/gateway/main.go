package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/mizuame/searchgate/client"
	"github.com/mizuame/searchgate/x/audit"
	"github.com/mizuame/searchgate/x/cache"
	"github.com/mizuame/searchgate/x/gateway"
	"github.com/mizuame/searchgate/x/settings"
)

type CustomHandler struct {
	slog.Handler
}

func (h *CustomHandler) Handle(ctx context.Context, r slog.Record) error {

	r.AddAttrs(slog.String("type", "app"))

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(slog.String("traceID", span.SpanContext().TraceID().String()))
		r.AddAttrs(slog.String("spanID", span.SpanContext().SpanID().String()))
	}

	return h.Handler.Handle(ctx, r)
}

var version = "unknown"

func main() {

	handler := &CustomHandler{Handler: slog.NewJSONHandler(os.Stdout, nil)}
	slogger := slog.New(handler)
	slog.SetDefault(slogger)

	slog.Info(fmt.Sprintf("Searchgate %s starting...", version))

	config := Config{}
	configPath := os.Getenv("SEARCHGATE_CONFIG")
	if configPath == "" {
		configPath = "/etc/searchgate/config.yaml"
	}
	if err := config.Load(configPath); err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	root, err := settings.Load(config.Server.SettingsPath)
	if err != nil {
		slog.Error("Failed to load access control settings", slog.String("error", err.Error()))
		os.Exit(1)
	}

	upstream, err := url.Parse(config.Server.UpstreamURL)
	if err != nil {
		slog.Error("Invalid upstream url", slog.String("error", err.Error()))
		os.Exit(1)
	}

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true

	if config.Server.EnableTrace {
		cleanup, err := setupTraceProvider(config.Server.TraceEndpoint, "searchgate", version)
		if err != nil {
			panic(err)
		}
		defer cleanup()

		skipper := otelecho.WithSkipper(
			func(c echo.Context) bool {
				return c.Path() == "/metrics" || c.Path() == "/health"
			},
		)
		e.Use(otelecho.Middleware("searchgate", skipper))
	}

	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace: "searchgate",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))

	e.Use(middleware.Recover())

	var db *gorm.DB
	var sqlDB interface{ Ping() error }
	if config.Server.Dsn != "" {
		db, err = gorm.Open(postgres.Open(config.Server.Dsn), &gorm.Config{})
		if err != nil {
			panic("failed to connect database")
		}
		pinger, err := db.DB()
		if err != nil {
			panic("failed to connect database")
		}
		defer pinger.Close()
		sqlDB = pinger

		err = db.Use(tracing.NewPlugin(
			tracing.WithDBName("postgres"),
		))
		if err != nil {
			panic("failed to setup tracing plugin")
		}

		slog.Info("start migrate")
		db.AutoMigrate(
			&audit.Record{},
		)
	}

	var rdb *redis.Client
	var store cache.Store
	switch {
	case config.Server.RedisAddr != "":
		rdb = redis.NewClient(&redis.Options{
			Addr:     config.Server.RedisAddr,
			Password: "", // no password set
			DB:       0,  // use default DB
		})
		err = redisotel.InstrumentTracing(
			rdb,
			redisotel.WithAttributes(
				attribute.KeyValue{
					Key:   "db.name",
					Value: attribute.StringValue("redis"),
				},
			),
		)
		if err != nil {
			panic("failed to setup tracing plugin")
		}
		store = cache.NewRedisStore(rdb, "searchgate")
	case config.Server.MemcachedAddr != "":
		mc := memcache.New(config.Server.MemcachedAddr)
		defer mc.Close()
		store = cache.NewMemcachedStore(mc, "searchgate")
	default:
		store = cache.NewMemoryStore()
	}

	auditService := SetupAuditService(db)

	aclService, err := SetupAclService(root, client.NewClient(), store, cache.NewHasher(), auditService)
	if err != nil {
		slog.Error("Failed to build the access control engine", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info(fmt.Sprintf("Loaded %d access control blocks", aclService.BlockCount()))

	// SIGHUP reloads the policy file without dropping in-flight requests.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			reloaded, err := settings.Load(config.Server.SettingsPath)
			if err != nil {
				slog.Error("settings reload failed", slog.String("error", err.Error()))
				continue
			}
			if err := aclService.Reload(reloaded); err != nil {
				slog.Error("settings reload failed", slog.String("error", err.Error()))
				continue
			}
			slog.Info(fmt.Sprintf("settings reloaded: %d blocks", aclService.BlockCount()))
		}
	}()

	gw := gateway.NewHandler(aclService, upstream)
	proxyHandler := func(c echo.Context) error {
		// read per request so a reload flipping the flag takes effect
		if !aclService.Enabled() {
			return gw.Passthrough(c)
		}
		return gw.Handle(c)
	}

	e.GET("/health", func(c echo.Context) (err error) {
		ctx := c.Request().Context()

		if sqlDB != nil {
			if err = sqlDB.Ping(); err != nil {
				return c.String(http.StatusInternalServerError, "db error")
			}
		}
		if rdb != nil {
			if err = rdb.Ping(ctx).Err(); err != nil {
				return c.String(http.StatusInternalServerError, "redis error")
			}
		}

		return c.String(http.StatusOK, "ok")
	})

	e.GET("/metrics", echoprometheus.NewHandler())

	e.Any("/", proxyHandler)
	e.Any("/*", proxyHandler)

	listen := config.Server.Listen
	if listen == "" {
		listen = ":8080"
	}
	e.Logger.Fatal(e.Start(listen))
}

func setupTraceProvider(endpoint string, serviceName string, serviceVersion string) (func(), error) {

	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)

	if err != nil {
		return nil, err
	}

	resource := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(serviceVersion),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource),
	)
	otel.SetTracerProvider(tracerProvider)

	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagator)

	cleanup := func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			slog.Error(fmt.Sprintf("Failed to shutdown tracer provider: %v", err))
		}
	}
	return cleanup, nil
}
