// Package tracing installs the process-wide OTel TracerProvider and the echo
// request middleware.
package tracing

import (
	"context"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"

	"github.com/zerovacancy/zerovacancy/internal/config"
	"github.com/zerovacancy/zerovacancy/pkg/logger"
)

var Module = fx.Module("tracing",
	fx.Provide(NewProvider),
	fx.Invoke(RegisterLifecycle),
	fx.Invoke(RegisterEchoMiddleware),
)

// Provider holds the SDK provider when export is enabled. SDK is nil otherwise.
type Provider struct {
	SDK *sdktrace.TracerProvider
}

// NewProvider registers a global TracerProvider: OTLP over HTTP when an endpoint
// is configured, no-op otherwise.
func NewProvider(cfg *config.Config, log *slog.Logger) (*Provider, error) {
	log = log.With(logger.Scope("tracing"))
	oc := cfg.Otel

	if !oc.Enabled() {
		log.Info("tracing disabled, OTEL_EXPORTER_OTLP_ENDPOINT not set")
		otel.SetTracerProvider(noop.NewTracerProvider())
		return &Provider{}, nil
	}

	exp, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpointURL(oc.ExporterEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(semconv.ServiceName(oc.ServiceName)),
		resource.WithFromEnv(),
	)
	if err != nil {
		log.Warn("resource detection failed, using empty resource", logger.Error(err))
		res = resource.Empty()
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(oc.SamplingRate)),
	)
	otel.SetTracerProvider(tp)

	log.Info("tracing enabled",
		slog.String("endpoint", oc.ExporterEndpoint),
		slog.String("service", oc.ServiceName),
		slog.Float64("sampling_rate", oc.SamplingRate),
	)
	return &Provider{SDK: tp}, nil
}

// Sampler maps a 0..1 rate to a parent-based sampler.
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case rate <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// RegisterLifecycle flushes and shuts down the SDK provider on stop.
func RegisterLifecycle(lc fx.Lifecycle, p *Provider, log *slog.Logger) {
	if p.SDK == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down tracer provider", logger.Scope("tracing"))
			return p.SDK.Shutdown(ctx)
		},
	})
}

// RegisterEchoMiddleware traces every request except probes, metrics and static files.
func RegisterEchoMiddleware(e *echo.Echo, cfg *config.Config) {
	if !cfg.Otel.Enabled() {
		return
	}
	e.Use(otelecho.Middleware(
		cfg.Otel.ServiceName,
		otelecho.WithSkipper(skipTracing),
	))
}

func skipTracing(c echo.Context) bool {
	p := c.Request().URL.Path
	switch p {
	case "/health", "/healthz", "/ready", "/metrics":
		return true
	}
	return strings.HasPrefix(p, "/static/")
}
