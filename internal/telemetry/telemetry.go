// Package telemetry exports traces of page loads and backend fetches over OTLP/HTTP.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/alkmst-xyz/sweetcorn-web/pkg/config"
	"github.com/alkmst-xyz/sweetcorn-web/pkg/logger"
)

// Runtime holds the tracer provider and the HTTP wrappers built on it. A zero
// or nil Runtime is disabled and its wrappers return their input unchanged.
type Runtime struct {
	enabled     bool
	shutdownFns []func(context.Context) error
}

// Setup installs a global tracer provider exporting to cfg.Endpoint.
func Setup(ctx context.Context, cfg config.TelemetryConfig, serviceVersion string, log *logger.Logger) (*Runtime, error) {
	runtime := &Runtime{}
	if !cfg.Enabled {
		return runtime, nil
	}

	endpoint, insecure, err := normalizeEndpoint(cfg.Endpoint, cfg.Insecure)
	if err != nil {
		return nil, err
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint),
	}
	if cfg.ExportTimeout > 0 {
		opts = append(opts, otlptracehttp.WithTimeout(cfg.ExportTimeout))
	}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize otel trace exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", strings.TrimSpace(cfg.ServiceName)),
		attribute.String("service.version", strings.TrimSpace(serviceVersion)),
	)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRatio))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	runtime.shutdownFns = append(runtime.shutdownFns, provider.Shutdown)
	runtime.enabled = true

	if log != nil {
		log.Info("opentelemetry enabled",
			"otel_endpoint", endpoint,
			"otel_sampling_ratio", cfg.SamplingRatio,
		)
	}

	return runtime, nil
}

// Enabled reports whether tracing is active.
func (r *Runtime) Enabled() bool {
	return r != nil && r.enabled
}

// WrapHandler wraps the page host with server spans named after the chi route.
func (r *Runtime) WrapHandler(next http.Handler) http.Handler {
	if !r.Enabled() {
		return next
	}
	return otelhttp.NewHandler(next, "web.request",
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + routePattern(req)
		}),
	)
}

// WrapTransport wraps the backend transport with client spans and propagates
// the trace context to the backend.
func (r *Runtime) WrapTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if !r.Enabled() {
		return base
	}
	return otelhttp.NewTransport(base,
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	)
}

// Shutdown flushes pending spans and stops the provider.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil || len(r.shutdownFns) == 0 {
		return nil
	}

	var errs []error
	for i := len(r.shutdownFns) - 1; i >= 0; i-- {
		if err := r.shutdownFns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NameSpans renames the active server span after the chi route once routing
// has happened. It must be mounted inside the chi router.
func NameSpans(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		next.ServeHTTP(w, req)
		if span := trace.SpanFromContext(req.Context()); span.IsRecording() {
			span.SetName(req.Method + " " + routePattern(req))
		}
	})
}

// routePattern returns the matched chi pattern, falling back to the raw path
// before routing has happened.
func routePattern(req *http.Request) string {
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return req.URL.Path
}

// normalizeEndpoint accepts host:port or a URL. A URL scheme decides transport
// security and overrides insecure.
func normalizeEndpoint(raw string, insecure bool) (string, bool, error) {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return "", false, errors.New("telemetry.endpoint must not be empty")
	}

	if !strings.Contains(endpoint, "://") {
		return endpoint, insecure, nil
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse telemetry.endpoint: %w", err)
	}
	if parsed.Host == "" {
		return "", false, fmt.Errorf("telemetry.endpoint must include host (got %q)", raw)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http":
		return parsed.Host, true, nil
	case "https":
		return parsed.Host, false, nil
	default:
		return "", false, fmt.Errorf("telemetry.endpoint scheme must be http or https (got %q)", parsed.Scheme)
	}
}
