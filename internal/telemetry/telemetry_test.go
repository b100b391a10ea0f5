package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/alkmst-xyz/sweetcorn-web/pkg/config"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		insecure      bool
		wantEndpoint  string
		wantInsecure  bool
		wantErrSubstr string
	}{
		{name: "host and port", input: "localhost:4318", insecure: true, wantEndpoint: "localhost:4318", wantInsecure: true},
		{name: "http url", input: "http://sweetcorn:4318", wantEndpoint: "sweetcorn:4318", wantInsecure: true},
		{name: "https url overrides insecure", input: "https://sweetcorn:4318", insecure: true, wantEndpoint: "sweetcorn:4318"},
		{name: "invalid scheme", input: "grpc://sweetcorn:4317", wantErrSubstr: "scheme must be http or https"},
		{name: "empty", input: "  ", wantErrSubstr: "must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, insecure, err := normalizeEndpoint(tt.input, tt.insecure)
			if tt.wantErrSubstr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErrSubstr) {
					t.Fatalf("error=%v, want substring %q", err, tt.wantErrSubstr)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeEndpoint(%q) error=%v", tt.input, err)
			}
			if endpoint != tt.wantEndpoint || insecure != tt.wantInsecure {
				t.Errorf("got (%q, %v), want (%q, %v)", endpoint, insecure, tt.wantEndpoint, tt.wantInsecure)
			}
		})
	}
}

func TestDisabledRuntimeIsPassthrough(t *testing.T) {
	runtime, err := Setup(context.Background(), config.TelemetryConfig{}, "test", nil)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if runtime.Enabled() {
		t.Fatal("expected disabled runtime")
	}

	handler := http.NotFoundHandler()
	if got := runtime.WrapHandler(handler); got == nil {
		t.Fatal("expected handler")
	}
	if got := runtime.WrapTransport(http.DefaultTransport); got != http.DefaultTransport {
		t.Error("disabled runtime must return the base transport")
	}
	if err := runtime.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}

	var nilRuntime *Runtime
	if nilRuntime.Enabled() {
		t.Error("nil runtime must be disabled")
	}
}

func TestSetupExportsSpans(t *testing.T) {
	prevProvider := otel.GetTracerProvider()
	prevPropagator := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		otel.SetTextMapPropagator(prevPropagator)
	})

	var exports atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/traces" {
			exports.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	var traceparent atomic.Value
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent.Store(r.Header.Get("Traceparent"))
		w.Write([]byte(`{"status":"OK"}`))
	}))
	defer backend.Close()

	runtime, err := Setup(context.Background(), config.TelemetryConfig{
		Enabled:       true,
		Endpoint:      collector.URL,
		ServiceName:   "sweetcorn-web-test",
		SamplingRatio: 1,
		ExportTimeout: time.Second,
	}, "test", nil)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if !runtime.Enabled() {
		t.Fatal("expected enabled runtime")
	}

	client := &http.Client{Transport: runtime.WrapTransport(nil)}
	handler := runtime.WrapHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, _ := http.NewRequestWithContext(r.Context(), http.MethodGet, backend.URL+"/api/v1/healthz", nil)
		resp, err := client.Do(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		resp.Body.Close()
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/logs", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	if got, _ := traceparent.Load().(string); got == "" {
		t.Error("expected traceparent header on backend request")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runtime.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if exports.Load() == 0 {
		t.Error("expected spans to be exported on shutdown")
	}
}

func TestNameSpansUsesRoutePattern(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer provider.Shutdown(context.Background())

	r := chi.NewRouter()
	r.Use(NameSpans)
	r.Get("/traces/{traceID}", func(w http.ResponseWriter, r *http.Request) {})

	ctx, span := provider.Tracer("test").Start(context.Background(), "web.request")
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/traces/abc123", nil).WithContext(ctx))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if got := ended[0].Name(); got != "GET /traces/{traceID}" {
		t.Errorf("span name = %q", got)
	}
}
