package loaders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/alkmst-xyz/sweetcorn-web/web/api"
)

// backend is a fake sweetcorn backend that records the request URIs it serves.
type backend struct {
	mu       sync.Mutex
	requests []string
	routes   map[string]string
	fail     map[string]int
}

func newBackend(t *testing.T, routes map[string]string) (*backend, *api.Client) {
	t.Helper()
	b := &backend{routes: routes, fail: map[string]int{}}
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)
	return b, api.NewClient(api.BaseURL(server.URL))
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, r.URL.RequestURI())
	status, failing := b.fail[r.URL.Path]
	body, ok := b.routes[r.URL.Path]
	b.mu.Unlock()

	if failing {
		http.Error(w, "boom", status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func (b *backend) seen(prefix string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, r := range b.requests {
		if strings.HasPrefix(r, prefix) {
			out = append(out, r)
		}
	}
	return out
}

const emptyEnvelope = `{"data":[],"total":0,"limit":0,"offset":0,"errors":null}`

func TestLayout(t *testing.T) {
	_, client := newBackend(t, map[string]string{"/api/v1/healthz": `{"status":"OK"}`})

	data, err := Layout(context.Background(), Event{Client: client})
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	if data.Status == nil || data.Status.Status != "OK" {
		t.Errorf("unexpected layout data %+v", data)
	}
}

func TestLogsWrapsEmptyArray(t *testing.T) {
	_, client := newBackend(t, map[string]string{"/api/v1/logs": `[]`})

	data, err := Adapt(Logs)(context.Background(), Event{Client: client})
	if err != nil {
		t.Fatalf("Logs failed: %v", err)
	}
	out, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"logs":[]}` {
		t.Errorf("expected {\"logs\":[]}, got %s", out)
	}
}

func TestMetricsLoadsAllKinds(t *testing.T) {
	routes := map[string]string{}
	for _, kind := range []string{"gauge", "sum", "histogram", "exponential-histogram", "summary"} {
		routes["/api/v1/metrics/"+kind] = fmt.Sprintf(`[{"metricName":"%s"}]`, kind)
	}
	_, client := newBackend(t, routes)

	data, err := Metrics(context.Background(), Event{Client: client})
	if err != nil {
		t.Fatalf("Metrics failed: %v", err)
	}

	checks := map[string]string{
		"gauge":                 data.GaugeMetrics[0].MetricName,
		"sum":                   data.SumMetrics[0].MetricName,
		"histogram":             data.HistogramMetrics[0].MetricName,
		"exponential-histogram": data.ExponentialHistogramMetrics[0].MetricName,
		"summary":               data.SummaryMetrics[0].MetricName,
	}
	for want, got := range checks {
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}

	out, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(out, &keys); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"gaugeMetrics", "sumMetrics", "histogramMetrics", "exponentialHistogramMetrics", "summaryMetrics"} {
		if _, ok := keys[key]; !ok {
			t.Errorf("missing key %s", key)
		}
	}
}

func TestMetricsFailsFast(t *testing.T) {
	routes := map[string]string{}
	for _, kind := range []string{"gauge", "sum", "histogram", "exponential-histogram", "summary"} {
		routes["/api/v1/metrics/"+kind] = `[]`
	}
	b, client := newBackend(t, routes)
	b.mu.Lock()
	b.fail["/api/v1/metrics/histogram"] = http.StatusInternalServerError
	b.mu.Unlock()

	_, err := Metrics(context.Background(), Event{Client: client})
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if !strings.HasSuffix(statusErr.URL, "/api/v1/metrics/histogram") {
		t.Errorf("expected histogram failure, got %s", statusErr.URL)
	}
}

func TestTracesWithoutService(t *testing.T) {
	b, client := newBackend(t, map[string]string{
		"/api/v1/traces":       `[]`,
		"/jaeger/api/services": `{"data":["checkout","cart"],"total":2,"limit":0,"offset":0,"errors":null}`,
	})

	data, err := Traces(context.Background(), Event{Client: client, Query: url.Values{}})
	if err != nil {
		t.Fatalf("Traces failed: %v", err)
	}
	if len(data.Services.Data) != 2 || data.Services.Total != 2 {
		t.Errorf("unexpected services %+v", data.Services)
	}
	if data.Operations == nil || len(data.Operations.Data) != 0 {
		t.Errorf("expected empty operations, got %+v", data.Operations)
	}
	if got := b.seen("/jaeger/api/operations"); len(got) != 0 {
		t.Errorf("operations must not be queried without a service, got %v", got)
	}
}

func TestTracesWithService(t *testing.T) {
	b, client := newBackend(t, map[string]string{
		"/api/v1/traces":         `[]`,
		"/jaeger/api/services":   emptyEnvelope,
		"/jaeger/api/operations": `{"data":[{"name":"GET /cart","spanKind":"server"}],"total":1,"limit":0,"offset":0,"errors":null}`,
	})

	query := url.Values{"service": {"cart"}}
	data, err := Traces(context.Background(), Event{Client: client, Query: query})
	if err != nil {
		t.Fatalf("Traces failed: %v", err)
	}
	if len(data.Operations.Data) != 1 || data.Operations.Data[0].Name != "GET /cart" {
		t.Errorf("unexpected operations %+v", data.Operations)
	}
	if got := b.seen("/jaeger/api/operations"); len(got) != 1 || got[0] != "/jaeger/api/operations?service=cart" {
		t.Errorf("unexpected operations requests %v", got)
	}
}

func TestTraceRequiresID(t *testing.T) {
	_, client := newBackend(t, nil)

	_, err := Trace(context.Background(), Event{Client: client})
	var paramErr *ParamError
	if !errors.As(err, &paramErr) || paramErr.Name != "traceID" {
		t.Fatalf("expected traceID ParamError, got %v", err)
	}
}

func TestTraceForwardsWindow(t *testing.T) {
	b, client := newBackend(t, map[string]string{
		"/jaeger/api/traces/abc123": `{"data":[{"traceID":"abc123","spans":[],"processes":{}}],"total":1,"limit":0,"offset":0,"errors":null}`,
	})

	ev := Event{
		Client: client,
		Params: map[string]string{"traceID": "abc123"},
		Query:  url.Values{"start": {"1700000000000000"}, "end": {"1700000001000000"}},
	}
	data, err := Trace(context.Background(), ev)
	if err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if len(data.Trace.Data) != 1 || data.Trace.Data[0].TraceID != "abc123" {
		t.Errorf("unexpected trace %+v", data.Trace)
	}
	want := "/jaeger/api/traces/abc123?end=1700000001000000&start=1700000000000000"
	if got := b.seen("/jaeger/api/traces/"); len(got) != 1 || got[0] != want {
		t.Errorf("expected %s, got %v", want, got)
	}
}

func TestTraceRejectsBadWindow(t *testing.T) {
	_, client := newBackend(t, nil)

	ev := Event{
		Client: client,
		Params: map[string]string{"traceID": "abc123"},
		Query:  url.Values{"start": {"yesterday"}},
	}
	_, err := Trace(context.Background(), ev)
	var paramErr *ParamError
	if !errors.As(err, &paramErr) || paramErr.Name != "start" {
		t.Fatalf("expected start ParamError, got %v", err)
	}
}

func TestDependencies(t *testing.T) {
	b, client := newBackend(t, map[string]string{
		"/jaeger/api/dependencies": `{"data":[{"parent":"frontend","child":"cart","callCount":12}],"total":0,"limit":0,"offset":0,"errors":null}`,
	})

	ev := Event{Client: client, Query: url.Values{"lookback": {"2h"}}}
	data, err := Dependencies(context.Background(), ev)
	if err != nil {
		t.Fatalf("Dependencies failed: %v", err)
	}
	links := data.Dependencies.Data
	if len(links) != 1 || links[0].Parent != "frontend" || links[0].Child != "cart" || links[0].CallCount != 12 {
		t.Errorf("unexpected links %+v", links)
	}
	if got := b.seen("/jaeger/api/dependencies"); len(got) != 1 || got[0] != "/jaeger/api/dependencies?lookback=7200000" {
		t.Errorf("unexpected requests %v", got)
	}
}

func TestAboutMakesNoRequests(t *testing.T) {
	b, client := newBackend(t, nil)

	if _, err := About(context.Background(), Event{Client: client}); err != nil {
		t.Fatalf("About failed: %v", err)
	}
	if got := b.seen("/"); len(got) != 0 {
		t.Errorf("expected no backend requests, got %v", got)
	}
}

func TestAdaptReturnsUntypedNilOnError(t *testing.T) {
	_, client := newBackend(t, nil)

	data, err := Adapt(Logs)(context.Background(), Event{Client: client})
	if err == nil {
		t.Fatal("expected error from missing route")
	}
	if data != nil {
		t.Errorf("expected nil data, got %#v", data)
	}
}
