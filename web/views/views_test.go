package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alkmst-xyz/sweetcorn-web/internal/httperr"
	"github.com/alkmst-xyz/sweetcorn-web/web/api"
	"github.com/alkmst-xyz/sweetcorn-web/web/loaders"
)

func renderString(t *testing.T, fn func(*bytes.Buffer) error) string {
	t.Helper()
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

func TestLayoutMarksActiveAndStatus(t *testing.T) {
	html := renderString(t, func(buf *bytes.Buffer) error {
		return Layout("Logs", "/logs", &api.StatusResponse{Status: "OK"}, AboutPage()).Render(context.Background(), buf)
	})

	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Errorf("expected document, got %.40q", html)
	}
	if !strings.Contains(html, "<title>Logs | sweetcorn</title>") {
		t.Error("missing title")
	}
	if !strings.Contains(html, "backend: OK") {
		t.Error("missing backend status")
	}
	if !strings.Contains(html, `href="/logs" class="`+classes(navLinkClass, activeNavClass)+`"`) {
		t.Error("logs link must be marked active")
	}
	if !strings.Contains(html, "About") {
		t.Error("content not rendered")
	}
}

func TestLayoutUnknownStatus(t *testing.T) {
	html := renderString(t, func(buf *bytes.Buffer) error {
		return Layout("Home", "/", nil, Home()).Render(context.Background(), buf)
	})
	if !strings.Contains(html, "backend: unknown") {
		t.Error("expected unknown backend status")
	}
}

func TestLogsPageEscapes(t *testing.T) {
	data := &loaders.LogsData{Logs: []api.LogRecord{{
		Timestamp:   "2024-05-01T10:00:00Z",
		ServiceName: "checkout",
		Body:        `<script>alert("x")</script>`,
	}}}

	html := renderString(t, func(buf *bytes.Buffer) error {
		return LogsPage(data).Render(context.Background(), buf)
	})
	if strings.Contains(html, "<script>") {
		t.Error("log body must be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("expected escaped body, got %s", html)
	}
	if !strings.Contains(html, "1 records") {
		t.Error("missing record count")
	}
}

func TestEmptyTables(t *testing.T) {
	html := renderString(t, func(buf *bytes.Buffer) error {
		return MetricsPage(&loaders.MetricsData{}).Render(context.Background(), buf)
	})
	if got := strings.Count(html, "No records."); got != 5 {
		t.Errorf("expected 5 empty sections, got %d", got)
	}
}

func TestMetricsPageRendersMicrosecondTimestamps(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	data := &loaders.MetricsData{
		GaugeMetrics: []api.MetricsRecordGauge{{
			MetricsRecordBase: api.MetricsRecordBase{Timestamp: at.UnixMicro(), MetricName: "cpu.load"},
			Value:             0.75,
		}},
	}

	html := renderString(t, func(buf *bytes.Buffer) error {
		return MetricsPage(data).Render(context.Background(), buf)
	})
	if !strings.Contains(html, "2025-06-01T12:30:00Z") {
		t.Errorf("expected data point time 2025-06-01T12:30:00Z, got %s", html)
	}
	if strings.Contains(html, "1970-") {
		t.Error("metric timestamp rendered in the wrong unit")
	}
}

func TestTracesPageLinksTraces(t *testing.T) {
	data := &loaders.TracesData{
		Traces:     []api.TraceRecord{{TraceID: "abc123", ServiceName: "cart", SpanName: "GET /cart"}},
		Services:   &api.ServicesResponse{Data: []string{"cart"}},
		Operations: &api.OperationsResponse{Data: []api.Operation{{Name: "GET /cart", SpanKind: "server"}}},
	}

	html := renderString(t, func(buf *bytes.Buffer) error {
		return TracesPage(data, "cart").Render(context.Background(), buf)
	})
	if !strings.Contains(html, `href="/traces/abc123"`) {
		t.Error("missing trace link")
	}
	if !strings.Contains(html, `href="/traces?service=cart"`) {
		t.Error("missing service filter link")
	}
	if !strings.Contains(html, "Operations of cart (1)") {
		t.Error("missing operations section")
	}
}

func TestTracePageResolvesProcesses(t *testing.T) {
	data := &loaders.TraceData{Trace: &api.TracesResponse{Data: []api.TraceResponse{{
		TraceID:   "abc123",
		Processes: map[string]api.TraceProcess{"p1": {ServiceName: "cart"}},
		Spans: []api.Span{{
			SpanID:        "s2",
			ProcessID:     "p1",
			OperationName: "GET /cart",
			References:    []api.TraceSpanReference{{RefType: "CHILD_OF", SpanID: "s1"}},
		}},
	}}}}

	html := renderString(t, func(buf *bytes.Buffer) error {
		return TracePage(data).Render(context.Background(), buf)
	})
	for _, want := range []string{"abc123", "cart", "GET /cart", "s1"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in trace page", want)
		}
	}
}

func TestErrorPage(t *testing.T) {
	e := httperr.New(httperr.CodeBadGateway, "backend unreachable").WithRequestID("req-9")
	html := renderString(t, func(buf *bytes.Buffer) error {
		return ErrorPage(e).Render(context.Background(), buf)
	})
	if !strings.Contains(html, "backend unreachable") || !strings.Contains(html, "BAD_GATEWAY req-9") {
		t.Errorf("unexpected error page %s", html)
	}
}
