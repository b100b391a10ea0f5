package views

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/alkmst-xyz/sweetcorn-web/internal/httperr"
	"github.com/alkmst-xyz/sweetcorn-web/web/api"
	"github.com/alkmst-xyz/sweetcorn-web/web/loaders"
)

// Home is the landing page linking to every section.
func Home() templ.Component {
	return component(func(ctx context.Context, w *writer) {
		heading(w, "sweetcorn")
		w.open("p", "mb-4")
		w.text("Browse the logs, metrics and traces stored by the sweetcorn backend.")
		w.close("p")
		w.open("ul", "list-disc pl-6")
		for _, item := range Nav[1:] {
			w.open("li", "")
			w.link(item.Href, "text-blue-700 hover:underline", item.Label)
			w.close("li")
		}
		w.close("ul")
	})
}

// LogsPage renders the log table.
func LogsPage(data *loaders.LogsData) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		heading(w, "Logs")
		count(w, len(data.Logs), "records")
		rows := make([][]string, 0, len(data.Logs))
		for _, r := range data.Logs {
			rows = append(rows, []string{
				r.Timestamp,
				r.ServiceName,
				r.SeverityText,
				r.Body,
				r.TraceID,
				formatAttributes(r.LogAttributes),
			})
		}
		table(w, []string{"Timestamp", "Service", "Severity", "Body", "Trace ID", "Attributes"}, rows)
	})
}

// MetricsPage renders one table per metric kind.
func MetricsPage(data *loaders.MetricsData) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		heading(w, "Metrics")

		section(w, "Gauge", len(data.GaugeMetrics))
		rows := make([][]string, 0, len(data.GaugeMetrics))
		for _, r := range data.GaugeMetrics {
			rows = append(rows, append(baseCells(r.MetricsRecordBase), formatFloat(r.Value)))
		}
		table(w, append(baseHeaders(), "Value"), rows)

		section(w, "Sum", len(data.SumMetrics))
		rows = make([][]string, 0, len(data.SumMetrics))
		for _, r := range data.SumMetrics {
			rows = append(rows, append(baseCells(r.MetricsRecordBase),
				formatFloat(r.Value), strconv.FormatBool(r.IsMonotonic)))
		}
		table(w, append(baseHeaders(), "Value", "Monotonic"), rows)

		section(w, "Histogram", len(data.HistogramMetrics))
		rows = make([][]string, 0, len(data.HistogramMetrics))
		for _, r := range data.HistogramMetrics {
			rows = append(rows, append(baseCells(r.MetricsRecordBase),
				strconv.FormatUint(r.Count, 10), formatFloat(r.Sum), formatFloat(r.Min), formatFloat(r.Max)))
		}
		table(w, append(baseHeaders(), "Count", "Sum", "Min", "Max"), rows)

		section(w, "Exponential histogram", len(data.ExponentialHistogramMetrics))
		rows = make([][]string, 0, len(data.ExponentialHistogramMetrics))
		for _, r := range data.ExponentialHistogramMetrics {
			rows = append(rows, append(baseCells(r.MetricsRecordBase),
				strconv.FormatUint(r.Count, 10), formatFloat(r.Sum), strconv.Itoa(r.Scale)))
		}
		table(w, append(baseHeaders(), "Count", "Sum", "Scale"), rows)

		section(w, "Summary", len(data.SummaryMetrics))
		rows = make([][]string, 0, len(data.SummaryMetrics))
		for _, r := range data.SummaryMetrics {
			rows = append(rows, append(baseCells(r.MetricsRecordBase),
				strconv.FormatUint(r.Count, 10), formatFloat(r.Sum)))
		}
		table(w, append(baseHeaders(), "Count", "Sum"), rows)
	})
}

func section(w *writer, title string, n int) {
	w.open("h2", "text-lg font-medium mt-6 mb-2")
	w.text(fmt.Sprintf("%s (%d)", title, n))
	w.close("h2")
}

func baseHeaders() []string {
	return []string{"Time", "Service", "Metric", "Unit"}
}

func baseCells(r api.MetricsRecordBase) []string {
	return []string{formatMicros(r.Timestamp), r.ServiceName, r.MetricName, r.MetricUnit}
}

// TracesPage renders the service filter, the operations of the selected service and the span table.
func TracesPage(data *loaders.TracesData, service string) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		heading(w, "Traces")

		if data.Services != nil {
			w.open("nav", "flex flex-wrap gap-2 mb-4")
			for _, name := range data.Services.Data {
				class := "px-2 py-0.5 rounded border border-stone-300 text-sm"
				if name == service {
					class = classes(class, "border-stone-900 bg-stone-900 text-white")
				}
				w.link("/traces?service="+url.QueryEscape(name), class, name)
			}
			w.close("nav")
		}

		if service != "" && data.Operations != nil {
			section(w, "Operations of "+service, len(data.Operations.Data))
			rows := make([][]string, 0, len(data.Operations.Data))
			for _, op := range data.Operations.Data {
				rows = append(rows, []string{op.Name, op.SpanKind})
			}
			table(w, []string{"Operation", "Span kind"}, rows)
		}

		section(w, "Spans", len(data.Traces))
		w.open("table", tableClass)
		w.open("thead", "")
		w.open("tr", "")
		for _, h := range []string{"Time", "Trace ID", "Service", "Span", "Kind", "Duration", "Status"} {
			w.open("th", headerClass)
			w.text(h)
			w.close("th")
		}
		w.close("tr")
		w.close("thead")
		w.open("tbody", "")
		for _, r := range data.Traces {
			w.open("tr", "")
			w.open("td", cellClass)
			w.text(formatNanos(r.Timestamp))
			w.close("td")
			w.open("td", classes(cellClass, "font-mono"))
			w.link("/traces/"+url.PathEscape(r.TraceID), "text-blue-700 hover:underline", r.TraceID)
			w.close("td")
			for _, cell := range []string{r.ServiceName, r.SpanName, r.SpanKind, time.Duration(r.Duration).String(), r.StatusCode} {
				w.open("td", cellClass)
				w.text(cell)
				w.close("td")
			}
			w.close("tr")
		}
		w.close("tbody")
		w.close("table")
	})
}

// TracePage renders the spans of a single trace.
func TracePage(data *loaders.TraceData) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		heading(w, "Trace")
		if data.Trace == nil || len(data.Trace.Data) == 0 {
			w.open("p", mutedClass)
			w.text("Trace not found.")
			w.close("p")
			return
		}

		for _, trace := range data.Trace.Data {
			w.open("p", classes(mutedClass, "font-mono mb-2"))
			w.text(trace.TraceID)
			w.close("p")
			rows := make([][]string, 0, len(trace.Spans))
			for _, span := range trace.Spans {
				service := span.ProcessID
				if p, ok := trace.Processes[span.ProcessID]; ok {
					service = p.ServiceName
				}
				rows = append(rows, []string{
					span.SpanID,
					parentOf(span),
					service,
					span.OperationName,
					formatMicros(span.StartTime),
					(time.Duration(span.Duration) * time.Microsecond).String(),
					strconv.Itoa(len(span.Logs)),
				})
			}
			table(w, []string{"Span ID", "Parent", "Service", "Operation", "Start", "Duration", "Events"}, rows)
		}
	})
}

func parentOf(span api.Span) string {
	for _, ref := range span.References {
		if ref.RefType == "CHILD_OF" {
			return ref.SpanID
		}
	}
	return ""
}

// DependenciesPage renders the service dependency links.
func DependenciesPage(data *loaders.DependenciesData) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		heading(w, "Dependencies")
		var links []api.DependencyLink
		if data.Dependencies != nil {
			links = data.Dependencies.Data
		}
		count(w, len(links), "links")
		rows := make([][]string, 0, len(links))
		for _, l := range links {
			rows = append(rows, []string{l.Parent, l.Child, strconv.FormatUint(l.CallCount, 10)})
		}
		table(w, []string{"Parent", "Child", "Calls"}, rows)
	})
}

// AboutPage is static.
func AboutPage() templ.Component {
	return component(func(ctx context.Context, w *writer) {
		heading(w, "About")
		w.open("p", "mb-2")
		w.text("sweetcorn stores OpenTelemetry logs, metrics and traces and serves them through a query API.")
		w.close("p")
		w.open("p", mutedClass)
		w.text("This web host renders that data server-side.")
		w.close("p")
	})
}

// ErrorPage renders a failed page load. The request ID lets operators find the
// matching log line.
func ErrorPage(e *httperr.Error) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		heading(w, "Something went wrong")
		w.open("p", "mb-2")
		w.text(e.Message)
		w.close("p")
		w.open("p", classes(mutedClass, "font-mono"))
		w.text(strings.Join([]string{e.Code, e.RequestID}, " "))
		w.close("p")
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatNanos renders span table timestamps, which the backend stores in nanoseconds.
func formatNanos(ns int64) string {
	return time.Unix(0, ns).UTC().Format(time.RFC3339Nano)
}

// formatMicros renders metric and Jaeger timestamps, which are Unix microseconds.
func formatMicros(us int64) string {
	return time.UnixMicro(us).UTC().Format(time.RFC3339Nano)
}
