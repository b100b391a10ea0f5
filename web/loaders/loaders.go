// Package loaders produces the data each page renders. A loader calls one or more
// API wrappers and returns a value keyed by the names the views expect.
package loaders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alkmst-xyz/sweetcorn-web/web/api"
)

// Event carries the request-scoped inputs of a loader.
type Event struct {
	Client *api.Client
	Params map[string]string
	Query  url.Values
}

// Param returns the named route parameter.
func (ev Event) Param(name string) string {
	return ev.Params[name]
}

// Loader produces the data of one page.
type Loader func(ctx context.Context, ev Event) (any, error)

// Adapt turns a typed loader into a Loader.
func Adapt[T any](fn func(context.Context, Event) (T, error)) Loader {
	return func(ctx context.Context, ev Event) (any, error) {
		data, err := fn(ctx, ev)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}

// ParamError reports a missing or malformed route or query parameter.
type ParamError struct {
	Name string
	Err  error
}

func (e *ParamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parameter %q is required", e.Name)
	}
	return fmt.Sprintf("invalid parameter %q: %v", e.Name, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// LayoutData is shared by every page.
type LayoutData struct {
	Status *api.StatusResponse `json:"status"`
}

// Layout loads the backend status shown in the page chrome.
func Layout(ctx context.Context, ev Event) (*LayoutData, error) {
	status, err := ev.Client.GetHealthz(ctx)
	if err != nil {
		return nil, err
	}
	return &LayoutData{Status: status}, nil
}

// LogsData feeds the logs page.
type LogsData struct {
	Logs []api.LogRecord `json:"logs"`
}

// Logs loads the log table.
func Logs(ctx context.Context, ev Event) (*LogsData, error) {
	logs, err := ev.Client.GetLogs(ctx)
	if err != nil {
		return nil, err
	}
	return &LogsData{Logs: logs}, nil
}

// MetricsData feeds the metrics page.
type MetricsData struct {
	GaugeMetrics                []api.MetricsRecordGauge                `json:"gaugeMetrics"`
	SumMetrics                  []api.MetricsRecordSum                  `json:"sumMetrics"`
	HistogramMetrics            []api.MetricsRecordHistogram            `json:"histogramMetrics"`
	ExponentialHistogramMetrics []api.MetricsRecordExponentialHistogram `json:"exponentialHistogramMetrics"`
	SummaryMetrics              []api.MetricsRecordSummary              `json:"summaryMetrics"`
}

// Metrics loads all five metric kinds concurrently. The first failure cancels the rest.
func Metrics(ctx context.Context, ev Event) (*MetricsData, error) {
	var data MetricsData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		data.GaugeMetrics, err = ev.Client.GetMetricsGauge(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.SumMetrics, err = ev.Client.GetMetricsSum(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.HistogramMetrics, err = ev.Client.GetMetricsHistogram(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.ExponentialHistogramMetrics, err = ev.Client.GetMetricsExponentialHistogram(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.SummaryMetrics, err = ev.Client.GetMetricsSummary(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// TracesData feeds the traces page.
type TracesData struct {
	Traces     []api.TraceRecord       `json:"traces"`
	Services   *api.ServicesResponse   `json:"services"`
	Operations *api.OperationsResponse `json:"operations"`
}

// Traces loads the span table and the service list, plus the operations of the
// service named by the "service" query parameter when one is given.
func Traces(ctx context.Context, ev Event) (*TracesData, error) {
	data := TracesData{
		Operations: &api.OperationsResponse{Data: []api.Operation{}},
	}
	service := ev.Query.Get("service")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Traces, err = ev.Client.GetTraces(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.Services, err = ev.Client.GetDistinctTraceServices(ctx)
		return err
	})
	if service != "" {
		g.Go(func() error {
			ops, err := ev.Client.GetDistinctTraceOperations(ctx, api.OperationsParams{
				Service:  service,
				SpanKind: ev.Query.Get("spanKind"),
			})
			if err != nil {
				return err
			}
			data.Operations = ops
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// TraceData feeds the single trace page.
type TraceData struct {
	Trace *api.TracesResponse `json:"trace"`
}

// Trace loads a single trace named by the traceID route parameter. Optional start
// and end query parameters are Unix microseconds.
func Trace(ctx context.Context, ev Event) (*TraceData, error) {
	traceID := ev.Param("traceID")
	if traceID == "" {
		return nil, &ParamError{Name: "traceID"}
	}

	var (
		params api.TraceParams
		err    error
	)
	if params.Start, err = queryMicros(ev.Query, "start"); err != nil {
		return nil, err
	}
	if params.End, err = queryMicros(ev.Query, "end"); err != nil {
		return nil, err
	}

	trace, err := ev.Client.GetTrace(ctx, traceID, params)
	if err != nil {
		return nil, err
	}
	return &TraceData{Trace: trace}, nil
}

// DependenciesData feeds the dependencies page.
type DependenciesData struct {
	Dependencies *api.DependenciesResponse `json:"dependencies"`
}

// Dependencies loads the service dependency links. The optional "end" query
// parameter is Unix microseconds and "lookback" a Go duration such as "1h".
func Dependencies(ctx context.Context, ev Event) (*DependenciesData, error) {
	var (
		params api.DependenciesParams
		err    error
	)
	if params.End, err = queryMicros(ev.Query, "end"); err != nil {
		return nil, err
	}
	if raw := ev.Query.Get("lookback"); raw != "" {
		if params.Lookback, err = time.ParseDuration(raw); err != nil {
			return nil, &ParamError{Name: "lookback", Err: err}
		}
	}

	deps, err := ev.Client.GetDependencies(ctx, params)
	if err != nil {
		return nil, err
	}
	return &DependenciesData{Dependencies: deps}, nil
}

// AboutData is empty; the about page is static.
type AboutData struct{}

// About never calls the backend, so its page can be rendered once at startup.
func About(context.Context, Event) (*AboutData, error) {
	return &AboutData{}, nil
}

func queryMicros(q url.Values, name string) (time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	us, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, &ParamError{Name: name, Err: err}
	}
	return time.UnixMicro(us), nil
}
