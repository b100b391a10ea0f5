package api

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

const jaegerPath = "jaeger/api/"

// GetTraces fetches the flat span table.
func (c *Client) GetTraces(ctx context.Context) ([]TraceRecord, error) {
	var traces []TraceRecord
	err := c.get(ctx, "api/v1/traces", nil, &traces)
	return traces, err
}

// GetDistinctTraceServices lists the services that reported spans.
func (c *Client) GetDistinctTraceServices(ctx context.Context) (*ServicesResponse, error) {
	var resp ServicesResponse
	if err := c.get(ctx, jaegerPath+"services", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OperationsParams filters GetDistinctTraceOperations. The backend requires Service.
type OperationsParams struct {
	Service  string
	SpanKind string
}

func (p OperationsParams) values() url.Values {
	q := url.Values{}
	if p.Service != "" {
		q.Set("service", p.Service)
	}
	if p.SpanKind != "" {
		q.Set("spanKind", p.SpanKind)
	}
	return q
}

// GetDistinctTraceOperations lists the span names reported by a service.
func (c *Client) GetDistinctTraceOperations(ctx context.Context, params OperationsParams) (*OperationsResponse, error) {
	var resp OperationsResponse
	if err := c.get(ctx, jaegerPath+"operations", params.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchTracesParams filters SearchTraces. Zero values are omitted.
type SearchTracesParams struct {
	Service   string
	Operation string
	Start     time.Time
	End       time.Time
	Limit     int
}

func (p SearchTracesParams) values() url.Values {
	q := url.Values{}
	if p.Service != "" {
		q.Set("service", p.Service)
	}
	if p.Operation != "" {
		q.Set("operation", p.Operation)
	}
	setMicros(q, "start", p.Start)
	setMicros(q, "end", p.End)
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

// SearchTraces runs a Jaeger trace search.
func (c *Client) SearchTraces(ctx context.Context, params SearchTracesParams) (*TracesResponse, error) {
	var resp TracesResponse
	if err := c.get(ctx, jaegerPath+"traces", params.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TraceParams narrows the time window GetTrace scans.
type TraceParams struct {
	Start time.Time
	End   time.Time
}

// GetTrace fetches a single trace by ID.
func (c *Client) GetTrace(ctx context.Context, traceID string, params TraceParams) (*TracesResponse, error) {
	if traceID == "" {
		return nil, ErrTraceIDRequired
	}

	q := url.Values{}
	setMicros(q, "start", params.Start)
	setMicros(q, "end", params.End)

	var resp TracesResponse
	if err := c.get(ctx, jaegerPath+"traces/"+url.PathEscape(traceID), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DependenciesParams selects the window of the service dependency graph. End is
// sent in Unix microseconds like every other time bound; Lookback in milliseconds.
type DependenciesParams struct {
	End      time.Time
	Lookback time.Duration
}

// GetDependencies fetches the service dependency links.
func (c *Client) GetDependencies(ctx context.Context, params DependenciesParams) (*DependenciesResponse, error) {
	q := url.Values{}
	setMicros(q, "end", params.End)
	if params.Lookback > 0 {
		q.Set("lookback", strconv.FormatInt(params.Lookback.Milliseconds(), 10))
	}

	var resp DependenciesResponse
	if err := c.get(ctx, jaegerPath+"dependencies", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// setMicros encodes t as Unix microseconds, the unit the Jaeger query API expects.
func setMicros(q url.Values, key string, t time.Time) {
	if t.IsZero() {
		return
	}
	q.Set(key, strconv.FormatInt(t.UnixMicro(), 10))
}
