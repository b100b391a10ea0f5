package api

import (
	"fmt"
	"time"
)

// Attributes is an open key/value map as stored by the backend.
type Attributes map[string]any

// StatusResponse is the backend liveness payload.
type StatusResponse struct {
	Status string `json:"status"`
}

// LogRecord is one stored log line.
type LogRecord struct {
	Timestamp          string     `json:"timestamp"`
	TraceID            string     `json:"traceId"`
	SpanID             string     `json:"spanId"`
	TraceFlags         int        `json:"traceFlags"`
	SeverityText       string     `json:"severityText"`
	SeverityNumber     int        `json:"severityNumber"`
	ServiceName        string     `json:"serviceName"`
	Body               string     `json:"body"`
	ResourceSchemaURL  string     `json:"resourceSchemaUrl"`
	ResourceAttributes Attributes `json:"resourceAttributes"`
	ScopeSchemaURL     string     `json:"scopeSchemaUrl"`
	ScopeName          string     `json:"scopeName"`
	ScopeVersion       string     `json:"scopeVersion"`
	ScopeAttributes    Attributes `json:"scopeAttributes"`
	LogAttributes      Attributes `json:"logAttributes"`
}

// Time parses the record timestamp.
func (r LogRecord) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, r.Timestamp)
}

// TraceRecord is one stored span in the flat span table.
type TraceRecord struct {
	Timestamp          int64        `json:"timestamp"`
	TraceID            string       `json:"traceID"`
	SpanID             string       `json:"spanID"`
	ParentSpanID       string       `json:"parentSpanID"`
	TraceState         string       `json:"traceState"`
	SpanName           string       `json:"spanName"`
	SpanKind           string       `json:"spanKind"`
	ServiceName        string       `json:"serviceName"`
	ResourceAttributes Attributes   `json:"resourceAttributes"`
	ScopeName          string       `json:"scopeName"`
	ScopeVersion       string       `json:"scopeVersion"`
	SpanAttributes     Attributes   `json:"spanAttributes"`
	Duration           int64        `json:"duration"`
	StatusCode         string       `json:"statusCode"`
	StatusMessage      string       `json:"statusMessage"`
	EventsTimestamps   []int64      `json:"eventsTimestamps"`
	EventsNames        []string     `json:"eventsNames"`
	EventsAttributes   []Attributes `json:"eventsAttributes"`
	LinksTraceIDs      []string     `json:"linksTraceIDs"`
	LinksSpanIDs       []string     `json:"linksSpanIDs"`
	LinksTraceStates   []string     `json:"linksTraceStates"`
	LinksAttributes    []Attributes `json:"linksAttributes"`
}

// SpanEvent is one entry of the parallel events arrays of a TraceRecord.
type SpanEvent struct {
	Timestamp  int64
	Name       string
	Attributes Attributes
}

// SpanLink is one entry of the parallel links arrays of a TraceRecord.
type SpanLink struct {
	TraceID    string
	SpanID     string
	TraceState string
	Attributes Attributes
}

// Events zips the events arrays. Entries past the shortest array are dropped.
func (r TraceRecord) Events() []SpanEvent {
	n := min(len(r.EventsTimestamps), len(r.EventsNames), len(r.EventsAttributes))
	events := make([]SpanEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, SpanEvent{
			Timestamp:  r.EventsTimestamps[i],
			Name:       r.EventsNames[i],
			Attributes: r.EventsAttributes[i],
		})
	}
	return events
}

// Links zips the links arrays. Entries past the shortest array are dropped.
func (r TraceRecord) Links() []SpanLink {
	n := min(len(r.LinksTraceIDs), len(r.LinksSpanIDs), len(r.LinksTraceStates), len(r.LinksAttributes))
	links := make([]SpanLink, 0, n)
	for i := 0; i < n; i++ {
		links = append(links, SpanLink{
			TraceID:    r.LinksTraceIDs[i],
			SpanID:     r.LinksSpanIDs[i],
			TraceState: r.LinksTraceStates[i],
			Attributes: r.LinksAttributes[i],
		})
	}
	return links
}

// MetricsRecordBase holds the fields shared by every metric data point.
type MetricsRecordBase struct {
	Timestamp          int64      `json:"timestamp"`
	ServiceName        string     `json:"serviceName"`
	MetricName         string     `json:"metricName"`
	MetricDescription  string     `json:"metricDescription"`
	MetricUnit         string     `json:"metricUnit"`
	ResourceAttributes Attributes `json:"resourceAttributes"`
	ScopeName          string     `json:"scopeName"`
	ScopeVersion       string     `json:"scopeVersion"`
	Attributes         Attributes `json:"attributes"`
}

// MetricsRecordGauge is a gauge data point.
type MetricsRecordGauge struct {
	MetricsRecordBase
	Value float64 `json:"value"`
}

// MetricsRecordSum is a sum data point.
type MetricsRecordSum struct {
	MetricsRecordBase
	Value                  float64 `json:"value"`
	AggregationTemporality int     `json:"aggregationTemporality"`
	IsMonotonic            bool    `json:"isMonotonic"`
}

// MetricsRecordHistogram is an explicit-bucket histogram data point.
type MetricsRecordHistogram struct {
	MetricsRecordBase
	Count          uint64    `json:"count"`
	Sum            float64   `json:"sum"`
	BucketCounts   []uint64  `json:"bucketCounts"`
	ExplicitBounds []float64 `json:"explicitBounds"`
	Min            float64   `json:"min"`
	Max            float64   `json:"max"`
}

// MetricsRecordExponentialHistogram is an exponential histogram data point.
type MetricsRecordExponentialHistogram struct {
	MetricsRecordBase
	Count                uint64   `json:"count"`
	Sum                  float64  `json:"sum"`
	Scale                int      `json:"scale"`
	ZeroCount            uint64   `json:"zeroCount"`
	PositiveOffset       int      `json:"positiveOffset"`
	PositiveBucketCounts []uint64 `json:"positiveBucketCounts"`
	NegativeOffset       int      `json:"negativeOffset"`
	NegativeBucketCounts []uint64 `json:"negativeBucketCounts"`
	Min                  float64  `json:"min"`
	Max                  float64  `json:"max"`
}

// MetricsRecordSummary is a summary data point with its quantiles.
type MetricsRecordSummary struct {
	MetricsRecordBase
	Count             uint64    `json:"count"`
	Sum               float64   `json:"sum"`
	QuantileQuantiles []float64 `json:"quantileQuantiles"`
	QuantileValues    []float64 `json:"quantileValues"`
}

// Jaeger query API shapes.

// Envelope is the Jaeger query response wrapper.
type Envelope[T any] struct {
	Data   T             `json:"data"`
	Errors []JaegerError `json:"errors"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Total  int           `json:"total"`
}

// Err returns the first reported error, or nil when the envelope carries none.
func (e Envelope[T]) Err() error {
	if len(e.Errors) == 0 {
		return nil
	}
	err := e.Errors[0]
	return &err
}

// Envelope instances returned by the Jaeger wrappers.
type (
	ServicesResponse     = Envelope[[]string]
	OperationsResponse   = Envelope[[]Operation]
	TracesResponse       = Envelope[[]TraceResponse]
	DependenciesResponse = Envelope[[]DependencyLink]
)

// JaegerError is an error entry of a Jaeger envelope.
type JaegerError struct {
	Code    int    `json:"code,omitempty"`
	Msg     string `json:"msg"`
	TraceID string `json:"traceID,omitempty"`
}

// Error implements error.
func (e *JaegerError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("jaeger error (%d): %s", e.Code, e.Msg)
	}
	return "jaeger error: " + e.Msg
}

// Operation is a distinct span name of a service.
type Operation struct {
	Name     string `json:"name"`
	SpanKind string `json:"spanKind"`
}

// DependencyLink counts the calls from one service to another.
type DependencyLink struct {
	Parent    string `json:"parent"`
	Child     string `json:"child"`
	CallCount uint64 `json:"callCount"`
}

// TraceKeyValuePair is a typed Jaeger tag or log field.
type TraceKeyValuePair struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// TraceProcess is the service that emitted a group of spans.
type TraceProcess struct {
	ServiceName string              `json:"serviceName"`
	Tags        []TraceKeyValuePair `json:"tags"`
}

// TraceSpanReference links a span to its parent or a follower.
type TraceSpanReference struct {
	RefType string `json:"refType"`
	SpanID  string `json:"spanID"`
	TraceID string `json:"traceID"`
}

// TraceLog is a span event in Jaeger form.
type TraceLog struct {
	Timestamp int64               `json:"timestamp"`
	Fields    []TraceKeyValuePair `json:"fields"`
	Name      string              `json:"name"`
}

// Span is one span of a Jaeger trace. Times are Unix microseconds.
type Span struct {
	TraceID       string               `json:"traceID"`
	SpanID        string               `json:"spanID"`
	ProcessID     string               `json:"processID"`
	OperationName string               `json:"operationName"`
	StartTime     int64                `json:"startTime"`
	Duration      int64                `json:"duration"`
	Logs          []TraceLog           `json:"logs"`
	References    []TraceSpanReference `json:"references"`
	Tags          []TraceKeyValuePair  `json:"tags"`
	Warnings      []string             `json:"warnings"`
	Flags         int                  `json:"flags"`
	StackTraces   []string             `json:"stackTraces"`
}

// TraceResponse is a Jaeger trace with its processes.
type TraceResponse struct {
	Processes map[string]TraceProcess `json:"processes"`
	TraceID   string                  `json:"traceID"`
	Warnings  []string                `json:"warnings"`
	Spans     []Span                  `json:"spans"`
}
