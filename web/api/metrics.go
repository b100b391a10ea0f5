package api

import "context"

const metricsPath = "api/v1/metrics/"

// GetMetricsGauge fetches gauge data points.
func (c *Client) GetMetricsGauge(ctx context.Context) ([]MetricsRecordGauge, error) {
	var records []MetricsRecordGauge
	err := c.get(ctx, metricsPath+"gauge", nil, &records)
	return records, err
}

// GetMetricsSum fetches sum data points.
func (c *Client) GetMetricsSum(ctx context.Context) ([]MetricsRecordSum, error) {
	var records []MetricsRecordSum
	err := c.get(ctx, metricsPath+"sum", nil, &records)
	return records, err
}

// GetMetricsHistogram fetches explicit-bucket histogram data points.
func (c *Client) GetMetricsHistogram(ctx context.Context) ([]MetricsRecordHistogram, error) {
	var records []MetricsRecordHistogram
	err := c.get(ctx, metricsPath+"histogram", nil, &records)
	return records, err
}

// GetMetricsExponentialHistogram fetches exponential histogram data points.
func (c *Client) GetMetricsExponentialHistogram(ctx context.Context) ([]MetricsRecordExponentialHistogram, error) {
	var records []MetricsRecordExponentialHistogram
	err := c.get(ctx, metricsPath+"exponential-histogram", nil, &records)
	return records, err
}

// GetMetricsSummary fetches summary data points.
func (c *Client) GetMetricsSummary(ctx context.Context) ([]MetricsRecordSummary, error) {
	var records []MetricsRecordSummary
	err := c.get(ctx, metricsPath+"summary", nil, &records)
	return records, err
}
