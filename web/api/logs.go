package api

import "context"

// GetLogs fetches the stored log records.
func (c *Client) GetLogs(ctx context.Context) ([]LogRecord, error) {
	var logs []LogRecord
	err := c.get(ctx, "api/v1/logs", nil, &logs)
	return logs, err
}
