package api

import "context"

// GetHealthz fetches the backend liveness status.
func (c *Client) GetHealthz(ctx context.Context) (*StatusResponse, error) {
	var status StatusResponse
	if err := c.get(ctx, "api/v1/healthz", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
