// Package health reports whether the web host can reach the sweetcorn backend.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/alkmst-xyz/sweetcorn-web/web/api"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// ComponentStatus represents the health status of a single component.
type ComponentStatus struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Response represents the health check response.
type Response struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
	Version    string                     `json:"version"`
	Uptime     string                     `json:"uptime"`
}

// WebVersion is the current version of the web host.
// This should be set at build time using ldflags.
var WebVersion = "dev"

// BackendProber fetches the backend liveness status. *api.Client satisfies it.
type BackendProber interface {
	GetHealthz(ctx context.Context) (*api.StatusResponse, error)
}

// Checker performs health checks for the web host.
type Checker struct {
	backend   BackendProber
	startTime time.Time
	version   string
	timeout   time.Duration
}

// NewChecker creates a new web health checker.
func NewChecker(backend BackendProber, version string, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		backend:   backend,
		startTime: time.Now(),
		version:   version,
		timeout:   timeout,
	}
}

// Check probes the backend and returns the aggregated response.
func (c *Checker) Check(ctx context.Context) *Response {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	components := map[string]ComponentStatus{
		"backend": c.checkBackend(checkCtx),
	}

	overallStatus := StatusHealthy
	for _, comp := range components {
		if comp.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			break
		}
		if comp.Status == StatusDegraded {
			overallStatus = StatusDegraded
		}
	}

	return &Response{
		Status:     overallStatus,
		Components: components,
		Version:    c.version,
		Uptime:     time.Since(c.startTime).Round(time.Second).String(),
	}
}

// checkBackend is healthy when healthz answers "ok" in any case, degraded when
// it answers anything else.
func (c *Checker) checkBackend(ctx context.Context) ComponentStatus {
	if c.backend == nil {
		return ComponentStatus{
			Status:  StatusUnhealthy,
			Message: "backend client not configured",
		}
	}

	status, err := c.backend.GetHealthz(ctx)
	if err != nil {
		return ComponentStatus{
			Status:  StatusUnhealthy,
			Message: "backend check failed: " + err.Error(),
		}
	}

	if !strings.EqualFold(status.Status, "ok") {
		return ComponentStatus{
			Status:  StatusDegraded,
			Message: "backend reported " + status.Status,
		}
	}

	return ComponentStatus{
		Status:  StatusHealthy,
		Message: "connected",
	}
}

// Handler returns an HTTP handler for health checks.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := c.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")

		if response.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		json.NewEncoder(w).Encode(response)
	}
}
