package shutdown

import (
	"context"
	"net/http"
)

// HTTPServerComponent stops an http.Server, letting in-flight requests finish.
type HTTPServerComponent struct {
	name   string
	server *http.Server
}

func NewHTTPServerComponent(name string, server *http.Server) *HTTPServerComponent {
	return &HTTPServerComponent{
		name:   name,
		server: server,
	}
}

func (c *HTTPServerComponent) Name() string {
	return c.name
}

func (c *HTTPServerComponent) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

// FuncComponent wraps a shutdown function as a component.
type FuncComponent struct {
	name string
	fn   func(ctx context.Context) error
}

// NewFuncComponent creates a new function-based shutdown component.
func NewFuncComponent(name string, fn func(ctx context.Context) error) *FuncComponent {
	return &FuncComponent{
		name: name,
		fn:   fn,
	}
}

func (c *FuncComponent) Name() string {
	return c.name
}

func (c *FuncComponent) Shutdown(ctx context.Context) error {
	return c.fn(ctx)
}
