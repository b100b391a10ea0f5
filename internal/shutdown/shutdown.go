// Package shutdown coordinates graceful shutdown of the page host. On SIGINT or
// SIGTERM it stops the HTTP listener, lets in-flight page loads finish and then
// flushes telemetry, all within one deadline.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alkmst-xyz/sweetcorn-web/pkg/logger"
)

// DefaultTimeout is the default graceful shutdown timeout.
const DefaultTimeout = 10 * time.Second

// Component represents a component that can be gracefully shut down.
type Component interface {
	// Name returns the component name for logging.
	Name() string
	// Shutdown should return within the context deadline.
	Shutdown(ctx context.Context) error
}

// Coordinator shuts registered components down in reverse registration order.
type Coordinator struct {
	components []Component
	timeout    time.Duration
	log        *logger.Logger
	mu         sync.Mutex

	signalCh chan os.Signal

	shutdownOnce sync.Once
	shutdownDone chan struct{}
	err          error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout sets the shutdown timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Coordinator) {
		c.log = log.WithComponent("shutdown")
	}
}

// WithSignalChannel sets a custom signal channel (for testing).
func WithSignalChannel(ch chan os.Signal) Option {
	return func(c *Coordinator) {
		c.signalCh = ch
	}
}

// NewCoordinator creates a new shutdown coordinator.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		timeout:      DefaultTimeout,
		log:          logger.Default().WithComponent("shutdown"),
		shutdownDone: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Register adds a component. Components are shut down LIFO.
func (c *Coordinator) Register(component Component) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components = append(c.components, component)
	c.log.Debug("registered shutdown component", "name", component.Name())
}

// WaitForSignal blocks until SIGINT or SIGTERM arrives or ctx is done, then
// shuts down.
func (c *Coordinator) WaitForSignal(ctx context.Context) {
	sigCh := c.signalCh
	if sigCh == nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
	}

	select {
	case sig := <-sigCh:
		c.log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		c.log.Info("shutdown requested", "reason", context.Cause(ctx))
	}

	c.Shutdown()
}

// Shutdown stops every registered component once, newest first. Components
// that are still pending when the timeout expires are skipped.
func (c *Coordinator) Shutdown() {
	c.shutdownOnce.Do(func() {
		defer close(c.shutdownDone)
		c.log.Info("initiating graceful shutdown", "timeout", c.timeout.String())

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		c.mu.Lock()
		components := make([]Component, len(c.components))
		copy(components, c.components)
		c.mu.Unlock()

		var errs []error
		for i := len(components) - 1; i >= 0; i-- {
			comp := components[i]
			if ctx.Err() != nil {
				c.log.Warn("shutdown timeout exceeded, skipping component", "name", comp.Name())
				errs = append(errs, ctx.Err())
				continue
			}

			c.log.Info("shutting down component", "name", comp.Name())
			if err := comp.Shutdown(ctx); err != nil {
				c.log.Error("component shutdown error", "name", comp.Name(), "error", err)
				errs = append(errs, err)
				continue
			}
			c.log.Info("component shutdown complete", "name", comp.Name())
		}

		c.err = errors.Join(errs...)
		if c.err == nil {
			c.log.Info("all components shut down successfully")
		}
	})
}

// Wait blocks until shutdown is complete.
func (c *Coordinator) Wait() {
	<-c.shutdownDone
}

// Err returns the joined component errors once shutdown has finished.
func (c *Coordinator) Err() error {
	<-c.shutdownDone
	return c.err
}

// ExitCode returns 0 for a clean shutdown and 1 otherwise. It blocks until
// shutdown has finished.
func (c *Coordinator) ExitCode() int {
	if c.Err() != nil {
		return 1
	}
	return 0
}
