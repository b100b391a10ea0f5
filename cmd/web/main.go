// Package main provides the entry point for the sweetcorn web host.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/alkmst-xyz/sweetcorn-web/internal/shutdown"
	"github.com/alkmst-xyz/sweetcorn-web/internal/telemetry"
	"github.com/alkmst-xyz/sweetcorn-web/pkg/config"
	"github.com/alkmst-xyz/sweetcorn-web/pkg/logger"
	"github.com/alkmst-xyz/sweetcorn-web/web/api"
	"github.com/alkmst-xyz/sweetcorn-web/web/health"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load(os.Getenv(config.FileEnv))
	if err != nil {
		logger.Default().Error("failed to load configuration", "error", err)
		return 1
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Default().Error("invalid log level", "error", err)
		return 1
	}
	log := logger.New(level, cfg.Log.JSON())

	ctx := context.Background()

	rt, err := telemetry.Setup(ctx, cfg.Telemetry, health.WebVersion, log)
	if err != nil {
		log.Error("failed to set up telemetry", "error", err)
		return 1
	}

	base, err := cfg.APIBase()
	if err != nil {
		log.Error("failed to resolve API base URL", "error", err)
		return 1
	}
	client := api.NewClient(base, api.WithFetcher(&http.Client{
		Timeout:   cfg.Server.RequestTimeout,
		Transport: rt.WrapTransport(nil),
	}))

	handler, err := newRouter(&server{
		client: client,
		health: health.NewChecker(client, health.WebVersion, 5*time.Second),
		log:    log,
	})
	if err != nil {
		log.Error("failed to build router", "error", err)
		return 1
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           rt.WrapHandler(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Telemetry registers first so it flushes after the server has drained.
	coordinator := shutdown.NewCoordinator(
		shutdown.WithTimeout(cfg.Server.ShutdownTimeout),
		shutdown.WithLogger(log),
	)
	coordinator.Register(shutdown.NewFuncComponent("telemetry", rt.Shutdown))
	coordinator.Register(shutdown.NewHTTPServerComponent("web", srv))

	serveCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	go func() {
		log.Info("starting web host",
			"addr", srv.Addr,
			"api_base", client.BaseURL().String(),
			"telemetry", rt.Enabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			cancel(err)
		}
	}()

	coordinator.WaitForSignal(serveCtx)

	if cause := context.Cause(serveCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return 1
	}
	if code := coordinator.ExitCode(); code != 0 {
		return code
	}
	log.Info("web host stopped")
	return 0
}
