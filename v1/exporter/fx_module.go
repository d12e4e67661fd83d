package exporter

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pulseobs/pulse/v1/metrics"
)

// FXModule is an fx.Module that provides and runs the metrics exporter.
// This module registers the exporter with the Fx dependency injection
// framework and ties the scrape endpoint (and, when configured, the
// push-gateway loop) to the application lifecycle.
//
// Usage:
//
//	app := fx.New(
//	    exporter.FXModule,
//	    fx.Provide(
//	        metrics.CollectAll,
//	        func() exporter.Config { return loadExporterConfig() },
//	    ),
//	)
//
// Dependencies required by this module:
//   - an exporter.Config instance
//   - a *metrics.Registry instance
//   - optionally a *zap.Logger and a prometheus.Gatherer (legacy bridge)
var FXModule = fx.Module("exporter",
	fx.Provide(
		NewWithDI,
	),
	fx.Invoke(RegisterExporterLifecycle),
)

// Params groups the dependencies needed to create an Exporter.
type Params struct {
	fx.In

	Config   Config
	Registry *metrics.Registry
	Logger   *zap.Logger         `optional:"true"`
	Gatherer prometheus.Gatherer `optional:"true"`
}

// NewWithDI creates an exporter from injected dependencies.
func NewWithDI(params Params) (*Exporter, error) {
	cfg := params.Config.withDefaults()
	format, err := metrics.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithFormat(format),
		WithShutdownTimeout(cfg.ShutdownTimeout),
	}
	if params.Logger != nil {
		opts = append(opts, WithLogger(params.Logger))
	}
	if params.Gatherer != nil {
		opts = append(opts, WithLegacyGatherer(params.Gatherer))
	}
	return New(params.Registry, opts...), nil
}

// LifecycleParams groups the dependencies needed to run the exporter.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Exporter  *Exporter
	Config    Config
}

// RegisterExporterLifecycle binds the exporter to the fx lifecycle:
//
//  1. On application start: binds the scrape endpoint (failing startup if
//     the address is unavailable) and launches the serve loop, plus the
//     push-gateway loop when a gateway URL is configured.
//  2. On application stop: signals both loops to shut down and waits for
//     the server to drain its connections.
func RegisterExporterLifecycle(params LifecycleParams) {
	cfg := params.Config.withDefaults()

	var cancel context.CancelFunc
	serverDone := make(chan error, 1)
	var pushDone chan struct{}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			server, err := params.Exporter.Bind(cfg.ListenAddr)
			if err != nil {
				return err
			}
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			go func() {
				serverDone <- server.Start(runCtx)
			}()
			if cfg.PushGatewayURL != "" {
				pushDone = make(chan struct{})
				go func() {
					defer close(pushDone)
					params.Exporter.PushToGateway(runCtx, cfg.PushGatewayURL, cfg.PushInterval)
				}()
			}
			params.Exporter.log.Info("metrics exporter started",
				zap.String("addr", server.LocalAddr().String()),
				zap.String("format", params.Exporter.Format().String()),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel == nil {
				return nil
			}
			cancel()
			if pushDone != nil {
				<-pushDone
			}
			select {
			case err := <-serverDone:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
