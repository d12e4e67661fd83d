package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// FXModule is an fx.Module that provides the shared *zap.Logger.
//
// The module:
//  1. Provides the NewLogger factory to the dependency injection container
//  2. Invokes RegisterLoggerLifecycle so buffered entries are flushed on
//     shutdown
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    // other modules...
//	)
//
// Dependencies required by this module:
//   - a logger.Config instance
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle flushes the logger during application shutdown.
func RegisterLoggerLifecycle(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync on stderr fails on some platforms; losing the very last
			// buffered entries on shutdown is acceptable.
			_ = log.Sync()
			return nil
		},
	})
}
