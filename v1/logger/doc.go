// Package logger configures the zap logger shared by the pulse packages.
//
// It exists so that applications get one consistently configured logger
// (JSON encoding, ISO8601 timestamps, service and pid fields) instead of
// every package building its own. The exporter consumes the produced
// *zap.Logger directly; nothing in this package is required for
// instrumentation-only use of the metrics package.
//
// Usage:
//
//	log, err := logger.NewLogger(logger.Config{ServiceName: "my-app"})
//
// or through fx:
//
//	app := fx.New(
//	    logger.FXModule,
//	    fx.Provide(func() logger.Config { return loadLoggerConfig() }),
//	)
package logger
