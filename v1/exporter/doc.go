// Package exporter serves the text rendering of a metrics.Registry to
// Prometheus-compatible consumers, either by exposing a pull-based HTTP
// scrape endpoint or by periodically pushing the document to a push
// gateway.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Exporter struct: binds a Registry to an export format and renders
//     scrape documents on demand
//   - Server struct: HTTP pull server with two-phase graceful shutdown
//     (stop accepting, then drain open connections)
//   - PushToGateway: long-running push loop with rate-limited failure
//     logging
//   - LegacyGatherer bridge: optional concatenation of metrics collected
//     through the prometheus/client_golang facade
//
// # Pull Endpoint
//
//	registry := metrics.CollectAll()
//	exp := exporter.New(registry, exporter.WithLogger(log))
//	server, err := exp.Bind("0.0.0.0:3312")
//	if err != nil {
//	    return err
//	}
//	// Start blocks until ctx is canceled and every connection has closed.
//	err = server.Start(ctx)
//
// The endpoint answers GET requests on any path with the current metrics
// document and the format-appropriate content type.
//
// # Push Gateway
//
//	exp := exporter.New(registry)
//	exp.PushToGateway(ctx, "http://gateway:9091/metrics/job/app", 10*time.Second)
//
// The loop pushes every interval and once more on shutdown. Push failures
// are logged (rate-limited) and never stop the loop.
package exporter
