// Package metrics provides Prometheus-compatible metrics instrumentation
// for Go applications and libraries.
//
// The package is the in-process half of the pulse observability toolkit:
// application code declares counters, gauges, histograms and informational
// metrics grouped into typed structs, a Registry collects all declared
// groups, and the Registry encodes the current state into one of several
// Prometheus-compatible text exposition formats on demand. Serving the
// encoded text over HTTP (pull) or pushing it to a gateway is handled by
// the sibling exporter package.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Group interface: contract implemented by every metrics group struct
//   - Metric interface: closed set of metric primitives (Counter, Gauge,
//     Histogram, Info and their families)
//   - Registry struct: owns registered groups and performs text encoding
//   - New* constructors: return concrete metric types
//
// Core Features:
//   - Counters, integer/float/duration gauges, bucketed histograms and
//     write-once info metrics, all safe for concurrent use
//   - Families: label-keyed collections of metrics of one kind, built
//     lazily per label combination without locking readers out
//   - Group families: label scopes around whole metric groups, composed
//     into the leaf metric's label set during encoding
//   - Declarative bucket generation (explicit, linear, exponential and
//     scaled sequences, optionally mirrored around zero and offset)
//   - Duplicate metric name detection at registration time, reported with
//     both definition sites
//   - Streaming translation between the OpenMetrics text format and
//     Prometheus-legacy-compatible dialects
//
// # Defining Metrics
//
// A metrics group is a plain struct whose fields are metric primitives. The
// group describes itself with a GroupDescriptor and reports its fields
// through VisitMetrics:
//
//	type appMetrics struct {
//		requests *metrics.Counter
//		cacheUse *metrics.Gauge[int64]
//		latency  *metrics.Histogram[time.Duration]
//	}
//
//	var appDescriptor = metrics.NewGroupDescriptor("appMetrics", "my_app",
//		metrics.NewDescriptor("requests", metrics.KindCounter, metrics.UnitNone, "Total requests served"),
//		metrics.NewDescriptor("cache_use", metrics.KindGauge, metrics.UnitBytes, "Cache memory use"),
//		metrics.NewDescriptor("latency", metrics.KindHistogram, metrics.UnitSeconds, "Request latency"),
//	)
//
//	func newAppMetrics() *appMetrics {
//		return &appMetrics{
//			requests: metrics.NewCounter(),
//			cacheUse: metrics.NewGauge[int64](),
//			latency:  metrics.NewHistogram[time.Duration](metrics.DefaultLatencyBuckets),
//		}
//	}
//
//	func (m *appMetrics) Descriptor() *metrics.GroupDescriptor { return appDescriptor }
//
//	func (m *appMetrics) VisitMetrics(v *metrics.Visitor) {
//		v.Visit(appDescriptor.Metric("requests"), m.requests)
//		v.Visit(appDescriptor.Metric("cache_use"), m.cacheUse)
//		v.Visit(appDescriptor.Metric("latency"), m.latency)
//	}
//
// # Registration and Encoding
//
//	registry := metrics.NewRegistry()
//	app := newAppMetrics()
//	registry.MustRegister(app)
//
//	app.requests.Inc()
//
//	var buf bytes.Buffer
//	err := registry.Encode(&buf, metrics.FormatOpenMetrics)
//
// Libraries that should contribute metrics without the application
// enumerating them can register a Global or Collector with RegisterGlobal
// (typically from an init function); the application then builds its
// registry with metrics.CollectAll().
//
// # Thread Safety
//
// All metric primitives and families are safe for concurrent use. A Registry
// is mutated only during startup (registration) and is safe to share across
// goroutines for encoding afterwards.
package metrics
