package exporter

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pulseobs/pulse/v1/metrics"
)

// Exporter binds a metrics registry to an export format and renders scrape
// documents on demand. One Exporter can back both a pull server and a push
// loop at the same time; rendering is safe for concurrent use.
type Exporter struct {
	registry        *metrics.Registry
	format          metrics.Format
	log             *zap.Logger
	legacy          prometheus.Gatherer
	shutdownTimeout time.Duration
	failureLog      *failureLogLimiter
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithFormat selects the text dialect served to scrapers. The default is
// FormatOpenMetricsForPrometheus, which stock Prometheus understands.
func WithFormat(format metrics.Format) Option {
	return func(e *Exporter) { e.format = format }
}

// WithLogger supplies the logger used for per-request and push failures.
// Without it the exporter is silent.
func WithLogger(log *zap.Logger) Option {
	return func(e *Exporter) { e.log = log }
}

// WithLegacyGatherer attaches a prometheus/client_golang gatherer whose
// rendered text is concatenated ahead of the registry's own output on every
// export path. Intended for migration periods when part of the codebase
// still reports through the legacy facade.
func WithLegacyGatherer(gatherer prometheus.Gatherer) Option {
	return func(e *Exporter) { e.legacy = gatherer }
}

// WithShutdownTimeout bounds the connection-draining phase of a graceful
// shutdown.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(e *Exporter) { e.shutdownTimeout = timeout }
}

// New creates an exporter for the given registry.
func New(registry *metrics.Registry, opts ...Option) *Exporter {
	e := &Exporter{
		registry:        registry,
		format:          metrics.FormatOpenMetricsForPrometheus,
		log:             zap.NewNop(),
		shutdownTimeout: DefaultShutdownTimeout,
		failureLog:      &failureLogLimiter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	descriptors := registry.Descriptors()
	e.log.Debug("created metrics exporter",
		zap.Int("groups", len(descriptors.Groups())),
		zap.Int("metrics", descriptors.MetricCount()),
	)
	return e
}

// Format returns the configured export format.
func (e *Exporter) Format() metrics.Format { return e.format }

// render writes the full metrics document: the legacy facade's text first
// (if configured), then the registry's own encoding.
func (e *Exporter) render(w io.Writer) error {
	if e.legacy != nil {
		observer := selfMetrics.Get().scrapeLatency.Get(facadeBridge).Start()
		text, err := renderLegacy(e.legacy)
		if err != nil {
			return err
		}
		observer.Observe()
		selfMetrics.Get().scrapedSize.Get(facadeBridge).Observe(uint64(len(text)))
		if _, err := w.Write(text); err != nil {
			return err
		}
	}

	observer := selfMetrics.Get().scrapeLatency.Get(facadeRegistry).Start()
	counting := &countingWriter{inner: w}
	if err := e.registry.Encode(counting, e.format); err != nil {
		return err
	}
	observer.Observe()
	selfMetrics.Get().scrapedSize.Get(facadeRegistry).Observe(counting.written)
	return nil
}

// Handler returns the HTTP handler backing the scrape endpoint. It answers
// GET requests on any path; other methods get 405.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "only GET requests are supported", http.StatusMethodNotAllowed)
			return
		}
		// The document is buffered so that an encoding failure can still
		// yield a clean 500 instead of a truncated body.
		var buf bytes.Buffer
		if err := e.render(&buf); err != nil {
			e.log.Error("rendering metrics for scrape failed", zap.Error(err))
			http.Error(w, "rendering metrics failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", e.format.ContentType())
		if _, err := w.Write(buf.Bytes()); err != nil {
			e.log.Warn("writing scrape response failed", zap.Error(err))
		}
	})
}

type countingWriter struct {
	inner   io.Writer
	written uint64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.inner.Write(p)
	w.written += uint64(n)
	return n, err
}
