package exporter

import (
	"time"

	"github.com/pulseobs/pulse/v1/metrics"
)

// facade identifies which rendering path a self-observation belongs to.
type facade string

const (
	facadeRegistry facade = "registry"
	facadeBridge   facade = "bridge"
)

// exporterMetrics instruments the exporter itself: how long rendering takes
// and how large the produced documents are, per rendering facade.
type exporterMetrics struct {
	scrapeLatency *metrics.Family[facade, *metrics.Histogram[time.Duration]]
	scrapedSize   *metrics.Family[facade, *metrics.Histogram[uint64]]
}

var exporterDescriptor = metrics.NewGroupDescriptor("exporterMetrics", "pulse_exporter",
	metrics.NewDescriptor("scrape_latency", metrics.KindHistogram, metrics.UnitSeconds,
		"Time to render one metrics document"),
	metrics.NewDescriptor("scraped_size", metrics.KindHistogram, metrics.UnitBytes,
		"Size of rendered metrics documents"),
)

func newExporterMetrics() *exporterMetrics {
	return &exporterMetrics{
		scrapeLatency: metrics.NewFamily[facade](func() *metrics.Histogram[time.Duration] {
			return metrics.NewHistogram[time.Duration](metrics.DefaultLatencyBuckets)
		}, metrics.WithLabelNames("facade")),
		scrapedSize: metrics.NewFamily[facade](func() *metrics.Histogram[uint64] {
			return metrics.NewHistogram[uint64](metrics.ExponentialBuckets(1024, 1024*1024, 4))
		}, metrics.WithLabelNames("facade")),
	}
}

func (m *exporterMetrics) Descriptor() *metrics.GroupDescriptor { return exporterDescriptor }

func (m *exporterMetrics) VisitMetrics(v *metrics.Visitor) {
	v.Visit(exporterDescriptor.Metric("scrape_latency"), m.scrapeLatency)
	v.Visit(exporterDescriptor.Metric("scraped_size"), m.scrapedSize)
}

// selfMetrics is registered globally, so applications building their
// registry with metrics.CollectAll expose the exporter's own metrics
// alongside their own once the first document has been rendered.
var selfMetrics = metrics.NewGlobal(newExporterMetrics)

func init() {
	metrics.RegisterGlobal(selfMetrics)
}
