package exporter

import (
	"bytes"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

// NewRuntimeGatherer builds a legacy-facade registry preloaded with the
// standard Go runtime, process and build-info collectors, optionally
// labeling every series with the service name. Pass the result to
// WithLegacyGatherer to expose runtime health next to application metrics.
func NewRuntimeGatherer(serviceName string) prometheus.Gatherer {
	registry := prometheus.NewRegistry()
	registerer := prometheus.Registerer(registry)
	if serviceName != "" {
		registerer = prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, registry)
	}
	registerer.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	return registry
}

// renderLegacy renders everything collected through a prometheus/client_golang
// gatherer into the legacy text format. Blank lines are stripped so the text
// can be concatenated ahead of an OpenMetrics-derived document; Prometheus
// rejects empty lines when parsing the latter.
func renderLegacy(gatherer prometheus.Gatherer) ([]byte, error) {
	families, err := gatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("exporter: gathering legacy metrics: %w", err)
	}
	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return nil, fmt.Errorf("exporter: encoding legacy metrics: %w", err)
		}
	}
	return stripBlankLines(buf.Bytes()), nil
}

func stripBlankLines(text []byte) []byte {
	out := text[:0]
	for len(text) > 0 {
		lineEnd := bytes.IndexByte(text, '\n')
		var line []byte
		if lineEnd < 0 {
			line, text = text, nil
		} else {
			line, text = text[:lineEnd+1], text[lineEnd+1:]
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		out = append(out, line...)
	}
	return out
}
