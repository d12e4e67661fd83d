package metrics

import (
	"fmt"
	"io"
	"strings"
)

// Format selects the text exposition dialect produced by Registry.Encode.
type Format uint8

const (
	// FormatOpenMetrics is the canonical OpenMetrics text format: `_total`
	// suffixes on counters, `_info` suffixes on info metrics, and a
	// terminating `# EOF` line.
	FormatOpenMetrics Format = iota
	// FormatOpenMetricsForPrometheus is the OpenMetrics format as understood
	// by Prometheus: `_total` / `_info` suffixes are stripped from sample
	// lines, info metrics are declared as gauges, and the `# EOF` terminator
	// is kept.
	FormatOpenMetricsForPrometheus
	// FormatPrometheus is the legacy Prometheus text format: the same
	// stripping and rewriting as FormatOpenMetricsForPrometheus, without the
	// `# EOF` terminator.
	FormatPrometheus
)

// Content types reported for scrape responses and push request bodies.
const (
	openMetricsContentType = "application/openmetrics-text; version=1.0.0; charset=utf-8"
	prometheusContentType  = "text/plain; version=0.0.4; charset=utf-8"
)

// String implements the fmt.Stringer interface.
func (f Format) String() string {
	switch f {
	case FormatOpenMetrics:
		return "open_metrics"
	case FormatOpenMetricsForPrometheus:
		return "open_metrics_for_prometheus"
	case FormatPrometheus:
		return "prometheus"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ContentType returns the HTTP content type advertising the format. Only the
// canonical OpenMetrics format gets the OpenMetrics content type; the
// Prometheus-compatible dialects both advertise the legacy text format.
func (f Format) ContentType() string {
	if f == FormatOpenMetrics {
		return openMetricsContentType
	}
	return prometheusContentType
}

// ParseFormat resolves a format from its configuration name.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "open_metrics", "openmetrics":
		return FormatOpenMetrics, nil
	case "open_metrics_for_prometheus":
		return FormatOpenMetricsForPrometheus, nil
	case "prometheus":
		return FormatPrometheus, nil
	default:
		return 0, fmt.Errorf("metrics: unknown format %q", name)
	}
}

// metricTypeLine is the parsed form of a `# TYPE <name> <kind>` line.
type metricTypeLine struct {
	name string
	kind string
}

// prometheusTranslator is an io.Writer that rewrites a canonical OpenMetrics
// text stream into a Prometheus-compatible dialect on the fly. It is a small
// line-oriented state machine keyed on the last seen TYPE declaration:
// counter samples lose their `_total` suffix, info metrics are re-declared
// as gauges and their samples lose the `_info` suffix, and the `# EOF`
// terminator is dropped when the target dialect has none.
//
// Input may arrive in arbitrary, non-line-aligned chunks. Flush must be
// called after the final write; otherwise a buffered partial last line is
// lost.
type prometheusTranslator struct {
	out      io.Writer
	dropEOF  bool
	lastType *metricTypeLine
	pending  []byte
}

func newPrometheusTranslator(out io.Writer, dropEOF bool) *prometheusTranslator {
	return &prometheusTranslator{out: out, dropEOF: dropEOF}
}

// Write implements the io.Writer interface.
func (t *prometheusTranslator) Write(p []byte) (int, error) {
	written := 0
	for {
		newline := -1
		for i, ch := range p {
			if ch == '\n' {
				newline = i
				break
			}
		}
		if newline < 0 {
			t.pending = append(t.pending, p...)
			written += len(p)
			return written, nil
		}
		t.pending = append(t.pending, p[:newline]...)
		if err := t.handleLine(); err != nil {
			return written, err
		}
		written += newline + 1
		p = p[newline+1:]
	}
}

// Flush translates a buffered partial final line, if any. Idempotent.
func (t *prometheusTranslator) Flush() error {
	if len(t.pending) == 0 {
		return nil
	}
	return t.handleLine()
}

func (t *prometheusTranslator) handleLine() error {
	line := string(t.pending)
	t.pending = t.pending[:0]

	if line == "# EOF" && t.dropEOF {
		return nil
	}
	if typeDef, ok := strings.CutPrefix(line, "# TYPE "); ok {
		name, kind, found := strings.Cut(strings.TrimSpace(typeDef), " ")
		if !found {
			return fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		t.lastType = &metricTypeLine{name: name, kind: kind}
		if kind == "info" {
			// The legacy dialect has no info kind.
			line = "# TYPE " + name + " gauge"
		}
	} else if !strings.HasPrefix(line, "#") && line != "" {
		nameEnd := strings.IndexAny(line, "{ \t")
		if nameEnd < 0 {
			return fmt.Errorf("%w: %q", ErrMalformedLine, line)
		}
		name, rest := line[:nameEnd], line[nameEnd:]
		if last := t.lastType; last != nil {
			switch {
			case last.kind == "counter" && name == last.name+"_total":
				line = last.name + rest
			case last.kind == "info" && name == last.name+"_info":
				line = last.name + rest
			}
		}
	}

	if _, err := io.WriteString(t.out, line); err != nil {
		return err
	}
	_, err := io.WriteString(t.out, "\n")
	return err
}
