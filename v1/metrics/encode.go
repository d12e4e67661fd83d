package metrics

import (
	"io"
	"strconv"
)

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// metricBlock accumulates the exposition block of one full metric name:
// its metadata and all sample lines contributed under that name, possibly by
// many group family members.
type metricBlock struct {
	name string
	desc *Descriptor
	// Complete sample lines, without trailing newlines.
	lines []string
}

// writeTo renders the block in the canonical (OpenMetrics) text form:
// HELP, TYPE and UNIT metadata followed by sample lines.
func (b *metricBlock) writeTo(w io.Writer) error {
	var header []byte
	if b.desc.Help != "" {
		header = append(header, "# HELP "...)
		header = append(header, b.name...)
		header = append(header, ' ')
		header = append(header, b.desc.Help...)
		header = append(header, '\n')
	}
	header = append(header, "# TYPE "...)
	header = append(header, b.name...)
	header = append(header, ' ')
	header = append(header, b.desc.Kind.String()...)
	header = append(header, '\n')
	if b.desc.Unit != UnitNone {
		header = append(header, "# UNIT "...)
		header = append(header, b.name...)
		header = append(header, ' ')
		header = append(header, string(b.desc.Unit)...)
		header = append(header, '\n')
	}
	if _, err := w.Write(header); err != nil {
		return err
	}
	for _, line := range b.lines {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// visitorSink collects blocks during a registry traversal, coalescing every
// visit of the same full metric name into a single block so the name is
// declared exactly once.
type visitorSink struct {
	blocks []*metricBlock
	byName map[string]*metricBlock
	err    error
}

func newVisitorSink() *visitorSink {
	return &visitorSink{byName: make(map[string]*metricBlock)}
}

func (s *visitorSink) block(d *Descriptor) *metricBlock {
	name := d.fullName()
	if b, ok := s.byName[name]; ok {
		return b
	}
	b := &metricBlock{name: name, desc: d}
	s.byName[name] = b
	s.blocks = append(s.blocks, b)
	return b
}

// sampleEncoder renders the sample lines of one metric into its block. It
// carries the resolved full name and the label pairs accumulated from
// enclosing family scopes.
type sampleEncoder struct {
	block  *metricBlock
	name   string
	labels []LabelPair
}

// withLabels derives an encoder with pairs layered after the labels already
// in scope.
func (e *sampleEncoder) withLabels(pairs []LabelPair) *sampleEncoder {
	merged := make([]LabelPair, 0, len(e.labels)+len(pairs))
	merged = append(merged, e.labels...)
	merged = append(merged, pairs...)
	return &sampleEncoder{block: e.block, name: e.name, labels: merged}
}

// writeSample appends one sample line. The suffix distinguishes derived
// series (`_total`, `_bucket`, `_sum`, `_count`, `_info`); extra holds
// per-sample labels such as a bucket's `le`.
func (e *sampleEncoder) writeSample(suffix string, extra []LabelPair, value string) error {
	out := make([]byte, 0, len(e.name)+len(suffix)+len(value)+24)
	out = append(out, e.name...)
	out = append(out, suffix...)
	if len(e.labels)+len(extra) > 0 {
		out = append(out, '{')
		rendered := renderLabelPairs(e.labels)
		out = append(out, rendered...)
		if len(extra) > 0 {
			if rendered != "" {
				out = append(out, ',')
			}
			out = append(out, renderLabelPairs(extra)...)
		}
		out = append(out, '}')
	}
	out = append(out, ' ')
	out = append(out, value...)
	e.block.lines = append(e.block.lines, string(out))
	return nil
}
