package metrics

import "sync/atomic"

// Gauge is an integer, unsigned, float or duration value that can go up or
// down. Logically, a reported gauge value can be treated as valid until the
// next value is reported.
//
// Gauges are cheap to copy: all copies share the same underlying storage.
type Gauge[V Value] struct {
	cell *atomicCell[V]
}

// NewGauge creates a gauge starting at zero.
func NewGauge[V Value]() *Gauge[V] {
	return &Gauge[V]{cell: newAtomicCell[V]()}
}

// Set stores a new value and returns the previous one.
func (g *Gauge[V]) Set(v V) V {
	return g.cell.set(v)
}

// Get returns the current gauge value.
func (g *Gauge[V]) Get() V {
	return g.cell.get()
}

// Inc increases the gauge by one and returns the previous value.
func (g *Gauge[V]) Inc() V {
	return g.cell.add(1)
}

// Dec decreases the gauge by one and returns the previous value.
// Unsigned gauges underflow on Dec below zero; use with care.
func (g *Gauge[V]) Dec() V {
	return g.cell.sub(1)
}

// Add increases the gauge by v and returns the previous value.
func (g *Gauge[V]) Add(v V) V {
	return g.cell.add(v)
}

// Sub decreases the gauge by v and returns the previous value.
func (g *Gauge[V]) Sub(v V) V {
	return g.cell.sub(v)
}

// IncGuard increases the gauge by one and returns a guard that decreases it
// back when Done is called. Useful for tracking in-flight operations:
//
//	defer metrics.inFlight.IncGuard().Done()
func (g *Gauge[V]) IncGuard() *GaugeGuard[V] {
	g.Inc()
	return &GaugeGuard[V]{gauge: g}
}

// Kind implements the Metric interface.
func (g *Gauge[V]) Kind() MetricKind { return KindGauge }

func (g *Gauge[V]) encodeSamples(enc *sampleEncoder) error {
	return enc.writeSample("", nil, g.cell.encoded().String())
}

// GaugeGuard undoes a guarded gauge increment. Done is idempotent; only the
// first call decrements the gauge.
type GaugeGuard[V Value] struct {
	gauge *Gauge[V]
	done  atomic.Bool
}

// Done decreases the guarded gauge by one.
func (g *GaugeGuard[V]) Done() {
	if g.done.CompareAndSwap(false, true) {
		g.gauge.Dec()
	}
}
