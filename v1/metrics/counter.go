package metrics

import "sync/atomic"

// Counter is a monotonically increasing metric. Counters must never be
// decremented; use a Gauge for values that can go down.
//
// Counters are cheap to copy: all copies share the same underlying storage.
type Counter struct {
	value *atomic.Uint64
}

// NewCounter creates a counter starting at zero.
func NewCounter() *Counter {
	return &Counter{value: new(atomic.Uint64)}
}

// Inc increases the counter by one and returns the new value.
func (c *Counter) Inc() uint64 {
	return c.value.Add(1)
}

// Add increases the counter by delta and returns the new value.
func (c *Counter) Add(delta uint64) uint64 {
	return c.value.Add(delta)
}

// Get returns the current counter value.
func (c *Counter) Get() uint64 {
	return c.value.Load()
}

// Kind implements the Metric interface.
func (c *Counter) Kind() MetricKind { return KindCounter }

func (c *Counter) encodeSamples(enc *sampleEncoder) error {
	return enc.writeSample("_total", nil, formatUint(c.Get()))
}

// FloatCounter is a monotonically increasing floating-point metric, for
// counted quantities that are not integral (seconds of CPU time, dollars).
//
// FloatCounters are cheap to copy: all copies share the same underlying
// storage.
type FloatCounter struct {
	cell *atomicCell[float64]
}

// NewFloatCounter creates a float counter starting at zero.
func NewFloatCounter() *FloatCounter {
	return &FloatCounter{cell: newAtomicCell[float64]()}
}

// Inc increases the counter by one and returns the new value.
func (c *FloatCounter) Inc() float64 {
	return c.Add(1)
}

// Add increases the counter by delta and returns the new value. Panics if
// delta is negative: a decreasing counter corrupts rate calculations
// downstream, so it is treated as a programmer error.
func (c *FloatCounter) Add(delta float64) float64 {
	if delta < 0 {
		panic("metrics: float counter cannot decrease")
	}
	return c.cell.add(delta) + delta
}

// Get returns the current counter value.
func (c *FloatCounter) Get() float64 {
	return c.cell.get()
}

// Kind implements the Metric interface.
func (c *FloatCounter) Kind() MetricKind { return KindCounter }

func (c *FloatCounter) encodeSamples(enc *sampleEncoder) error {
	return enc.writeSample("_total", nil, formatFloat(c.Get()))
}
