package metrics

import (
	"math"
	"sync/atomic"
	"time"
)

// Histogram observes the distribution of a value across configured buckets.
// Bucket boundaries are fixed at construction; observations are transient
// (unlike gauge values, they describe a distribution rather than a level).
//
// Histograms are cheap to copy: all copies share the same underlying storage.
type Histogram[V Value] struct {
	state *histogramState
	kind  valueKind
}

type histogramState struct {
	bounds  []float64
	buckets []atomic.Uint64
	count   atomic.Uint64
	sumBits atomic.Uint64
}

// NewHistogram creates a histogram with the boundaries realized from the
// provided bucket specification. Panics if the specification does not
// produce a strictly increasing boundary sequence.
func NewHistogram[V Value](buckets Buckets) *Histogram[V] {
	bounds := buckets.boundaries()
	return &Histogram[V]{
		state: &histogramState{
			bounds:  bounds,
			buckets: make([]atomic.Uint64, len(bounds)),
		},
		kind: valueKindOf[V](),
	}
}

// Observe records a single observation.
func (h *Histogram[V]) Observe(v V) {
	h.observe(asSample(h.kind, v))
}

func (h *Histogram[V]) observe(sample float64) {
	s := h.state
	for i, bound := range s.bounds {
		if sample <= bound {
			s.buckets[i].Add(1)
			break
		}
	}
	s.count.Add(1)
	for {
		old := s.sumBits.Load()
		next := math.Float64bits(math.Float64frombits(old) + sample)
		if s.sumBits.CompareAndSwap(old, next) {
			return
		}
	}
}

// Start begins a latency observation. Call Observe on the returned observer
// when the measured operation finishes. Intended for duration histograms.
func (h *Histogram[V]) Start() *LatencyObserver[V] {
	return &LatencyObserver[V]{start: time.Now(), histogram: h}
}

// Sum returns the sum of all observed values.
func (h *Histogram[V]) Sum() float64 {
	return math.Float64frombits(h.state.sumBits.Load())
}

// Count returns the total number of observations.
func (h *Histogram[V]) Count() uint64 {
	return h.state.count.Load()
}

// Kind implements the Metric interface.
func (h *Histogram[V]) Kind() MetricKind { return KindHistogram }

func (h *Histogram[V]) encodeSamples(enc *sampleEncoder) error {
	s := h.state
	var cumulative uint64
	for i, bound := range s.bounds {
		cumulative += s.buckets[i].Load()
		le := LabelPair{Name: "le", Value: formatFloat(bound)}
		if err := enc.writeSample("_bucket", []LabelPair{le}, formatUint(cumulative)); err != nil {
			return err
		}
	}
	// observe bumps the bucket before the count, so a concurrent observation
	// can leave the loaded count behind the bucket sum read above. The +Inf
	// bucket must stay >= every bounded bucket for the cumulative series to
	// parse, so clamp it to the bucket sum.
	count := s.count.Load()
	if count < cumulative {
		count = cumulative
	}
	le := LabelPair{Name: "le", Value: "+Inf"}
	if err := enc.writeSample("_bucket", []LabelPair{le}, formatUint(count)); err != nil {
		return err
	}
	if err := enc.writeSample("_sum", nil, formatFloat(h.Sum())); err != nil {
		return err
	}
	return enc.writeSample("_count", nil, formatUint(count))
}

// LatencyObserver records the time passed since it was created into the
// histogram it was started from.
type LatencyObserver[V Value] struct {
	start     time.Time
	histogram *Histogram[V]
}

// Observe records and returns the elapsed time since the observer was
// created.
func (o *LatencyObserver[V]) Observe() time.Duration {
	elapsed := time.Since(o.start)
	o.histogram.observe(elapsed.Seconds())
	return elapsed
}
