package metrics

import "sync/atomic"

// Info is a write-once metric exposing static key-value information, such as
// build or deployment metadata, as labels on a constant sample of 1. In the
// OpenMetrics text format it is emitted as an info block; the legacy
// Prometheus dialects render it as a gauge.
type Info[L LabelSet] struct {
	value *atomic.Pointer[L]
}

// NewInfo creates an unset info metric.
func NewInfo[L LabelSet]() *Info[L] {
	return &Info[L]{value: &atomic.Pointer[L]{}}
}

// Set stores the info labels. Only the first call succeeds; subsequent calls
// return ErrInfoAlreadySet and leave the stored labels unchanged.
func (i *Info[L]) Set(labels L) error {
	if !i.value.CompareAndSwap(nil, &labels) {
		return ErrInfoAlreadySet
	}
	return nil
}

// Get returns the stored labels, or ok = false if Set was never called.
func (i *Info[L]) Get() (labels L, ok bool) {
	stored := i.value.Load()
	if stored == nil {
		return labels, false
	}
	return *stored, true
}

// Kind implements the Metric interface.
func (i *Info[L]) Kind() MetricKind { return KindInfo }

func (i *Info[L]) encodeSamples(enc *sampleEncoder) error {
	stored := i.value.Load()
	if stored == nil {
		return nil
	}
	return enc.writeSample("_info", (*stored).MetricLabels(), "1")
}
