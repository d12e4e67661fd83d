package metrics

import (
	"sort"
	"sync"
)

// Family is a collection of metrics of one kind keyed by a label set value.
// Members are created lazily on first access and are never evicted: a label
// combination, once materialized, maps to the same metric instance for the
// lifetime of the Family.
//
// The underlying map is append-only and grows through a shared reference,
// so arbitrarily nested Get calls from one goroutine and concurrent Get
// calls from many goroutines are both safe and cannot deadlock. If two
// goroutines race to materialize the same labels, exactly one constructed
// instance survives and both observe it.
//
// The label type must either implement LabelSet or be a plain comparable
// value (string, integer, fixed-size array of those) with label names
// supplied out-of-band via WithLabelNames.
type Family[L comparable, M Metric] struct {
	inner *familyInner[L, M]
}

type familyInner[L comparable, M Metric] struct {
	entries    sync.Map // L -> M
	construct  func() M
	labelNames []string
	kind       MetricKind
}

// FamilyOption configures a Family or GroupFamily.
type FamilyOption func(*familyOptions)

type familyOptions struct {
	labelNames []string
}

// WithLabelNames supplies label names for families keyed by plain values
// rather than self-describing label sets. A single name matches a scalar
// label value; multiple names match a fixed-size array positionally.
//
// Panics if any name is not a valid label name.
func WithLabelNames(names ...string) FamilyOption {
	for _, name := range names {
		assertLabelName(name)
	}
	return func(o *familyOptions) {
		o.labelNames = names
	}
}

// NewFamily creates a family whose members are built by construct, e.g.
//
//	latencies := metrics.NewFamily[string](func() *metrics.Histogram[time.Duration] {
//		return metrics.NewHistogram[time.Duration](metrics.DefaultLatencyBuckets)
//	}, metrics.WithLabelNames("method"))
func NewFamily[L comparable, M Metric](construct func() M, opts ...FamilyOption) *Family[L, M] {
	var options familyOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Family[L, M]{
		inner: &familyInner[L, M]{
			construct:  construct,
			labelNames: options.labelNames,
			// The prototype is discarded; it only pins down the kind of
			// members so that empty families still declare a TYPE.
			kind: construct().Kind(),
		},
	}
}

// Get returns the member for the given labels, creating it on first access.
// Repeated access with equal labels returns the same instance.
func (f *Family[L, M]) Get(labels L) M {
	if existing, ok := f.inner.entries.Load(labels); ok {
		return existing.(M)
	}
	created := f.inner.construct()
	actual, _ := f.inner.entries.LoadOrStore(labels, created)
	return actual.(M)
}

// Contains checks whether a member with the given labels was materialized.
// Mostly useful for testing.
func (f *Family[L, M]) Contains(labels L) bool {
	_, ok := f.inner.entries.Load(labels)
	return ok
}

// TryGet returns the member for the given labels if it was materialized
// previously. Mostly useful for testing; use Get for reporting.
func (f *Family[L, M]) TryGet(labels L) (M, bool) {
	existing, ok := f.inner.entries.Load(labels)
	if !ok {
		var zero M
		return zero, false
	}
	return existing.(M), true
}

// Entries returns a snapshot of all materialized members keyed by labels.
// This is O(n) and mostly useful for testing.
func (f *Family[L, M]) Entries() map[L]M {
	snapshot := make(map[L]M)
	f.inner.entries.Range(func(key, value any) bool {
		snapshot[key.(L)] = value.(M)
		return true
	})
	return snapshot
}

// Kind implements the Metric interface; a family reports the kind of its
// members.
func (f *Family[L, M]) Kind() MetricKind { return f.inner.kind }

func (f *Family[L, M]) encodeSamples(enc *sampleEncoder) error {
	type entry struct {
		rendered string
		pairs    []LabelPair
		metric   M
	}
	var entries []entry
	var rangeErr error
	f.inner.entries.Range(func(key, value any) bool {
		pairs, err := labelPairsFor(key, f.inner.labelNames)
		if err != nil {
			rangeErr = err
			return false
		}
		entries = append(entries, entry{
			rendered: renderLabelPairs(pairs),
			pairs:    pairs,
			metric:   value.(M),
		})
		return true
	})
	if rangeErr != nil {
		return rangeErr
	}
	// sync.Map iteration order is unspecified; sort for stable output.
	sort.Slice(entries, func(i, j int) bool { return entries[i].rendered < entries[j].rendered })

	for _, e := range entries {
		if err := e.metric.encodeSamples(enc.withLabels(e.pairs)); err != nil {
			return err
		}
	}
	return nil
}
