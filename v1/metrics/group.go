package metrics

import (
	"reflect"
	"sort"
	"sync"
)

// Metric is the closed set of metric primitives this package knows how to
// encode: Counter, Gauge, Histogram, Info and their families. Application
// code cannot implement Metric; it composes the provided primitives into
// groups instead.
type Metric interface {
	// Kind reports the metric kind declared to Prometheus.
	Kind() MetricKind

	encodeSamples(enc *sampleEncoder) error
}

// Group is implemented by metrics group structs. A group pairs static
// metadata (Descriptor) with the live metric instances it reports through
// VisitMetrics.
type Group interface {
	Descriptor() *GroupDescriptor
	VisitMetrics(v *Visitor)
}

// Visitor receives the metrics of a group during encoding. Groups call Visit
// once per metric field; group families re-visit their members with the
// family labels layered onto every emitted sample.
type Visitor struct {
	sink  *visitorSink
	outer []LabelPair
}

// Visit reports one metric under its descriptor. Metrics visited under the
// same full name are coalesced into a single exposition block, so the many
// members of a group family share one TYPE/HELP/UNIT header. A nil metric is
// skipped.
func (v *Visitor) Visit(d *Descriptor, m Metric) {
	if v.sink.err != nil || isNilValue(m) {
		return
	}
	block := v.sink.block(d)
	enc := &sampleEncoder{block: block, name: d.fullName(), labels: v.outer}
	if err := m.encodeSamples(enc); err != nil {
		v.sink.err = err
	}
}

func (v *Visitor) fail(err error) {
	if v.sink.err == nil {
		v.sink.err = err
	}
}

// isNilValue also catches a typed nil pointer wrapped in the interface.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	value := reflect.ValueOf(v)
	switch value.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return value.IsNil()
	default:
		return false
	}
}

// withOuter derives a visitor that layers pairs after the labels already in
// scope. Outer scopes come first, matching the nesting order of families.
func (v *Visitor) withOuter(pairs []LabelPair) *Visitor {
	merged := make([]LabelPair, 0, len(v.outer)+len(pairs))
	merged = append(merged, v.outer...)
	merged = append(merged, pairs...)
	return &Visitor{sink: v.sink, outer: merged}
}

// GroupFamily is a label-keyed collection of whole metric groups. Every
// member shares the group's descriptor, and the family labels are composed
// into each emitted sample's label set, ahead of any labels the member's own
// metrics carry. Like Family, members are created lazily and never evicted.
type GroupFamily[L comparable, G Group] struct {
	inner *groupFamilyInner[L, G]
}

type groupFamilyInner[L comparable, G Group] struct {
	entries    sync.Map // L -> G
	construct  func() G
	labelNames []string
	descriptor *GroupDescriptor
}

// NewGroupFamily creates a group family whose members are built by
// construct. Label handling follows the same rules as NewFamily.
func NewGroupFamily[L comparable, G Group](construct func() G, opts ...FamilyOption) *GroupFamily[L, G] {
	var options familyOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &GroupFamily[L, G]{
		inner: &groupFamilyInner[L, G]{
			construct:  construct,
			labelNames: options.labelNames,
			descriptor: construct().Descriptor(),
		},
	}
}

// Get returns the member group for the given labels, creating it on first
// access. Repeated access with equal labels returns the same instance.
func (f *GroupFamily[L, G]) Get(labels L) G {
	if existing, ok := f.inner.entries.Load(labels); ok {
		return existing.(G)
	}
	created := f.inner.construct()
	actual, _ := f.inner.entries.LoadOrStore(labels, created)
	return actual.(G)
}

// TryGet returns the member for the given labels if it was materialized
// previously.
func (f *GroupFamily[L, G]) TryGet(labels L) (G, bool) {
	existing, ok := f.inner.entries.Load(labels)
	if !ok {
		var zero G
		return zero, false
	}
	return existing.(G), true
}

// Descriptor implements the Group interface; a family reports the shared
// descriptor of its members.
func (f *GroupFamily[L, G]) Descriptor() *GroupDescriptor { return f.inner.descriptor }

// VisitMetrics implements the Group interface by visiting every member with
// the family labels in scope. Members are traversed in label order so output
// is deterministic.
func (f *GroupFamily[L, G]) VisitMetrics(v *Visitor) {
	type entry struct {
		rendered string
		pairs    []LabelPair
		group    G
	}
	var entries []entry
	f.inner.entries.Range(func(key, value any) bool {
		pairs, err := labelPairsFor(key, f.inner.labelNames)
		if err != nil {
			v.fail(err)
			return false
		}
		entries = append(entries, entry{
			rendered: renderLabelPairs(pairs),
			pairs:    pairs,
			group:    value.(G),
		})
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].rendered < entries[j].rendered })

	for _, e := range entries {
		e.group.VisitMetrics(v.withOuter(e.pairs))
	}
}
