package metrics

import (
	"fmt"
	"io"
)

// RegisteredDescriptors indexes the metadata of every metric registered in a
// Registry by its fully-qualified exported name. It backs duplicate-name
// detection and is available for introspection.
type RegisteredDescriptors struct {
	byName map[string]*Descriptor
	groups []*GroupDescriptor
}

func newRegisteredDescriptors() *RegisteredDescriptors {
	return &RegisteredDescriptors{byName: make(map[string]*Descriptor)}
}

// Metric returns the descriptor registered under the given full name.
func (d *RegisteredDescriptors) Metric(fullName string) (*Descriptor, bool) {
	m, ok := d.byName[fullName]
	return m, ok
}

// Groups returns the descriptors of all registered groups in registration
// order.
func (d *RegisteredDescriptors) Groups() []*GroupDescriptor {
	out := make([]*GroupDescriptor, len(d.groups))
	copy(out, d.groups)
	return out
}

// MetricCount returns the number of registered metrics.
func (d *RegisteredDescriptors) MetricCount() int { return len(d.byName) }

func (d *RegisteredDescriptors) mustAdd(group *GroupDescriptor) {
	for i := range group.metrics {
		m := &group.metrics[i]
		fullName := group.FullName(m)
		if existing, ok := d.byName[fullName]; ok {
			panic(fmt.Sprintf(
				"metrics: registering metric %q (field %q of %s) failed: the name is taken by field %q of %s",
				fullName, m.Name, group.Location(), existing.Name, existing.owner.Location(),
			))
		}
		d.byName[fullName] = m
	}
	d.groups = append(d.groups, group)
}

// Registry owns registered metric groups and renders their current state as
// text. It is populated during application startup and is read-only
// afterwards; Encode may be called concurrently once registration is done.
type Registry struct {
	descriptors *RegisteredDescriptors
	groups      []Group
}

// NewRegistry creates an empty registry. Most applications want
// CollectAll instead, which also picks up groups registered by libraries.
func NewRegistry() *Registry {
	return &Registry{descriptors: newRegisteredDescriptors()}
}

// MustRegister adds groups to the registry. This covers all registration
// styles: plain groups are encoded on every scrape from registration on,
// Global values only once first touched, and Collector values by invoking
// their callback on each scrape.
//
// Panics if any metric's fully-qualified name is already registered; the
// message names both definition sites. A name collision means two parts of
// the application would silently mix their samples, so it is treated as a
// fatal configuration error rather than a recoverable one.
func (r *Registry) MustRegister(groups ...Group) {
	for _, group := range groups {
		r.descriptors.mustAdd(group.Descriptor())
		r.groups = append(r.groups, group)
	}
}

// Descriptors exposes the metadata of everything registered so far.
func (r *Registry) Descriptors() *RegisteredDescriptors {
	return r.descriptors
}

// Encode renders the current state of all registered metrics into w using
// the given format. The canonical OpenMetrics rendering streams through a
// dialect translator for the Prometheus-compatible formats, so no full
// intermediate document is buffered.
func (r *Registry) Encode(w io.Writer, format Format) error {
	sink := newVisitorSink()
	visitor := &Visitor{sink: sink}
	for _, group := range r.groups {
		group.VisitMetrics(visitor)
		if sink.err != nil {
			return sink.err
		}
	}

	out := w
	var translator *prometheusTranslator
	if format != FormatOpenMetrics {
		translator = newPrometheusTranslator(w, format == FormatPrometheus)
		out = translator
	}
	for _, block := range sink.blocks {
		if err := block.writeTo(out); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(out, "# EOF\n"); err != nil {
		return err
	}
	if translator != nil {
		return translator.Flush()
	}
	return nil
}
