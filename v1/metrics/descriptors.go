package metrics

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Descriptor is the static metadata of a single metric: its name within the
// group, kind, optional unit and help text.
type Descriptor struct {
	Name string
	Kind MetricKind
	Unit Unit
	Help string

	owner *GroupDescriptor
}

// fullName resolves the exported metric name through the owning group.
func (d *Descriptor) fullName() string {
	if d.owner == nil {
		panic(fmt.Sprintf("metrics: descriptor %q is not part of a group; pass it to NewGroupDescriptor", d.Name))
	}
	return d.owner.FullName(d)
}

// NewDescriptor creates metric metadata. The name must match
// [_a-z][_a-z0-9]* (validation panics on violation, together with other
// descriptor checks, at group descriptor construction). Help text gets a
// trailing period appended if it lacks one.
func NewDescriptor(name string, kind MetricKind, unit Unit, help string) Descriptor {
	return Descriptor{Name: name, Kind: kind, Unit: unit, Help: help}
}

// GroupDescriptor is the static metadata of a metrics group: the common name
// prefix, the per-metric descriptors, and the code location the group was
// declared at. Locations make duplicate-name registration errors actionable,
// pointing at both conflicting definition sites.
type GroupDescriptor struct {
	StructName string
	Prefix     string
	Module     string
	File       string
	Line       int

	metrics []Descriptor
	byName  map[string]int
}

// NewGroupDescriptor creates group metadata. The prefix may be empty (for
// groups whose metrics carry full names); a non-empty prefix must match
// [_a-z][_a-z0-9]*. Every metric name is validated and must be unique within
// the group. Panics on violations: descriptors are declared statically, so a
// malformed one is a programmer error.
//
// The declaration site (file, line, enclosing module) is captured from the
// caller for use in error messages.
func NewGroupDescriptor(structName, prefix string, metrics ...Descriptor) *GroupDescriptor {
	if prefix != "" {
		assertMetricPrefix(prefix)
	}
	d := &GroupDescriptor{
		StructName: structName,
		Prefix:     prefix,
		metrics:    make([]Descriptor, 0, len(metrics)),
		byName:     make(map[string]int, len(metrics)),
	}
	if _, file, line, ok := runtime.Caller(1); ok {
		d.File = file
		d.Line = line
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		d.Module = info.Main.Path
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			d.Module += "@" + info.Main.Version
		}
	}
	for _, m := range metrics {
		assertMetricName(m.Name)
		if _, dup := d.byName[m.Name]; dup {
			panic(fmt.Sprintf("metrics: duplicate metric %q in group %s", m.Name, structName))
		}
		if m.Help != "" && !strings.HasSuffix(m.Help, ".") {
			m.Help += "."
		}
		m.owner = d
		d.byName[m.Name] = len(d.metrics)
		d.metrics = append(d.metrics, m)
	}
	return d
}

// Metric returns the descriptor of the named metric. Panics if the group
// does not declare it; group implementations look their own metrics up by
// the names they declared, so a miss is a programmer error.
func (d *GroupDescriptor) Metric(name string) *Descriptor {
	i, ok := d.byName[name]
	if !ok {
		panic(fmt.Sprintf("metrics: group %s declares no metric %q", d.StructName, name))
	}
	return &d.metrics[i]
}

// Metrics returns the declared metric descriptors in declaration order.
func (d *GroupDescriptor) Metrics() []Descriptor {
	out := make([]Descriptor, len(d.metrics))
	copy(out, d.metrics)
	return out
}

// FullName returns the exported name of the given metric: the group prefix,
// the metric name, and the unit suffix when the name does not carry it
// already.
func (d *GroupDescriptor) FullName(m *Descriptor) string {
	name := m.Name
	if d.Prefix != "" {
		name = d.Prefix + "_" + name
	}
	if m.Unit != UnitNone && !strings.HasSuffix(name, "_"+string(m.Unit)) {
		name += "_" + string(m.Unit)
	}
	return name
}

// Location renders the declaration site for error messages.
func (d *GroupDescriptor) Location() string {
	if d.File == "" {
		return d.StructName
	}
	return fmt.Sprintf("%s at %s:%d", d.StructName, d.File, d.Line)
}
