package metrics

import (
	"sync"
	"sync/atomic"
)

// Global is a lazily initialized metrics group intended for package-level
// variables in libraries. The wrapped group is constructed on first use and
// is exported only once instrumentation code has actually touched it, so a
// library dependency that is linked in but never exercised contributes no
// output lines.
//
//	var connMetrics = metrics.NewGlobal(newConnMetrics)
//
//	func init() { metrics.RegisterGlobal(connMetrics) }
//
//	func onConnect() { connMetrics.Get().active.Inc() }
type Global[G Group] struct {
	construct func() G
	once      sync.Once
	instance  G
	touched   atomic.Bool
}

// NewGlobal creates a lazy group built by construct on first access.
func NewGlobal[G Group](construct func() G) *Global[G] {
	return &Global[G]{construct: construct}
}

func (g *Global[G]) ref() G {
	g.once.Do(func() { g.instance = g.construct() })
	return g.instance
}

// Get returns the wrapped group, constructing it on first call, and marks
// the group as touched so that it is included in subsequent encodings.
func (g *Global[G]) Get() G {
	instance := g.ref()
	g.touched.Store(true)
	return instance
}

// Descriptor implements the Group interface. Reading metadata does not mark
// the group as touched.
func (g *Global[G]) Descriptor() *GroupDescriptor {
	return g.ref().Descriptor()
}

// VisitMetrics implements the Group interface. An untouched group is
// skipped entirely, declaration lines included.
func (g *Global[G]) VisitMetrics(v *Visitor) {
	if g.touched.Load() {
		g.ref().VisitMetrics(v)
	}
}

// Collector produces a metrics group freshly on every scrape via a callback,
// for metrics derived from application state rather than updated in place.
// The callback is installed once with BeforeScrape, usually after the state
// it snapshots has been built.
//
// Collectors registered in a registry live as long as the registry. To avoid
// keeping application state alive from the callback, capture a weak-style
// handle and return nil once the state is gone; a nil group contributes
// nothing to the scrape.
type Collector struct {
	desc *GroupDescriptor
	hook atomic.Pointer[func() Group]
}

// NewCollector creates a collector for groups described by desc. The
// descriptor is required up front so that name collisions are detected at
// registration time even when no callback is installed yet.
func NewCollector(desc *GroupDescriptor) *Collector {
	return &Collector{desc: desc}
}

// BeforeScrape installs the callback invoked on every scrape. Only the first
// call succeeds; subsequent calls return ErrCollectorCallbackSet.
func (c *Collector) BeforeScrape(hook func() Group) error {
	if !c.hook.CompareAndSwap(nil, &hook) {
		return ErrCollectorCallbackSet
	}
	return nil
}

// Descriptor implements the Group interface.
func (c *Collector) Descriptor() *GroupDescriptor { return c.desc }

// VisitMetrics implements the Group interface by snapshotting the group via
// the installed callback. Without a callback, or when the callback returns
// nil, the collector contributes nothing.
func (c *Collector) VisitMetrics(v *Visitor) {
	hook := c.hook.Load()
	if hook == nil {
		return
	}
	group := (*hook)()
	if isNilValue(group) {
		return
	}
	group.VisitMetrics(v)
}

var (
	globalMu     sync.Mutex
	globalGroups []Group
)

// RegisterGlobal adds groups to the process-wide list consulted by
// CollectAll. Libraries call it from init functions (or alongside their
// Global declarations) so that applications pick up their metrics without
// enumerating every dependency.
func RegisterGlobal(groups ...Group) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalGroups = append(globalGroups, groups...)
}

// CollectAll builds a registry containing every group registered through
// RegisterGlobal up to this point. Panics on duplicate metric names, like
// MustRegister.
func CollectAll() *Registry {
	globalMu.Lock()
	defer globalMu.Unlock()
	registry := NewRegistry()
	registry.MustRegister(globalGroups...)
	return registry
}
