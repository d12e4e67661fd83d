package metrics

import (
	"math"
	"reflect"
	"strconv"
	"sync/atomic"
	"time"
)

// MetricKind identifies one of the supported metric primitives.
type MetricKind int

// Supported metric kinds.
const (
	KindCounter MetricKind = iota + 1
	KindGauge
	KindHistogram
	KindInfo
)

// String returns the kind token used in TYPE lines of the text format.
func (k MetricKind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	case KindHistogram:
		return "histogram"
	case KindInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Unit is a measurement unit of a metric. A non-empty unit appends its
// canonical suffix to the exported metric name and is additionally reported
// on a UNIT line in the OpenMetrics format.
type Unit string

// Commonly used units.
const (
	UnitNone    Unit = ""
	UnitSeconds Unit = "seconds"
	UnitBytes   Unit = "bytes"
	UnitRatios  Unit = "ratios"
	UnitAmperes Unit = "amperes"
	UnitJoules  Unit = "joules"
	UnitGrams   Unit = "grams"
	UnitMeters  Unit = "meters"
	UnitVolts   Unit = "volts"
	UnitCelsius Unit = "celsius"
)

// Value is the set of types usable as gauge and histogram values: signed and
// unsigned integers, floats, and durations. Durations are encoded as
// floating-point seconds, following Prometheus naming conventions.
type Value interface {
	~int64 | ~uint64 | ~float64
}

type valueKind uint8

const (
	int64Kind valueKind = iota
	uint64Kind
	float64Kind
	durationKind
)

// valueKindOf resolves the runtime representation for a Value instantiation.
func valueKindOf[V Value]() valueKind {
	var zero V
	switch any(zero).(type) {
	case time.Duration:
		return durationKind
	case int64:
		return int64Kind
	case uint64:
		return uint64Kind
	case float64:
		return float64Kind
	default:
		// Named types over the base kinds (e.g. `type Bytes uint64`) land
		// here; classify by the underlying kind.
		switch reflect.TypeOf(zero).Kind() {
		case reflect.Int64:
			return int64Kind
		case reflect.Uint64:
			return uint64Kind
		default:
			return float64Kind
		}
	}
}

// atomicCell is a single 64-bit atomic storage cell shared by all metric
// value types. Floats are stored bit-cast; integers and durations are stored
// in two's complement. Readers never observe a torn value.
type atomicCell[V Value] struct {
	kind valueKind
	bits atomic.Uint64
}

func newAtomicCell[V Value]() *atomicCell[V] {
	return &atomicCell[V]{kind: valueKindOf[V]()}
}

func (c *atomicCell[V]) pack(v V) uint64 {
	switch c.kind {
	case float64Kind:
		return math.Float64bits(float64(v))
	case uint64Kind:
		return uint64(v)
	default:
		return uint64(int64(v))
	}
}

func (c *atomicCell[V]) unpack(bits uint64) V {
	switch c.kind {
	case float64Kind:
		return V(math.Float64frombits(bits))
	case uint64Kind:
		return V(bits)
	default:
		return V(int64(bits))
	}
}

func (c *atomicCell[V]) get() V {
	return c.unpack(c.bits.Load())
}

// set stores v and returns the previous value.
func (c *atomicCell[V]) set(v V) V {
	return c.unpack(c.bits.Swap(c.pack(v)))
}

// add applies a delta and returns the previous value.
func (c *atomicCell[V]) add(v V) V {
	if c.kind == float64Kind {
		for {
			old := c.bits.Load()
			next := math.Float64bits(math.Float64frombits(old) + float64(v))
			if c.bits.CompareAndSwap(old, next) {
				return c.unpack(old)
			}
		}
	}
	// Two's complement addition covers signed, unsigned and duration cells.
	next := c.bits.Add(c.pack(v))
	return c.unpack(next - c.pack(v))
}

// sub applies a negative delta and returns the previous value.
func (c *atomicCell[V]) sub(v V) V {
	if c.kind == float64Kind {
		for {
			old := c.bits.Load()
			next := math.Float64bits(math.Float64frombits(old) - float64(v))
			if c.bits.CompareAndSwap(old, next) {
				return c.unpack(old)
			}
		}
	}
	next := c.bits.Add(-c.pack(v))
	return c.unpack(next + c.pack(v))
}

// encodedValue is the canonical wire form of a gauge value: either an
// integer or a float, depending on the value type and magnitude.
type encodedValue struct {
	isFloat bool
	i       int64
	f       float64
}

func (v encodedValue) String() string {
	if v.isFloat {
		return formatFloat(v.f)
	}
	return strconv.FormatInt(v.i, 10)
}

// encoded renders the current cell value into its canonical gauge form:
// integers stay integers while they fit into int64, everything else becomes
// a float.
func (c *atomicCell[V]) encoded() encodedValue {
	bits := c.bits.Load()
	switch c.kind {
	case float64Kind:
		return encodedValue{isFloat: true, f: math.Float64frombits(bits)}
	case uint64Kind:
		if bits > math.MaxInt64 {
			return encodedValue{isFloat: true, f: float64(bits)}
		}
		return encodedValue{i: int64(bits)}
	case durationKind:
		return encodedValue{isFloat: true, f: time.Duration(int64(bits)).Seconds()}
	default:
		return encodedValue{i: int64(bits)}
	}
}

// asSample converts a value into the float64 form observed by histograms.
func asSample[V Value](kind valueKind, v V) float64 {
	switch kind {
	case durationKind:
		return time.Duration(int64(v)).Seconds()
	case uint64Kind:
		return float64(uint64(v))
	default:
		return float64(v)
	}
}

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}
