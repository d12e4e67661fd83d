package metrics

import (
	"fmt"
	"math"
)

// Default bucket configurations.
var (
	// DefaultLatencyBuckets covers request latencies from 1ms to 2min.
	DefaultLatencyBuckets = BucketsOf(0.001, 0.005, 0.025, 0.1, 0.25, 1.0, 5.0, 30.0, 120.0)

	// ZeroToOneBuckets covers the [0.0, 1.0] interval, e.g. for ratios.
	ZeroToOneBuckets = BucketsOf(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9)
)

type bucketsKind uint8

const (
	valuesBuckets bucketsKind = iota + 1
	linearBuckets
	exponentialBuckets
	scaledBuckets
)

// Buckets is an immutable, cheaply copyable description of a histogram's
// bucket boundaries. The realized boundary sequence is always strictly
// increasing; constructors and post-processing steps panic when that cannot
// be guaranteed, since a malformed bucket specification is a programmer
// error rather than a runtime condition.
type Buckets struct {
	kind     bucketsKind
	values   []float64
	start    float64
	end      float64
	step     float64
	factor   float64
	factors  []float64
	mirrored bool
	offset   float64
}

// BucketsOf creates buckets from an explicit boundary list.
//
// Panics if values are empty or not strictly increasing. The check uses the
// bit-level total order over float64 (see compareF64), so NaN and subnormal
// boundaries are rejected as non-comparable.
func BucketsOf(values ...float64) Buckets {
	if len(values) == 0 {
		panic("metrics: bucket values cannot be empty")
	}
	for i := 1; i < len(values); i++ {
		if !isF64Greater(values[i], values[i-1]) {
			panic(fmt.Sprintf("metrics: bucket values must be strictly increasing (%v !> %v)", values[i], values[i-1]))
		}
	}
	bounds := make([]float64, len(values))
	copy(bounds, values)
	return Buckets{kind: valuesBuckets, values: bounds}
}

// LinearBuckets creates boundaries start, start+step, start+2*step, ...
// while they stay <= end (potentially inclusive).
//
// Panics if the range is empty or step is not positive.
func LinearBuckets(start, end, step float64) Buckets {
	if !isF64Greater(end, start) {
		panic("metrics: linear bucket range is empty")
	}
	if !isF64Greater(step, 0) {
		panic("metrics: linear bucket step must be positive")
	}
	return Buckets{kind: linearBuckets, start: start, end: end, step: step}
}

// ExponentialBuckets creates boundaries start, start*factor, ... while they
// stay <= end (potentially inclusive).
//
// Panics if the range is empty, start <= 0 or factor <= 1.
func ExponentialBuckets(start, end, factor float64) Buckets {
	if !isF64Greater(start, 0) {
		panic("metrics: exponential bucket range start must be positive")
	}
	if !isF64Greater(end, start) {
		panic("metrics: exponential bucket range is empty")
	}
	if !isF64Greater(factor, 1) {
		panic("metrics: exponential bucket factor must be greater than 1")
	}
	return Buckets{kind: exponentialBuckets, start: start, end: end, factor: factor}
}

// ScaledBuckets creates a generalized exponential sequence from a list of
// harmonic factors f_0 < f_1 < ... < f_{n-1} (all > 1): each octave emits
// base, base*f_0, ..., base*f_{n-2}, then the next octave starts at
// base*f_{n-1}; generation stops once a boundary exceeds end. With a single
// factor this degenerates to plain exponential buckets. For example,
// ScaledBuckets(1, 100, 2, 5, 10) realizes [1, 2, 5, 10, 20, 50, 100].
//
// Panics if the range is empty, start <= 0, or factors are empty, not
// strictly increasing, or not all greater than 1.
func ScaledBuckets(start, end float64, factors ...float64) Buckets {
	if !isF64Greater(start, 0) {
		panic("metrics: scaled bucket range start must be positive")
	}
	if !isF64Greater(end, start) {
		panic("metrics: scaled bucket range is empty")
	}
	if len(factors) == 0 {
		panic("metrics: scaled bucket factors cannot be empty")
	}
	prev := 1.0
	for _, factor := range factors {
		if !isF64Greater(factor, prev) {
			panic("metrics: scaled bucket factors must be strictly increasing and greater than 1")
		}
		prev = factor
	}
	owned := make([]float64, len(factors))
	copy(owned, factors)
	return Buckets{kind: scaledBuckets, start: start, end: end, factors: owned}
}

// Mirrored reflects every strictly positive boundary to its negation,
// prepended in increasing order ahead of the original sequence, e.g.
// [1, 2, 4, 8] becomes [-8, -4, -2, -1, 1, 2, 4, 8].
//
// The smallest realized boundary must be non-negative; zero is kept but not
// reflected. Violations panic at realization time.
func (b Buckets) Mirrored() Buckets {
	b.mirrored = true
	return b
}

// WithOffset uniformly shifts every realized boundary (including mirrored
// ones) by bias. Applied after mirroring.
func (b Buckets) WithOffset(bias float64) Buckets {
	b.offset += bias
	return b
}

// boundaries realizes the specification into the final boundary slice.
func (b Buckets) boundaries() []float64 {
	var bounds []float64
	switch b.kind {
	case valuesBuckets:
		bounds = append(bounds, b.values...)
	case linearBuckets:
		for i := 0; ; i++ {
			value := b.start + float64(i)*b.step
			if value > b.end {
				break
			}
			bounds = append(bounds, value)
		}
	case exponentialBuckets:
		for value := b.start; value <= b.end; value *= b.factor {
			bounds = append(bounds, value)
		}
	case scaledBuckets:
		octave := b.factors[len(b.factors)-1]
		for base := b.start; base <= b.end; base *= octave {
			bounds = append(bounds, base)
			for _, factor := range b.factors[:len(b.factors)-1] {
				value := base * factor
				if value > b.end {
					break
				}
				bounds = append(bounds, value)
			}
		}
	default:
		panic("metrics: bucket specification is not initialized; use a Buckets constructor")
	}

	if b.mirrored {
		if bounds[0] < 0 {
			panic("metrics: mirrored buckets require the smallest boundary to be non-negative")
		}
		mirrored := make([]float64, 0, 2*len(bounds))
		for i := len(bounds) - 1; i >= 0; i-- {
			if bounds[i] > 0 {
				mirrored = append(mirrored, -bounds[i])
			}
		}
		bounds = append(mirrored, bounds...)
	}
	if b.offset != 0 {
		for i := range bounds {
			bounds[i] += b.offset
		}
	}

	for i := 1; i < len(bounds); i++ {
		if !(bounds[i] > bounds[i-1]) {
			panic(fmt.Sprintf("metrics: realized bucket boundaries are not strictly increasing (%v !> %v)", bounds[i], bounds[i-1]))
		}
	}
	return bounds
}

// IEEE-754 double-precision layout masks. Endianness does not matter here:
// math.Float64bits always yields the logical bit pattern.
const (
	f64FractionMask uint64 = 1<<52 - 1
	f64ExponentMask uint64 = 0x7ff << 52
	f64SignMask     uint64 = 1 << 63
)

type decomposedF64 struct {
	signBit      uint64
	exponentBits uint64
	fractionBits uint64
}

func decomposeF64(v float64) decomposedF64 {
	bits := math.Float64bits(v)
	return decomposedF64{
		signBit:      bits & f64SignMask,
		exponentBits: bits & f64ExponentMask,
		fractionBits: bits & f64FractionMask,
	}
}

func (d decomposedF64) isZero() bool      { return d.exponentBits == 0 && d.fractionBits == 0 }
func (d decomposedF64) isSubnormal() bool { return d.exponentBits == 0 && d.fractionBits != 0 }
func (d decomposedF64) isNaN() bool {
	return d.exponentBits == f64ExponentMask && d.fractionBits != 0
}

func compareU64(lhs, rhs uint64) int {
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

// compareF64 is a total ordering over float64 built from the raw bit
// pattern: sign first, then sign-adjusted exponent, then sign-adjusted
// fraction. NaNs and subnormals are treated as non-comparable (ok = false);
// +0 and -0 compare equal. For all normal, non-NaN inputs the result agrees
// with the native < / > / == ordering.
func compareF64(lhs, rhs float64) (ord int, ok bool) {
	l := decomposeF64(lhs)
	r := decomposeF64(rhs)

	if l.isNaN() || r.isNaN() || l.isSubnormal() || r.isSubnormal() {
		return 0, false
	}
	if l.isZero() && r.isZero() {
		return 0, true
	}

	// A set sign bit means a smaller value, hence the reversal.
	if signOrd := -compareU64(l.signBit, r.signBit); signOrd != 0 {
		return signOrd, true
	}

	exponentOrd := compareU64(l.exponentBits, r.exponentBits)
	if l.signBit != 0 {
		exponentOrd = -exponentOrd
	}
	if exponentOrd != 0 {
		return exponentOrd, true
	}

	fractionOrd := compareU64(l.fractionBits, r.fractionBits)
	if l.signBit != 0 {
		fractionOrd = -fractionOrd
	}
	return fractionOrd, true
}

func isF64Greater(lhs, rhs float64) bool {
	ord, ok := compareF64(lhs, rhs)
	return ok && ord > 0
}
