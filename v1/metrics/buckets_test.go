package metrics

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func TestBucketsOfKeepsExplicitBoundaries(t *testing.T) {
	bounds := BucketsOf(0.5, 1, 2.5).boundaries()
	expected := []float64{0.5, 1, 2.5}
	if !reflect.DeepEqual(bounds, expected) {
		t.Fatalf("unexpected boundaries: got %v, want %v", bounds, expected)
	}
}

func TestBucketsOfRejectsNonIncreasingBoundaries(t *testing.T) {
	mustPanic(t, func() { BucketsOf() })
	mustPanic(t, func() { BucketsOf(1, 1) })
	mustPanic(t, func() { BucketsOf(2, 1) })
	mustPanic(t, func() { BucketsOf(1, math.NaN()) })
}

func TestLinearBuckets(t *testing.T) {
	bounds := LinearBuckets(0, 10, 2.5).boundaries()
	expected := []float64{0, 2.5, 5, 7.5, 10}
	if !reflect.DeepEqual(bounds, expected) {
		t.Fatalf("unexpected boundaries: got %v, want %v", bounds, expected)
	}

	mustPanic(t, func() { LinearBuckets(10, 0, 1) })
	mustPanic(t, func() { LinearBuckets(0, 10, 0) })
	mustPanic(t, func() { LinearBuckets(0, 10, -1) })
}

func TestExponentialBuckets(t *testing.T) {
	bounds := ExponentialBuckets(1, 16, 2).boundaries()
	expected := []float64{1, 2, 4, 8, 16}
	if !reflect.DeepEqual(bounds, expected) {
		t.Fatalf("unexpected boundaries: got %v, want %v", bounds, expected)
	}

	mustPanic(t, func() { ExponentialBuckets(0, 16, 2) })
	mustPanic(t, func() { ExponentialBuckets(16, 1, 2) })
	mustPanic(t, func() { ExponentialBuckets(1, 16, 1) })
}

func TestScaledBuckets(t *testing.T) {
	bounds := ScaledBuckets(1, 100, 2, 5, 10).boundaries()
	expected := []float64{1, 2, 5, 10, 20, 50, 100}
	if !reflect.DeepEqual(bounds, expected) {
		t.Fatalf("unexpected boundaries: got %v, want %v", bounds, expected)
	}

	// A single factor degenerates to plain exponential buckets.
	scaled := ScaledBuckets(1, 16, 2).boundaries()
	exponential := ExponentialBuckets(1, 16, 2).boundaries()
	if !reflect.DeepEqual(scaled, exponential) {
		t.Fatalf("single-factor scaled buckets diverge: got %v, want %v", scaled, exponential)
	}

	mustPanic(t, func() { ScaledBuckets(1, 100) })
	mustPanic(t, func() { ScaledBuckets(1, 100, 5, 2) })
	mustPanic(t, func() { ScaledBuckets(1, 100, 0.5, 2) })
}

func TestMirroredBuckets(t *testing.T) {
	bounds := BucketsOf(1, 2, 4, 8).Mirrored().boundaries()
	expected := []float64{-8, -4, -2, -1, 1, 2, 4, 8}
	if !reflect.DeepEqual(bounds, expected) {
		t.Fatalf("unexpected boundaries: got %v, want %v", bounds, expected)
	}

	// Zero is kept in place, not reflected.
	bounds = BucketsOf(0, 1, 2).Mirrored().boundaries()
	expected = []float64{-2, -1, 0, 1, 2}
	if !reflect.DeepEqual(bounds, expected) {
		t.Fatalf("unexpected boundaries: got %v, want %v", bounds, expected)
	}

	mustPanic(t, func() { BucketsOf(-1, 1).Mirrored().boundaries() })
}

func TestBucketOffset(t *testing.T) {
	bounds := LinearBuckets(0, 4, 1).WithOffset(10).boundaries()
	expected := []float64{10, 11, 12, 13, 14}
	if !reflect.DeepEqual(bounds, expected) {
		t.Fatalf("unexpected boundaries: got %v, want %v", bounds, expected)
	}

	// Offsets compose and apply after mirroring.
	bounds = BucketsOf(1, 2).Mirrored().WithOffset(1).WithOffset(2).boundaries()
	expected = []float64{1, 2, 4, 5}
	if !reflect.DeepEqual(bounds, expected) {
		t.Fatalf("unexpected boundaries: got %v, want %v", bounds, expected)
	}
}

func TestGeneratedBucketsAreStrictlyIncreasing(t *testing.T) {
	specs := map[string]Buckets{
		"latency":     DefaultLatencyBuckets,
		"zero_to_one": ZeroToOneBuckets,
		"linear":      LinearBuckets(-5, 5, 0.5),
		"exponential": ExponentialBuckets(0.001, 1000, 3),
		"scaled":      ScaledBuckets(0.25, 64, 2, 4),
	}
	for name, spec := range specs {
		bounds := spec.boundaries()
		for i := 1; i < len(bounds); i++ {
			if bounds[i] <= bounds[i-1] {
				t.Fatalf("%s: boundaries not strictly increasing at %d: %v", name, i, bounds)
			}
		}
	}
}

func TestCompareF64CornerCases(t *testing.T) {
	if ord, ok := compareF64(0.0, math.Copysign(0, -1)); !ok || ord != 0 {
		t.Fatalf("+0 and -0 must compare equal, got ord=%d ok=%v", ord, ok)
	}
	if _, ok := compareF64(math.NaN(), 1); ok {
		t.Fatal("NaN must be non-comparable")
	}
	if _, ok := compareF64(1, math.SmallestNonzeroFloat64); ok {
		t.Fatal("subnormals must be non-comparable")
	}
	if ord, ok := compareF64(math.Inf(-1), math.Inf(1)); !ok || ord >= 0 {
		t.Fatalf("-Inf must compare less than +Inf, got ord=%d ok=%v", ord, ok)
	}
	if ord, ok := compareF64(-1, -2); !ok || ord <= 0 {
		t.Fatalf("-1 must compare greater than -2, got ord=%d ok=%v", ord, ok)
	}
}

func TestCompareF64AgreesWithNativeOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sample := func() float64 {
		for {
			v := math.Float64frombits(rng.Uint64())
			d := decomposeF64(v)
			if !d.isNaN() && !d.isSubnormal() {
				return v
			}
		}
	}
	for i := 0; i < 100_000; i++ {
		lhs, rhs := sample(), sample()
		ord, ok := compareF64(lhs, rhs)
		if !ok {
			t.Fatalf("%v vs %v: unexpectedly non-comparable", lhs, rhs)
		}
		var native int
		switch {
		case lhs < rhs:
			native = -1
		case lhs > rhs:
			native = 1
		}
		if ord != native {
			t.Fatalf("%v vs %v: got ord=%d, native=%d", lhs, rhs, ord, native)
		}
	}
}

func mustPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	f()
}
