package metrics

import (
	"fmt"
	"sync"
	"testing"
)

func TestFamilyReturnsStableInstances(t *testing.T) {
	family := NewFamily[string](NewCounter, WithLabelNames("method"))

	first := family.Get("call")
	first.Inc()
	second := family.Get("call")
	if got := second.Get(); got != 1 {
		t.Fatalf("repeated access returned a different instance: counter = %d", got)
	}
	if !family.Contains("call") {
		t.Fatal("materialized labels not reported by Contains")
	}
	if family.Contains("send") {
		t.Fatal("unmaterialized labels reported by Contains")
	}
}

func TestFamilyNestedAccessDoesNotDeadlock(t *testing.T) {
	family := NewFamily[int](NewCounter, WithLabelNames("depth"))

	// Materializing one member while holding another must not block; the
	// map tolerates reentrant access from the same goroutine.
	var materialize func(depth int)
	materialize = func(depth int) {
		family.Get(depth).Inc()
		if depth > 0 {
			materialize(depth - 1)
		}
	}
	materialize(16)

	if got := len(family.Entries()); got != 17 {
		t.Fatalf("expected 17 members, got %d", got)
	}
}

func TestFamilyConcurrentAccess(t *testing.T) {
	family := NewFamily[int](NewCounter, WithLabelNames("shard"))

	const workers = 8
	const increments = 1000
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < increments; i++ {
				// All workers hit a shared member plus one of their own.
				family.Get(0).Inc()
				family.Get(1 + worker%4).Inc()
			}
		}(w)
	}
	wg.Wait()

	if got := family.Get(0).Get(); got != workers*increments {
		t.Fatalf("shared member lost increments: got %d, want %d", got, workers*increments)
	}
	var total uint64
	for _, counter := range family.Entries() {
		total += counter.Get()
	}
	if total != 2*workers*increments {
		t.Fatalf("total increments: got %d, want %d", total, 2*workers*increments)
	}
}

func TestFamilyWithLabelSetKeys(t *testing.T) {
	type requestLabels struct {
		Method string
		Status int
	}
	family := NewFamily[requestLabels](NewCounter)
	// requestLabels does not implement LabelSet and no names were supplied,
	// so encoding must fail rather than emit unnamed labels.
	family.Get(requestLabels{Method: "call", Status: 200}).Inc()

	sink := newVisitorSink()
	desc := NewGroupDescriptor("testMetrics", "test",
		NewDescriptor("requests", KindCounter, UnitNone, "Requests"),
	)
	enc := &sampleEncoder{block: sink.block(desc.Metric("requests")), name: "test_requests"}
	if err := family.encodeSamples(enc); err == nil {
		t.Fatal("expected an encoding error for label keys without names")
	}
}

func TestFamilyArrayLabels(t *testing.T) {
	family := NewFamily[[2]string](NewCounter, WithLabelNames("method", "status"))
	family.Get([2]string{"call", "ok"}).Add(3)

	pairs, err := labelPairsFor([2]string{"call", "ok"}, []string{"method", "status"})
	if err != nil {
		t.Fatalf("resolving array labels: %v", err)
	}
	if got := renderLabelPairs(pairs); got != `method="call",status="ok"` {
		t.Fatalf("unexpected rendering: %s", got)
	}

	if _, err := labelPairsFor([2]string{"a", "b"}, []string{"only"}); err == nil {
		t.Fatal("expected an arity mismatch error")
	}
}

func TestWithLabelNamesValidatesNames(t *testing.T) {
	mustPanic(t, func() { WithLabelNames("Method") })
	mustPanic(t, func() { WithLabelNames("") })
	mustPanic(t, func() { WithLabelNames("m\xc3\xa9thode") })
}

func TestLabelValueFormatting(t *testing.T) {
	cases := []struct {
		value    any
		expected string
	}{
		{"plain", "plain"},
		{true, "true"},
		{42, "42"},
		{int64(-7), "-7"},
		{uint64(7), "7"},
		{2.5, "2.5"},
		{fmt.Errorf("wrapped"), "wrapped"},
	}
	for _, tc := range cases {
		if got := formatLabelValue(tc.value); got != tc.expected {
			t.Fatalf("formatting %v: got %q, want %q", tc.value, got, tc.expected)
		}
	}
}
