package metrics

import (
	"strconv"
	"strings"
	"testing"
)

func sampleValue(t *testing.T, doc, name string) uint64 {
	t.Helper()
	for _, line := range strings.Split(doc, "\n") {
		value, ok := strings.CutPrefix(line, name+" ")
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			t.Fatalf("parsing sample %s: %v", name, err)
		}
		return n
	}
	t.Fatalf("sample %s not found in document", name)
	return 0
}

// A scrape racing an observation must still render a cumulative series:
// every bounded bucket <= the +Inf bucket, and the +Inf bucket == count.
func TestHistogramEncodingUnderConcurrentObservation(t *testing.T) {
	group := newServerMetrics()
	registry := NewRegistry()
	registry.MustRegister(group)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				group.payload.Observe(250)
			}
		}
	}()

	for i := 0; i < 500; i++ {
		doc := encodeToString(t, registry, FormatOpenMetrics)
		bounded := sampleValue(t, doc, `server_payload_size_bytes_bucket{le="1000"}`)
		inf := sampleValue(t, doc, `server_payload_size_bytes_bucket{le="+Inf"}`)
		count := sampleValue(t, doc, "server_payload_size_bytes_count")
		if bounded > inf {
			t.Fatalf("bounded bucket %d exceeds +Inf bucket %d", bounded, inf)
		}
		if inf != count {
			t.Fatalf("+Inf bucket %d does not match count %d", inf, count)
		}
	}

	close(stop)
	<-done
}
