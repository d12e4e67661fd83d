package exporter

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseobs/pulse/v1/metrics"
)

// tickMetrics carries its own descriptor so that every test can use a
// distinct prefix without colliding in a shared registry.
type tickMetrics struct {
	descriptor *metrics.GroupDescriptor
	ticks      *metrics.Counter
}

func newTickMetrics(prefix string) *tickMetrics {
	return &tickMetrics{
		descriptor: metrics.NewGroupDescriptor("tickMetrics", prefix,
			metrics.NewDescriptor("ticks", metrics.KindCounter, metrics.UnitNone, "Ticks"),
		),
		ticks: metrics.NewCounter(),
	}
}

func (m *tickMetrics) Descriptor() *metrics.GroupDescriptor { return m.descriptor }

func (m *tickMetrics) VisitMetrics(v *metrics.Visitor) {
	v.Visit(m.descriptor.Metric("ticks"), m.ticks)
}

func TestHandlerServesMetrics(t *testing.T) {
	group := newTickMetrics("handler_test")
	group.ticks.Add(5)
	registry := metrics.NewRegistry()
	registry.MustRegister(group)
	exp := New(registry)

	recorder := httptest.NewRecorder()
	exp.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/any/path", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, metrics.FormatOpenMetricsForPrometheus.ContentType(), recorder.Header().Get("Content-Type"))
	body := recorder.Body.String()
	assert.Contains(t, body, "handler_test_ticks 5\n")
	assert.NotContains(t, body, "_total")
	assert.True(t, strings.HasSuffix(body, "# EOF\n"), "pull dialect must keep the EOF terminator")
}

func TestHandlerRejectsNonGETRequests(t *testing.T) {
	exp := New(metrics.NewRegistry())

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		recorder := httptest.NewRecorder()
		exp.Handler().ServeHTTP(recorder, httptest.NewRequest(method, "/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code, method)
	}
}

func TestHandlerHonorsConfiguredFormat(t *testing.T) {
	group := newTickMetrics("format_test")
	group.ticks.Inc()
	registry := metrics.NewRegistry()
	registry.MustRegister(group)
	exp := New(registry, WithFormat(metrics.FormatOpenMetrics))

	recorder := httptest.NewRecorder()
	exp.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, metrics.FormatOpenMetrics.ContentType(), recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Body.String(), "format_test_ticks_total 1\n")
}

func TestServerScrapeAndShutdown(t *testing.T) {
	group := newTickMetrics("server_test")
	group.ticks.Add(2)
	registry := metrics.NewRegistry()
	registry.MustRegister(group)
	exp := New(registry)

	server, err := exp.Bind("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan error, 1)
	go func() { started <- server.Start(ctx) }()

	url := "http://" + server.LocalAddr().String() + "/metrics"
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "server_test_ticks 2\n")

	cancel()
	select {
	case err := <-started:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	// The listener is closed: new connections must be refused.
	conn, err := net.DialTimeout("tcp", server.LocalAddr().String(), 500*time.Millisecond)
	if err == nil {
		conn.Close()
		t.Fatal("server still accepts connections after shutdown")
	}
}

func TestServerDrainsInFlightRequests(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	collector := metrics.NewCollector(metrics.NewGroupDescriptor("drainMetrics", "drain_test",
		metrics.NewDescriptor("noop", metrics.KindCounter, metrics.UnitNone, ""),
	))
	require.NoError(t, collector.BeforeScrape(func() metrics.Group {
		close(entered)
		<-release
		return nil
	}))
	registry := metrics.NewRegistry()
	registry.MustRegister(collector)
	exp := New(registry)

	server, err := exp.Bind("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan error, 1)
	go func() { started <- server.Start(ctx) }()

	scraped := make(chan error, 1)
	go func() {
		resp, err := http.Get("http://" + server.LocalAddr().String() + "/")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				err = errors.New(resp.Status)
			}
		}
		scraped <- err
	}()

	<-entered
	cancel()

	// The in-flight scrape holds the server open.
	select {
	case <-started:
		t.Fatal("server shut down with a request still in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-scraped)
	select {
	case err := <-started:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after the request finished")
	}
}

func TestBindFailsOnBusyAddress(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	_, err = New(metrics.NewRegistry()).Bind(listener.Addr().String())
	require.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, DefaultPushInterval, cfg.PushInterval)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)

	_, err := metrics.ParseFormat(DefaultFormat)
	require.NoError(t, err)

	custom := Config{ListenAddr: ":9100", Format: "prometheus"}.withDefaults()
	assert.Equal(t, ":9100", custom.ListenAddr)
	assert.Equal(t, "prometheus", custom.Format)
}
