package exporter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pulseobs/pulse/v1/metrics"
)

// errorLogInterval is the minimum spacing between push-failure log entries.
// It is independent of the push interval: a persistently failing gateway
// keeps being pushed to on every interval, but only surfaces in the log once
// per this interval.
const errorLogInterval = 60 * time.Second

// failureLogLimiter throttles failure logging. Shared by transport errors
// and non-success responses, so mixed failure modes do not double the log
// volume.
type failureLogLimiter struct {
	mu   sync.Mutex
	last time.Time
}

func (l *failureLogLimiter) allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.last) < errorLogInterval {
		return false
	}
	l.last = now
	return true
}

// PushToGateway uploads the metrics document to endpoint every interval
// until ctx is canceled, then performs one final push and returns. A failed
// push is logged (rate-limited) and never stops the loop.
//
// The request is a PUT whose Content-Type always advertises the canonical
// OpenMetrics format; the body itself follows the exporter's configured
// format.
func (e *Exporter) PushToGateway(ctx context.Context, endpoint string, interval time.Duration) {
	client := &http.Client{Timeout: interval}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.Background(), e.shutdownTimeout)
			e.push(finalCtx, client, endpoint)
			cancel()
			return
		case <-ticker.C:
			e.push(ctx, client, endpoint)
		}
	}
}

func (e *Exporter) push(ctx context.Context, client *http.Client, endpoint string) {
	var buf bytes.Buffer
	if err := e.render(&buf); err != nil {
		e.logPushFailure(endpoint, err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, &buf)
	if err != nil {
		e.logPushFailure(endpoint, err)
		return
	}
	req.Header.Set("Content-Type", metrics.FormatOpenMetrics.ContentType())

	resp, err := client.Do(req)
	if err != nil {
		e.logPushFailure(endpoint, err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		e.logPushFailure(endpoint, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status))
	}
}

func (e *Exporter) logPushFailure(endpoint string, err error) {
	if !e.failureLog.allow(time.Now()) {
		return
	}
	e.log.Error("pushing metrics to gateway failed",
		zap.String("endpoint", endpoint),
		zap.Error(err),
	)
}
