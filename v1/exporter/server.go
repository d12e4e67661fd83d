package exporter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Server is a bound but not yet running scrape endpoint. Binding is split
// from serving so that callers can fail fast on an unavailable address and
// can read the effective address when binding to port 0.
type Server struct {
	exporter *Exporter
	listener net.Listener
	http     *http.Server
}

// Bind opens the listening socket for the scrape endpoint. A bind failure is
// fatal for the exporter and is returned to the caller; run the returned
// server with Start.
func (e *Exporter) Bind(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("exporter: binding metrics endpoint to %s: %w", addr, err)
	}
	return &Server{
		exporter: e,
		listener: listener,
		http:     &http.Server{Handler: e.Handler()},
	}, nil
}

// LocalAddr returns the bound address, including the effective port when the
// server was bound to port 0.
func (s *Server) LocalAddr() net.Addr {
	return s.listener.Addr()
}

// Start serves scrape requests until ctx is canceled, then shuts down in two
// phases: the listener stops accepting immediately, and Start keeps blocking
// until every open connection has finished its in-flight request and closed
// (bounded by the exporter's shutdown timeout, after which remaining
// connections are closed forcefully).
func (s *Server) Start(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := s.http.Serve(s.listener)
		if errors.Is(err, http.ErrServerClosed) {
			// Regular outcome of the shutdown below.
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), s.exporter.shutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(drainCtx); err != nil {
			s.exporter.log.Warn("draining metrics endpoint connections timed out", zap.Error(err))
			return s.http.Close()
		}
		return nil
	})
	return group.Wait()
}

// Start binds addr and serves scrape requests until ctx is canceled; see
// Server.Start for the shutdown semantics. Prefer Bind plus Server.Start
// when the effective address is needed before serving.
func (e *Exporter) Start(ctx context.Context, addr string) error {
	server, err := e.Bind(addr)
	if err != nil {
		return err
	}
	return server.Start(ctx)
}
