package testutil

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/preston-bernstein/contrib-widget-service/internal/poller"
)

// StubPoller implements the server's Poller and the admin SyncRunner.
// Counters are plain ints: callers read them only after the call under test returns.
type StubPoller struct {
	StartCalls int
	StopCalls  int
	RunCalls   int
	Err        error
	RunErr     error
	StatusVal  poller.Status
}

func (p *StubPoller) RunOnce(ctx context.Context) error {
	_ = ctx
	p.RunCalls++
	return p.RunErr
}

func (p *StubPoller) Start(ctx context.Context) {
	_ = ctx
	p.StartCalls++
}

func (p *StubPoller) Stop(ctx context.Context) error {
	_ = ctx
	p.StopCalls++
	return p.Err
}

func (p *StubPoller) Status() poller.Status {
	return p.StatusVal
}

// StubHTTPServer stands in for net/http.Server.
// ListenAndServe returns ListenErr right away; set it to http.ErrServerClosed for a clean exit.
// With ShutdownGate set, Shutdown blocks until the gate closes or ctx ends.
type StubHTTPServer struct {
	AddrVal      string
	HandlerVal   http.Handler
	ListenErr    error
	ShutdownErr  error
	ShutdownGate chan struct{}

	listens   atomic.Int32
	shutdowns atomic.Int32
}

func (s *StubHTTPServer) ListenAndServe() error {
	s.listens.Add(1)
	return s.ListenErr
}

func (s *StubHTTPServer) Shutdown(ctx context.Context) error {
	s.shutdowns.Add(1)
	if s.ShutdownGate == nil {
		return s.ShutdownErr
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ShutdownGate:
		return s.ShutdownErr
	}
}

func (s *StubHTTPServer) Addr() string {
	if s.AddrVal == "" {
		return ":0"
	}
	return s.AddrVal
}

func (s *StubHTTPServer) Handler() http.Handler {
	if s.HandlerVal == nil {
		return http.NotFoundHandler()
	}
	return s.HandlerVal
}

// ListenCalls reports how many times ListenAndServe ran.
func (s *StubHTTPServer) ListenCalls() int { return int(s.listens.Load()) }

// ShutdownCalls reports how many times Shutdown ran.
func (s *StubHTTPServer) ShutdownCalls() int { return int(s.shutdowns.Load()) }
