// Package testutil provides testing utilities for magesync
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// Clock is a manually advanced clock
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at t
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Date returns midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NoSleep is a retry sleeper that records requested waits without blocking
type NoSleep struct {
	mu    sync.Mutex
	Waits []time.Duration
}

// Sleep implements the retry sleeper signature
func (n *NoSleep) Sleep(_ context.Context, d time.Duration) error {
	n.mu.Lock()
	n.Waits = append(n.Waits, d)
	n.mu.Unlock()
	return nil
}

// RPCFault is returned by an RPCHandler to answer with a JSON-RPC error
type RPCFault struct {
	Code    int
	Message string
}

// RPCHandler answers one JSON-RPC call
type RPCHandler func(method string, params []json.RawMessage) (any, *RPCFault)

// RPCCall is a request received by an RPCServer
type RPCCall struct {
	Method string
	Params []json.RawMessage
	Header http.Header
}

// RPCServer is an httptest server speaking JSON-RPC 2.0
type RPCServer struct {
	*httptest.Server

	mu    sync.Mutex
	calls []RPCCall
}

// NewRPCServer starts a JSON-RPC server backed by handler. It is closed when the test ends.
func NewRPCServer(t *testing.T, handler RPCHandler) *RPCServer {
	t.Helper()
	s := &RPCServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int64             `json:"id"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.calls = append(s.calls, RPCCall{Method: req.Method, Params: req.Params, Header: r.Header.Clone()})
		s.mu.Unlock()

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		result, fault := handler(req.Method, req.Params)
		if fault != nil {
			resp["error"] = map[string]any{"code": fault.Code, "message": fault.Message}
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(s.Close)
	return s
}

// Calls returns the requests received so far
func (s *RPCServer) Calls() []RPCCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RPCCall, len(s.calls))
	copy(out, s.calls)
	return out
}
