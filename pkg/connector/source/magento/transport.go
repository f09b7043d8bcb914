package magento

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/ajitpratap0/magesync/pkg/clients"
	"github.com/ajitpratap0/magesync/pkg/errors"
	"github.com/ajitpratap0/magesync/pkg/json"
)

// Transport sends one remote procedure call. It knows nothing about sessions
// or retries; the Gateway layers both on top.
type Transport interface {
	Invoke(ctx context.Context, method string, params []any) (json.RawMessage, error)
}

// Fault is an error reported by the remote API itself, as opposed to a
// network or decoding failure
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	if f.Code != 0 {
		return fmt.Sprintf("fault %d: %s", f.Code, f.Message)
	}
	return f.Message
}

// Magento fault codes with special handling
const (
	FaultSessionExpired = 5
	FaultAccessDenied   = 2
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int64  `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
	ID     int64           `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// JSONRPCTransport speaks JSON-RPC 2.0 over HTTP POST
type JSONRPCTransport struct {
	endpoint string
	client   *clients.HTTPClient
	nextID   atomic.Int64
}

// NewJSONRPCTransport creates a transport posting to endpoint
func NewJSONRPCTransport(endpoint string, client *clients.HTTPClient) *JSONRPCTransport {
	return &JSONRPCTransport{endpoint: endpoint, client: client}
}

// Invoke implements Transport
func (t *JSONRPCTransport) Invoke(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	req := rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: t.nextID.Add(1)}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "encode rpc request")
	}

	status, data, err := t.client.Send(ctx, http.MethodPost, t.endpoint, body, map[string]string{
		"Content-Type":  "application/json",
		"Cache-Control": "no-cache",
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "rpc request failed").WithDetail("method", method)
	}
	if status >= http.StatusInternalServerError && len(data) == 0 {
		return nil, errors.Newf(errors.ErrorTypeConnection, "rpc endpoint returned %d", status).WithDetail("method", method)
	}

	var resp rpcResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decode rpc response").
			WithDetail("method", method).
			WithDetail("status", status).
			WithDetail("body", truncate(string(data), 256))
	}
	if resp.Error != nil {
		return nil, &Fault{Code: resp.Error.Code, Message: resp.Error.Message}
	}
	return resp.Result, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
