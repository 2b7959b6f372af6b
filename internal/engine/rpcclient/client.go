// Package rpcclient issues single JSON-RPC calls and classifies their
// outcome. It is adapted from the teacher's internal/rpc package
// (internal/rpc/client.go, internal/rpc/types.go): the same "serialize,
// measure, deserialize" shape, generalized from a single hardcoded
// Ethereum provider to a round-robin pool of arbitrary JSON-RPC endpoints
// and a fixed outcome taxonomy instead of ad-hoc error strings.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jrpcrate/jrpcrate/internal/engine/sample"
	"github.com/jrpcrate/jrpcrate/internal/engine/workload"
)

// request is the JSON-RPC 2.0 envelope sent on the wire.
type request struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

// response is the JSON-RPC 2.0 envelope expected back. Result is left raw
// because this client never needs to interpret it beyond size and
// error-presence.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Result is everything the executor needs to turn one Issue call into a
// sample.Call: the measured timestamps, the classified outcome, and the
// response size (for ErrDecode/ErrRpc the size still reflects what came
// back over the wire, if anything did).
type Result struct {
	StartAt       time.Time
	EndAt         time.Time
	Outcome       sample.Outcome
	ResponseBytes int
	Endpoint      string
}

// Client issues JSON-RPC calls against one or more endpoints, round-robining
// across them by a global dispatch counter so load is balanced independent
// of the caller's rate. It never retries: a failed call is a sample, not a
// reason to try again (see the teacher's "NO RETRY LOGIC" design note in
// internal/rpc/client.go, which applies here for the identical reason —
// retries would hide the exact reliability signal this tool measures).
type Client struct {
	endpoints []string
	pool      *transportPool
	counter   atomic.Uint64
}

// NewClient builds a Client over the given endpoint set. Connections are
// pooled per endpoint via a shared *http.Transport (see pool.go), adapted
// from the teacher's internal/rpc/pool.go ClientPool.
func NewClient(endpoints []string) *Client {
	return &Client{
		endpoints: endpoints,
		pool:      newTransportPool(),
	}
}

func (c *Client) nextEndpoint() string {
	n := c.counter.Add(1) - 1
	return c.endpoints[n%uint64(len(c.endpoints))]
}

// Issue sends one JSON-RPC call and classifies the outcome per spec:
// Ok (HTTP 2xx, no "error" member), ErrHttp (non-2xx or transport failure),
// ErrTimeout (context deadline exceeded), ErrDecode (not valid JSON-RPC
// shape), or ErrRpc (well-formed response carrying an "error" member).
func (c *Client) Issue(ctx context.Context, call workload.ConcreteCall, timeout time.Duration) Result {
	endpoint := c.nextEndpoint()

	params := call.Params
	if params == nil {
		params = []json.RawMessage{}
	}
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		Method:  call.Method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		now := time.Now()
		return Result{StartAt: now, EndAt: now, Outcome: sample.ErrHTTP, Endpoint: endpoint}
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpClient := c.pool.get(endpoint)

	start := time.Now()
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		end := time.Now()
		return Result{StartAt: start, EndAt: end, Outcome: sample.ErrHTTP, Endpoint: endpoint}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	end := time.Now()
	if err != nil {
		if callCtx.Err() != nil {
			return Result{StartAt: start, EndAt: end, Outcome: sample.ErrTimeout, Endpoint: endpoint}
		}
		return Result{StartAt: start, EndAt: end, Outcome: sample.ErrHTTP, Endpoint: endpoint}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	end = time.Now()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{StartAt: start, EndAt: end, Outcome: sample.ErrHTTP, ResponseBytes: len(data), Endpoint: endpoint}
	}
	if readErr != nil {
		return Result{StartAt: start, EndAt: end, Outcome: sample.ErrDecode, ResponseBytes: len(data), Endpoint: endpoint}
	}

	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return Result{StartAt: start, EndAt: end, Outcome: sample.ErrDecode, ResponseBytes: len(data), Endpoint: endpoint}
	}
	if rpcResp.JSONRPC == "" && rpcResp.Result == nil && rpcResp.Error == nil {
		return Result{StartAt: start, EndAt: end, Outcome: sample.ErrDecode, ResponseBytes: len(data), Endpoint: endpoint}
	}
	if rpcResp.Error != nil {
		return Result{StartAt: start, EndAt: end, Outcome: sample.ErrRPC, ResponseBytes: len(data), Endpoint: endpoint}
	}

	return Result{StartAt: start, EndAt: end, Outcome: sample.Ok, ResponseBytes: len(data), Endpoint: endpoint}
}

// Close releases pooled idle connections for all endpoints.
func (c *Client) Close() { c.pool.closeAll() }

// String satisfies fmt.Stringer for log context.
func (c *Client) String() string {
	return fmt.Sprintf("rpcclient(endpoints=%d)", len(c.endpoints))
}
