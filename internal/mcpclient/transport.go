// Package mcpclient implements the MCP connection core: a JSON-RPC 2.0
// client over stdio subprocess and HTTP POST transports, a per-server
// Connection state machine, and a concurrency-safe Manager registry.
package mcpclient

import (
	"context"

	"github.com/lydakis/mcpchat/internal/jsonrpc"
)

// Transport moves one JSON-RPC envelope to a server and returns one back,
// transport-agnostically. A Transport instance is owned by exactly one
// Connection and is never shared.
//
// Transports report failures as errors; the Connection layer absorbs them
// into nil results so callers can treat "server unavailable" as a normal
// branch.
type Transport interface {
	// Acquire obtains the underlying resource: spawn the child process
	// or prepare the HTTP session. Safe to call once per start cycle.
	Acquire(ctx context.Context) error

	// SendRequest writes one request and blocks for the correlated
	// response until ctx expires.
	SendRequest(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error)

	// SendNotification writes one fire-and-forget envelope. No response
	// is read or awaited.
	SendNotification(req *jsonrpc.Request) error

	// Release tears the transport down. It is idempotent and never
	// fails: a dead process or closed session is already released.
	Release()
}
