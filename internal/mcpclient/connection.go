package mcpclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lydakis/mcpchat/internal/jsonrpc"
)

// Protocol identity sent during the initialize handshake.
const (
	protocolVersion = "2024-11-05"
	clientName      = "mcpchat"
	clientVersion   = "0.1.0"
)

// Method names consumed by this client.
const (
	methodInitialize    = "initialize"
	methodInitialized   = "notifications/initialized"
	methodResourcesList = "resources/list"
	methodResourcesRead = "resources/read"
	methodToolsList     = "tools/list"
	methodToolsCall     = "tools/call"
)

const (
	// initTimeout is generous; some servers are slow to boot.
	initTimeout    = 15 * time.Second
	listTimeout    = 15 * time.Second
	readTimeout    = 15 * time.Second
	callTimeout    = 30 * time.Second
	defaultTimeout = 10 * time.Second
)

// State tracks a Connection through its lifecycle.
type State int

const (
	StateCreated State = iota
	StateStarting
	StateReady
	StateFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ToolInfo is a tool descriptor as declared by a server.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ResourceInfo is a resource descriptor as declared by a server.
type ResourceInfo struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
}

// Connection owns one Transport plus protocol state: the request-id
// counter, the initialization flag, and the negotiated capability set.
//
// Expected failures (server down, timeout, error payload) are absorbed:
// typed operations return nil and Start returns false. Callers treat nil
// as "capability unavailable", never as an error to propagate.
type Connection struct {
	name      string
	transport Transport
	logger    *slog.Logger

	// callTimeout may be raised per server via config; the stdio wire
	// protocol cannot demultiplex, so callMu serializes round trips.
	toolCallTimeout time.Duration
	callMu          sync.Mutex

	reqID atomic.Int64

	// startMu serializes Start: concurrent starts would both acquire
	// the transport, and for stdio the loser's subprocess leaks.
	startMu sync.Mutex

	mu           sync.Mutex
	state        State
	capabilities map[string]json.RawMessage
}

// NewConnection wires a named connection to its transport. The connection
// starts in StateCreated; nothing touches the transport until Start.
func NewConnection(name string, transport Transport, logger *slog.Logger) *Connection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connection{
		name:            name,
		transport:       transport,
		logger:          logger.With("server", name),
		toolCallTimeout: callTimeout,
	}
}

// SetToolCallTimeout overrides the tools/call timeout. Zero keeps the default.
func (c *Connection) SetToolCallTimeout(d time.Duration) {
	if d > 0 {
		c.toolCallTimeout = d
	}
}

// Name returns the connection's identity in the Manager registry.
func (c *Connection) Name() string { return c.name }

// State returns the current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Initialized reports whether the handshake has completed.
func (c *Connection) Initialized() bool {
	return c.State() == StateReady
}

// Capabilities returns a copy of the server-declared capability set.
func (c *Connection) Capabilities() map[string]json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]json.RawMessage, len(c.capabilities))
	for k, v := range c.capabilities {
		out[k] = v
	}
	return out
}

func (c *Connection) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Start acquires the transport and runs the initialize handshake.
// Returns false on any failure; the instance is then StateFailed and a
// fresh Start may be attempted later on the same identity. Concurrent
// Starts serialize; a Start that finds the connection already Ready is
// a no-op success.
func (c *Connection) Start(ctx context.Context) bool {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	if c.State() == StateReady {
		return true
	}

	c.setState(StateStarting)

	if err := c.transport.Acquire(ctx); err != nil {
		c.logger.Debug("transport acquisition failed", "error", err)
		c.setState(StateFailed)
		return false
	}

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	req := jsonrpc.NewRequest(c.reqID.Add(1), methodInitialize, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    clientName,
			"version": clientVersion,
		},
	})

	resp, err := c.transport.SendRequest(initCtx, req)
	if err != nil || !resp.HasResult() {
		c.logger.Debug("initialize handshake failed", "error", err)
		c.transport.Release()
		c.setState(StateFailed)
		return false
	}

	var result struct {
		Capabilities map[string]json.RawMessage `json:"capabilities"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		c.logger.Debug("initialize result malformed", "error", err)
		c.transport.Release()
		c.setState(StateFailed)
		return false
	}

	c.mu.Lock()
	c.capabilities = result.Capabilities
	c.state = StateReady
	c.mu.Unlock()

	// Fire-and-forget; a lost notification does not fail the handshake.
	if err := c.transport.SendNotification(jsonrpc.NewNotification(methodInitialized, nil)); err != nil {
		c.logger.Debug("initialized notification failed", "error", err)
	}

	c.logger.Debug("connection ready", "capabilities", len(result.Capabilities))
	return true
}

// call runs one request/response round trip. Returns the raw result, or
// nil when the connection is not ready, the transport failed, or the
// response carried an error payload.
func (c *Connection) call(ctx context.Context, method string, params any, timeout time.Duration) json.RawMessage {
	if !c.Initialized() {
		return nil
	}

	c.callMu.Lock()
	defer c.callMu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := jsonrpc.NewRequest(c.reqID.Add(1), method, params)
	resp, err := c.transport.SendRequest(callCtx, req)
	if err != nil {
		c.logger.Debug("call failed", "method", method, "error", err)
		return nil
	}
	if !resp.HasResult() {
		c.logger.Debug("call returned no result", "method", method, "rpc_error", resp.Error)
		return nil
	}
	return resp.Result
}

// ListResources queries resources/list. Nil means unavailable.
func (c *Connection) ListResources(ctx context.Context) []ResourceInfo {
	result := c.call(ctx, methodResourcesList, nil, listTimeout)
	if result == nil {
		return nil
	}

	var payload struct {
		Resources []ResourceInfo `json:"resources"`
	}
	if err := json.Unmarshal(result, &payload); err != nil {
		return nil
	}
	if payload.Resources == nil {
		return []ResourceInfo{}
	}
	return payload.Resources
}

// ReadResource queries resources/read and returns the raw result payload.
func (c *Connection) ReadResource(ctx context.Context, uri string) json.RawMessage {
	return c.call(ctx, methodResourcesRead, map[string]any{"uri": uri}, readTimeout)
}

// ListTools queries tools/list. Nil means unavailable.
func (c *Connection) ListTools(ctx context.Context) []ToolInfo {
	result := c.call(ctx, methodToolsList, nil, listTimeout)
	if result == nil {
		return nil
	}

	var payload struct {
		Tools []ToolInfo `json:"tools"`
	}
	if err := json.Unmarshal(result, &payload); err != nil {
		return nil
	}
	if payload.Tools == nil {
		return []ToolInfo{}
	}
	return payload.Tools
}

// CallTool invokes tools/call and returns the raw result payload.
func (c *Connection) CallTool(ctx context.Context, name string, arguments map[string]any) json.RawMessage {
	if arguments == nil {
		arguments = map[string]any{}
	}
	return c.call(ctx, methodToolsCall, map[string]any{
		"name":      name,
		"arguments": arguments,
	}, c.toolCallTimeout)
}

// Stop releases the transport and leaves the connection StateStopped.
// Idempotent and non-failing regardless of prior state.
func (c *Connection) Stop() {
	c.mu.Lock()
	alreadyStopped := c.state == StateStopped
	c.state = StateStopped
	c.mu.Unlock()
	if alreadyStopped {
		return
	}

	c.transport.Release()
	c.logger.Debug("connection stopped")
}
