package mcpclient

import (
	"context"
	"time"

	"github.com/lydakis/mcpchat/internal/jsonrpc"
)

const probeTimeout = 10 * time.Second

// ProbeResult summarizes what an HTTP endpoint answered to a capability
// probe. Fields are cumulative: a server cannot support tools without
// being MCP compatible.
type ProbeResult struct {
	Reachable         bool   `json:"reachable"`
	MCPCompatible     bool   `json:"mcp_compatible"`
	SupportsResources bool   `json:"supports_resources"`
	SupportsTools     bool   `json:"supports_tools"`
	Err               string `json:"error,omitempty"`
}

// ProbeHTTP checks whether url speaks the MCP JSON-RPC protocol by
// running a throwaway handshake plus resources/list and tools/list.
// The connection is not kept; this feeds diagnostics only.
func ProbeHTTP(ctx context.Context, url string) ProbeResult {
	transport := NewHTTPTransport(url, nil)
	defer transport.Release()

	// Health probe failure alone does not mean unreachable; plenty of
	// servers only implement /message.
	_ = transport.Acquire(ctx)

	var result ProbeResult

	initResp, err := sendProbe(ctx, transport, 1, methodInitialize, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    clientName + "-probe",
			"version": clientVersion,
		},
	})
	if err != nil {
		result.Err = err.Error()
		return result
	}

	result.Reachable = true
	if !initResp.HasResult() {
		return result
	}
	result.MCPCompatible = true

	if resp, err := sendProbe(ctx, transport, 2, methodResourcesList, nil); err == nil && resp.HasResult() {
		result.SupportsResources = true
	}
	if resp, err := sendProbe(ctx, transport, 3, methodToolsList, nil); err == nil && resp.HasResult() {
		result.SupportsTools = true
	}

	return result
}

func sendProbe(ctx context.Context, transport *HTTPTransport, id int64, method string, params any) (*jsonrpc.Response, error) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return transport.SendRequest(probeCtx, jsonrpc.NewRequest(id, method, params))
}
