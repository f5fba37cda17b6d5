package mcpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lydakis/mcpchat/internal/jsonrpc"
)

func TestProbeHTTPFullSupport(t *testing.T) {
	srv := httptest.NewServer(mcpHandler(t, func(req jsonrpc.Request) any {
		switch req.Method {
		case "initialize":
			return resultResponse(idOf(req), `{"capabilities":{"resources":{},"tools":{}}}`)
		case "resources/list":
			return resultResponse(idOf(req), `{"resources":[]}`)
		case "tools/list":
			return resultResponse(idOf(req), `{"tools":[]}`)
		default:
			return nil
		}
	}))
	defer srv.Close()

	result := ProbeHTTP(context.Background(), srv.URL)

	if !result.Reachable || !result.MCPCompatible {
		t.Fatalf("result = %+v, want reachable and compatible", result)
	}
	if !result.SupportsResources || !result.SupportsTools {
		t.Fatalf("result = %+v, want resources and tools supported", result)
	}
	if result.Err != "" {
		t.Fatalf("result.Err = %q, want empty", result.Err)
	}
}

func TestProbeHTTPPartialSupport(t *testing.T) {
	srv := httptest.NewServer(mcpHandler(t, func(req jsonrpc.Request) any {
		switch req.Method {
		case "initialize":
			return resultResponse(idOf(req), `{"capabilities":{"tools":{}}}`)
		case "tools/list":
			return resultResponse(idOf(req), `{"tools":[]}`)
		case "resources/list":
			return &jsonrpc.Response{
				JSONRPC: jsonrpc.Version,
				ID:      idOf(req),
				Error:   &jsonrpc.Error{Code: -32601, Message: "method not found"},
			}
		default:
			return nil
		}
	}))
	defer srv.Close()

	result := ProbeHTTP(context.Background(), srv.URL)

	if !result.MCPCompatible || !result.SupportsTools {
		t.Fatalf("result = %+v, want compatible with tools", result)
	}
	if result.SupportsResources {
		t.Fatal("SupportsResources = true for error payload, want false")
	}
}

func TestProbeHTTPNotMCP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hello":"world"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	result := ProbeHTTP(context.Background(), srv.URL)

	if !result.Reachable {
		t.Fatal("Reachable = false for answering server, want true")
	}
	if result.MCPCompatible {
		t.Fatal("MCPCompatible = true for non-MCP response, want false")
	}
}

func TestProbeHTTPUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result := ProbeHTTP(context.Background(), url)

	if result.Reachable {
		t.Fatal("Reachable = true for refused connection, want false")
	}
	if result.Err == "" {
		t.Fatal("Err empty for refused connection, want populated")
	}
}
