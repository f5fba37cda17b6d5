// Package jsonrpc holds the JSON-RPC 2.0 envelope types spoken with MCP
// servers. Every message is a single UTF-8 JSON document; over stdio it is
// framed as one newline-terminated line with no length prefix or batching.
package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Version is the protocol version carried in every envelope.
const Version = "2.0"

// Request is an outgoing call or notification. A nil ID marks a
// notification: no response is expected and none is awaited.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int64 `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response correlates back to a Request by ID and carries either a result
// or an error payload, never both.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the error payload of a failed response.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// NewRequest builds a request envelope with the given id.
func NewRequest(id int64, method string, params any) *Request {
	return &Request{
		JSONRPC: Version,
		ID:      &id,
		Method:  method,
		Params:  params,
	}
}

// NewNotification builds a fire-and-forget envelope without an id.
func NewNotification(method string, params any) *Request {
	return &Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
	}
}

// IsNotification reports whether the request carries no id.
func (r *Request) IsNotification() bool {
	return r == nil || r.ID == nil
}

// HasResult reports whether the response carries a usable result payload.
// Responses with an error payload or without a result are failures.
func (r *Response) HasResult() bool {
	return r != nil && r.Error == nil && len(r.Result) > 0
}
