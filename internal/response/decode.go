package response

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// Decode turns a raw tools/call result payload into a typed
// CallToolResult. Content items with unknown types are kept as text so
// nothing a server sends silently disappears. Returns nil for empty or
// unparseable payloads.
func Decode(raw json.RawMessage) *mcp.CallToolResult {
	if len(raw) == 0 {
		return nil
	}

	var wire struct {
		Content           []json.RawMessage `json:"content"`
		IsError           bool              `json:"isError"`
		StructuredContent any               `json:"structuredContent"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil
	}

	result := &mcp.CallToolResult{
		IsError:           wire.IsError,
		StructuredContent: wire.StructuredContent,
	}
	for _, item := range wire.Content {
		if content, ok := decodeContent(item); ok {
			result.Content = append(result.Content, content)
		}
	}
	return result
}

func decodeContent(raw json.RawMessage) (mcp.Content, bool) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, false
	}

	switch probe.Type {
	case "text":
		var c mcp.TextContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, false
		}
		return c, true
	case "image":
		var c mcp.ImageContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, false
		}
		return c, true
	case "resource":
		var c struct {
			Resource json.RawMessage `json:"resource"`
		}
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, false
		}
		resource, ok := decodeResourceContents(c.Resource)
		if !ok {
			return nil, false
		}
		return mcp.EmbeddedResource{Type: "resource", Resource: resource}, true
	default:
		// Unknown content type: preserve the raw JSON as text.
		return mcp.TextContent{Type: "text", Text: string(raw)}, true
	}
}

func decodeResourceContents(raw json.RawMessage) (mcp.ResourceContents, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var probe struct {
		Blob string `json:"blob"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, false
	}

	if probe.Blob != "" {
		var r mcp.BlobResourceContents
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, false
		}
		return r, true
	}

	var r mcp.TextResourceContents
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false
	}
	return r, true
}
