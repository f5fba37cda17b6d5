// Package response renders MCP tool results into terminal-friendly
// output: structured content as JSON, text joined by newlines, binary
// content written to temp files whose paths are printed instead.
package response

import (
	"encoding/base64"
	"encoding/json"
	"mime"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Unwrap extracts printable output from a CallToolResult.
// The second return is the server's isError flag (true also for a nil
// result, which means the call itself failed).
func Unwrap(result *mcp.CallToolResult) ([]byte, bool) {
	if result == nil {
		return nil, true
	}

	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			return ensureTrailingNewline(data), result.IsError
		}
	}

	var parts []string
	for _, content := range result.Content {
		if rendered, ok := renderContent(content); ok {
			parts = append(parts, rendered)
			continue
		}
		if raw, err := json.Marshal(content); err == nil {
			parts = append(parts, string(raw))
		}
	}

	if len(parts) == 0 {
		return nil, result.IsError
	}
	return ensureTrailingNewline([]byte(strings.Join(parts, "\n"))), result.IsError
}

func renderContent(content mcp.Content) (string, bool) {
	switch c := content.(type) {
	case mcp.TextContent:
		return c.Text, true
	case *mcp.TextContent:
		return c.Text, true
	case mcp.ImageContent:
		return renderImage(c)
	case *mcp.ImageContent:
		return renderImage(*c)
	case mcp.EmbeddedResource:
		return renderResource(c.Resource)
	case *mcp.EmbeddedResource:
		return renderResource(c.Resource)
	default:
		return "", false
	}
}

func renderImage(c mcp.ImageContent) (string, bool) {
	path, err := writeTempBase64("mcpchat-image", c.MIMEType, c.Data)
	if err != nil {
		return "", false
	}
	return path, true
}

func renderResource(resource mcp.ResourceContents) (string, bool) {
	switch r := resource.(type) {
	case mcp.TextResourceContents:
		path, err := writeTempFile("mcpchat-resource", r.MIMEType, []byte(r.Text))
		if err != nil {
			return "", false
		}
		return path, true
	case mcp.BlobResourceContents:
		path, err := writeTempBase64("mcpchat-resource", r.MIMEType, r.Blob)
		if err != nil {
			return "", false
		}
		return path, true
	default:
		return "", false
	}
}

func writeTempBase64(prefix, mimeType, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return writeTempFile(prefix, mimeType, data)
}

func writeTempFile(prefix, mimeType string, data []byte) (string, error) {
	f, err := os.CreateTemp("", prefix+"-*"+extForMIMEType(mimeType))
	if err != nil {
		return "", err
	}

	name := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

func extForMIMEType(mimeType string) string {
	mimeType = strings.TrimSpace(strings.ToLower(mimeType))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	if mimeType != "" {
		if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
			return exts[0]
		}
		if strings.HasPrefix(mimeType, "text/") {
			return ".txt"
		}
		if strings.Contains(mimeType, "json") {
			return ".json"
		}
	}
	return ".bin"
}

func ensureTrailingNewline(out []byte) []byte {
	if len(out) == 0 {
		return out
	}
	if out[len(out)-1] != '\n' {
		return append(out, '\n')
	}
	return out
}
