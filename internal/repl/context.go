package repl

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lydakis/mcpchat/internal/mcpclient"
)

// maxContextResources caps how many resources per server get listed in
// the per-message context.
const maxContextResources = 10

// renderContext turns the current tool and resource listings into a
// context block appended to the user's message, so models without
// native tool support still know what exists.
func renderContext(tools map[string][]mcpclient.ToolInfo, resources map[string][]mcpclient.ResourceInfo) string {
	if len(tools) == 0 && len(resources) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n[Available MCP Tools - Use these automatically when needed]:\n")

	for _, server := range sortedKeys(tools) {
		fmt.Fprintf(&b, "\nFrom %s:\n", server)
		for _, tool := range tools[server] {
			desc := tool.Description
			if desc == "" {
				desc = "No description"
			}
			fmt.Fprintf(&b, "  - %s: %s\n", tool.Name, desc)
			if params := schemaParamNames(tool.InputSchema); len(params) > 0 {
				fmt.Fprintf(&b, "    Parameters: %s\n", strings.Join(params, ", "))
			}
		}
	}

	if len(resources) > 0 {
		b.WriteString("\nAvailable Resources:\n")
		for _, server := range sortedKeys(resources) {
			fmt.Fprintf(&b, "\nFrom %s:\n", server)
			list := resources[server]
			if len(list) > maxContextResources {
				list = list[:maxContextResources]
			}
			for _, res := range list {
				name := res.Name
				if name == "" {
					name = res.URI
				}
				fmt.Fprintf(&b, "  - %s", name)
				if res.URI != "" && res.URI != name {
					fmt.Fprintf(&b, " (%s)", res.URI)
				}
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func schemaParamNames(schema json.RawMessage) []string {
	if len(schema) == 0 {
		return nil
	}
	var parsed struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(schema, &parsed); err != nil {
		return nil
	}
	names := make([]string, 0, len(parsed.Properties))
	for name := range parsed.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
