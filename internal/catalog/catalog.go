// Package catalog maps between MCP tool identities and the flat
// function namespace exposed to the model. Tools are advertised as
// "<server>_<tool>"; since server names may themselves contain
// underscores, resolution picks the longest matching server prefix.
package catalog

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/lydakis/mcpchat/internal/mcpclient"
	"github.com/lydakis/mcpchat/internal/provider"
)

// QualifiedName joins a server and tool name into the advertised
// function name.
func QualifiedName(server, tool string) string {
	return server + "_" + tool
}

// Resolve splits a qualified function name back into server and tool.
// Among the known servers whose name is a prefix of the qualified name,
// the longest wins, so "my_files" beats "my" for "my_files_read".
func Resolve(qualified string, servers []string) (server, tool string, ok bool) {
	best := ""
	for _, name := range servers {
		if name == "" || len(name) <= len(best) {
			continue
		}
		if strings.HasPrefix(qualified, name+"_") {
			best = name
		}
	}
	if best == "" {
		return "", "", false
	}
	return best, qualified[len(best)+1:], true
}

// emptyObjectSchema stands in for tools that advertise no input schema;
// OpenAI-compatible endpoints reject functions without parameters.
var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// BuildToolSpecs flattens per-server tool listings into provider tool
// specs, ordered by server then tool name.
func BuildToolSpecs(toolsByServer map[string][]mcpclient.ToolInfo) []provider.ToolSpec {
	servers := make([]string, 0, len(toolsByServer))
	for name := range toolsByServer {
		servers = append(servers, name)
	}
	sort.Strings(servers)

	var specs []provider.ToolSpec
	for _, server := range servers {
		tools := append([]mcpclient.ToolInfo(nil), toolsByServer[server]...)
		sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
		for _, tool := range tools {
			schema := tool.InputSchema
			if len(schema) == 0 {
				schema = emptyObjectSchema
			}
			specs = append(specs, provider.ToolSpec{
				Type: "function",
				Function: provider.FunctionSpec{
					Name:        QualifiedName(server, tool.Name),
					Description: tool.Description,
					Parameters:  schema,
				},
			})
		}
	}
	return specs
}
