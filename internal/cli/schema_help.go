package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// flagLine is one tool parameter rendered as a CLI flag, derived from
// the tool's JSON schema.
type flagLine struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

func (f flagLine) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--%s", f.Name)
	if f.Type != "" && f.Type != "boolean" {
		fmt.Fprintf(&b, " <%s>", f.Type)
	}
	if f.Required {
		b.WriteString(" (required)")
	}
	if f.Description != "" {
		desc := f.Description
		if i := strings.IndexByte(desc, '\n'); i >= 0 {
			desc = desc[:i]
		}
		fmt.Fprintf(&b, "  %s", desc)
	}
	return b.String()
}

type schemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type toolSchema struct {
	Properties map[string]schemaProperty `json:"properties"`
	Required   []string                  `json:"required"`
}

// schemaFlagLines flattens a tool input schema into flag help lines,
// required parameters first, each group alphabetical.
func schemaFlagLines(schema json.RawMessage) []flagLine {
	if len(schema) == 0 {
		return nil
	}
	var parsed toolSchema
	if err := json.Unmarshal(schema, &parsed); err != nil {
		return nil
	}

	required := make(map[string]bool, len(parsed.Required))
	for _, name := range parsed.Required {
		required[name] = true
	}

	lines := make([]flagLine, 0, len(parsed.Properties))
	for name, prop := range parsed.Properties {
		lines = append(lines, flagLine{
			Name:        name,
			Type:        prop.Type,
			Description: prop.Description,
			Required:    required[name],
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Required != lines[j].Required {
			return lines[i].Required
		}
		return lines[i].Name < lines[j].Name
	})
	return lines
}
