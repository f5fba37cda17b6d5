package cli

import (
	"encoding/json"
	"testing"
)

func TestSchemaFlagLinesOrdersRequiredFirst(t *testing.T) {
	schema := json.RawMessage(`{
		"type": "object",
		"properties": {
			"limit": {"type": "integer", "description": "Max results"},
			"path": {"type": "string", "description": "File path"},
			"follow": {"type": "boolean"}
		},
		"required": ["path"]
	}`)

	lines := schemaFlagLines(schema)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}

	wantNames := []string{"path", "follow", "limit"}
	for i, want := range wantNames {
		if lines[i].Name != want {
			t.Fatalf("lines[%d].Name = %q, want %q", i, lines[i].Name, want)
		}
	}
	if !lines[0].Required {
		t.Fatal("path should be required")
	}
}

func TestSchemaFlagLinesRender(t *testing.T) {
	cases := []struct {
		line flagLine
		want string
	}{
		{flagLine{Name: "path", Type: "string", Required: true, Description: "File path"}, "--path <string> (required)  File path"},
		{flagLine{Name: "follow", Type: "boolean"}, "--follow"},
		{flagLine{Name: "note", Description: "first\nsecond"}, "--note  first"},
	}
	for _, tc := range cases {
		if got := tc.line.render(); got != tc.want {
			t.Fatalf("render() = %q, want %q", got, tc.want)
		}
	}
}

func TestSchemaFlagLinesToleratesBadSchema(t *testing.T) {
	if lines := schemaFlagLines(nil); lines != nil {
		t.Fatalf("lines = %v, want nil", lines)
	}
	if lines := schemaFlagLines(json.RawMessage(`not json`)); lines != nil {
		t.Fatalf("lines = %v, want nil", lines)
	}
}
