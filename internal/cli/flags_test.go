package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestParseToolCallArgsPositionalJSON(t *testing.T) {
	parsed, err := parseToolCallArgs([]string{`{"query":"mcp","page":2}`}, bytes.NewBuffer(nil), true)
	if err != nil {
		t.Fatalf("parseToolCallArgs() error = %v", err)
	}

	if parsed.toolArgs["query"] != "mcp" {
		t.Fatalf("query = %v, want mcp", parsed.toolArgs["query"])
	}
	page, ok := parsed.toolArgs["page"].(float64)
	if !ok || page != 2 {
		t.Fatalf("page = %#v, want 2", parsed.toolArgs["page"])
	}
}

func TestParseToolCallArgsLongFlags(t *testing.T) {
	parsed, err := parseToolCallArgs([]string{"--query=mcp", "--limit", "5"}, bytes.NewBuffer(nil), true)
	if err != nil {
		t.Fatalf("parseToolCallArgs() error = %v", err)
	}

	want := map[string]any{"query": "mcp", "limit": "5"}
	if !reflect.DeepEqual(parsed.toolArgs, want) {
		t.Fatalf("toolArgs = %#v, want %#v", parsed.toolArgs, want)
	}
}

func TestParseToolCallArgsBooleanFlags(t *testing.T) {
	parsed, err := parseToolCallArgs([]string{"--recursive", "--no-follow"}, bytes.NewBuffer(nil), true)
	if err != nil {
		t.Fatalf("parseToolCallArgs() error = %v", err)
	}

	if parsed.toolArgs["recursive"] != true {
		t.Fatalf("recursive = %#v, want true", parsed.toolArgs["recursive"])
	}
	if parsed.toolArgs["follow"] != false {
		t.Fatalf("follow = %#v, want false", parsed.toolArgs["follow"])
	}
}

func TestParseToolCallArgsRepeatedFlagBecomesArray(t *testing.T) {
	parsed, err := parseToolCallArgs([]string{"--tag=a", "--tag=b"}, bytes.NewBuffer(nil), true)
	if err != nil {
		t.Fatalf("parseToolCallArgs() error = %v", err)
	}

	want := []any{"a", "b"}
	if !reflect.DeepEqual(parsed.toolArgs["tag"], want) {
		t.Fatalf("tag = %#v, want %#v", parsed.toolArgs["tag"], want)
	}
}

func TestParseToolCallArgsToolPrefixEscapesReservedFlags(t *testing.T) {
	parsed, err := parseToolCallArgs([]string{"--tool-verbose=yes"}, bytes.NewBuffer(nil), true)
	if err != nil {
		t.Fatalf("parseToolCallArgs() error = %v", err)
	}

	if parsed.verbose {
		t.Fatal("verbose = true, want false")
	}
	if parsed.toolArgs["verbose"] != "yes" {
		t.Fatalf("tool verbose = %#v, want %q", parsed.toolArgs["verbose"], "yes")
	}
}

func TestParseToolCallArgsSeparatorDisablesReservedFlags(t *testing.T) {
	parsed, err := parseToolCallArgs([]string{"--quiet", "--", "--help=true"}, bytes.NewBuffer(nil), true)
	if err != nil {
		t.Fatalf("parseToolCallArgs() error = %v", err)
	}

	if !parsed.quiet {
		t.Fatal("quiet = false, want true")
	}
	if parsed.help {
		t.Fatal("help = true, want false")
	}
	if parsed.toolArgs["help"] != "true" {
		t.Fatalf("tool help = %#v, want %q", parsed.toolArgs["help"], "true")
	}
}

func TestParseToolCallArgsStdinJSONWhenPiped(t *testing.T) {
	stdin := strings.NewReader(`{"path":"/tmp/x"}`)
	parsed, err := parseToolCallArgs(nil, stdin, false)
	if err != nil {
		t.Fatalf("parseToolCallArgs() error = %v", err)
	}

	if parsed.toolArgs["path"] != "/tmp/x" {
		t.Fatalf("path = %#v, want /tmp/x", parsed.toolArgs["path"])
	}
}

func TestParseToolCallArgsFlagsSkipStdin(t *testing.T) {
	stdin := strings.NewReader(`{"path":"/tmp/x"}`)
	parsed, err := parseToolCallArgs([]string{"--query=mcp"}, stdin, false)
	if err != nil {
		t.Fatalf("parseToolCallArgs() error = %v", err)
	}

	if _, ok := parsed.toolArgs["path"]; ok {
		t.Fatal("stdin JSON was read despite explicit flags")
	}
}

func TestParseToolCallArgsRejectsMixedStyles(t *testing.T) {
	cases := [][]string{
		{"--query=mcp", `{"a":1}`},
		{`{"a":1}`, "--query=mcp"},
		{`{"a":1}`, `{"b":2}`},
		{"-x"},
	}
	for _, args := range cases {
		if _, err := parseToolCallArgs(args, bytes.NewBuffer(nil), true); err == nil {
			t.Fatalf("parseToolCallArgs(%v) error = nil, want non-nil", args)
		}
	}
}

func TestParseJSONObjectRejectsNonObject(t *testing.T) {
	if _, err := parseJSONObject(`[1,2]`); err == nil {
		t.Fatal("parseJSONObject() error = nil, want non-nil")
	}
}
