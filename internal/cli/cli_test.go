package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lydakis/mcpchat/internal/config"
)

// swapRootWriters redirects the package-level output writers for one
// test and restores them afterwards.
func swapRootWriters(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	oldOut, oldErr := rootStdout, rootStderr
	t.Cleanup(func() {
		rootStdout = oldOut
		rootStderr = oldErr
	})
	var out, errOut bytes.Buffer
	rootStdout = &out
	rootStderr = &errOut
	return &out, &errOut
}

// isolateEnv points config, cache, and state at temp directories.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func writeTestConfig(t *testing.T, body string) {
	t.Helper()
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "mcpchat")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestRunVersionFlag(t *testing.T) {
	out, errOut := swapRootWriters(t)
	oldVersion := buildVersion
	defer func() { buildVersion = oldVersion }()
	buildVersion = "1.2.3"

	if code := Run([]string{"--version"}); code != ExitOK {
		t.Fatalf("code = %d, want %d", code, ExitOK)
	}
	if out.String() != "mcpchat 1.2.3\n" {
		t.Fatalf("output = %q, want %q", out.String(), "mcpchat 1.2.3\n")
	}
	if errOut.Len() != 0 {
		t.Fatalf("stderr = %q, want empty", errOut.String())
	}
}

func TestRunHelpFlag(t *testing.T) {
	out, _ := swapRootWriters(t)

	if code := Run([]string{"-h"}); code != ExitOK {
		t.Fatalf("code = %d, want %d", code, ExitOK)
	}
	if !strings.Contains(out.String(), "mcpchat call <server> <tool>") {
		t.Fatalf("help output missing command surface: %q", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	isolateEnv(t)
	_, errOut := swapRootWriters(t)

	if code := Run([]string{"frobnicate"}); code != ExitUsageErr {
		t.Fatalf("code = %d, want %d", code, ExitUsageErr)
	}
	if !strings.Contains(errOut.String(), "unknown command") {
		t.Fatalf("stderr = %q, want unknown command message", errOut.String())
	}
}

func TestRunNoArgsLaunchesChat(t *testing.T) {
	isolateEnv(t)
	swapRootWriters(t)
	writeTestConfig(t, `
[provider]
name = "openai"
model = "gpt-4o"
api_key = "sk-test"

[servers.files]
command = "file-server"
`)

	oldLaunch := launchREPL
	defer func() { launchREPL = oldLaunch }()

	var gotCfg *config.Config
	launchREPL = func(cfg *config.Config) int {
		gotCfg = cfg
		return ExitOK
	}

	if code := Run(nil); code != ExitOK {
		t.Fatalf("code = %d, want %d", code, ExitOK)
	}
	if gotCfg == nil {
		t.Fatal("chat loop was not launched")
	}
	if gotCfg.Provider.Model != "gpt-4o" {
		t.Fatalf("model = %q, want gpt-4o", gotCfg.Provider.Model)
	}
	if _, ok := gotCfg.Servers["files"]; !ok {
		t.Fatal("server files missing from loaded config")
	}
}

func TestExtractDebugFlag(t *testing.T) {
	defer func() { debugLogging = false }()

	got := extractDebugFlag([]string{"tools", "--debug", "files"})
	want := []string{"tools", "files"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("args = %v, want %v", got, want)
	}
	if !debugLogging {
		t.Fatal("debugLogging = false, want true")
	}
}

func TestRunServersText(t *testing.T) {
	isolateEnv(t)
	out, _ := swapRootWriters(t)
	writeTestConfig(t, `
[servers.files]
command = "file-server"

[servers.web]
url = "https://example.com/mcp"
enabled = false
`)

	if code := Run([]string{"servers"}); code != ExitOK {
		t.Fatalf("code = %d, want %d", code, ExitOK)
	}

	text := out.String()
	if !strings.Contains(text, "files") || !strings.Contains(text, "stdio") {
		t.Fatalf("output missing stdio server: %q", text)
	}
	if !strings.Contains(text, "web") || !strings.Contains(text, "disabled") {
		t.Fatalf("output missing disabled http server: %q", text)
	}
	filesLine := text[:strings.Index(text, "\n")]
	if !strings.HasPrefix(filesLine, "files") {
		t.Fatalf("servers not sorted, first line = %q", filesLine)
	}
}

func TestRunServersJSON(t *testing.T) {
	isolateEnv(t)
	out, _ := swapRootWriters(t)
	writeTestConfig(t, `
[servers.web]
url = "https://example.com/mcp"
`)

	if code := Run([]string{"servers", "--json"}); code != ExitOK {
		t.Fatalf("code = %d, want %d", code, ExitOK)
	}
	if !strings.Contains(out.String(), `"transport": "http"`) {
		t.Fatalf("JSON output = %q, want http transport entry", out.String())
	}
}

func TestRunServersEmptyConfig(t *testing.T) {
	isolateEnv(t)
	out, _ := swapRootWriters(t)

	if code := Run([]string{"servers"}); code != ExitOK {
		t.Fatalf("code = %d, want %d", code, ExitOK)
	}
	if !strings.Contains(out.String(), "No MCP servers configured.") {
		t.Fatalf("output = %q, want empty-config message", out.String())
	}
}

func TestRunToolsUnknownServer(t *testing.T) {
	isolateEnv(t)
	_, errOut := swapRootWriters(t)
	writeTestConfig(t, `
[servers.files]
command = "file-server"
`)

	if code := Run([]string{"tools", "nope"}); code != ExitUsageErr {
		t.Fatalf("code = %d, want %d", code, ExitUsageErr)
	}
	if !strings.Contains(errOut.String(), "unknown server: nope") {
		t.Fatalf("stderr = %q, want unknown server message", errOut.String())
	}
	if !strings.Contains(errOut.String(), "files") {
		t.Fatalf("stderr = %q, want available server listing", errOut.String())
	}
}

func TestRunToolsUsage(t *testing.T) {
	isolateEnv(t)
	_, errOut := swapRootWriters(t)

	if code := Run([]string{"tools"}); code != ExitUsageErr {
		t.Fatalf("code = %d, want %d", code, ExitUsageErr)
	}
	if !strings.Contains(errOut.String(), "usage: mcpchat tools") {
		t.Fatalf("stderr = %q, want usage message", errOut.String())
	}
}

func TestRunCallUsage(t *testing.T) {
	isolateEnv(t)
	_, errOut := swapRootWriters(t)

	if code := Run([]string{"call", "files"}); code != ExitUsageErr {
		t.Fatalf("code = %d, want %d", code, ExitUsageErr)
	}
	if !strings.Contains(errOut.String(), "usage: mcpchat call") {
		t.Fatalf("stderr = %q, want usage message", errOut.String())
	}
}

func TestRunProbeRejectsNonHTTP(t *testing.T) {
	isolateEnv(t)
	_, errOut := swapRootWriters(t)

	if code := Run([]string{"probe", "ftp://example.com"}); code != ExitUsageErr {
		t.Fatalf("code = %d, want %d", code, ExitUsageErr)
	}
	if !strings.Contains(errOut.String(), "http(s) URL") {
		t.Fatalf("stderr = %q, want URL scheme message", errOut.String())
	}
}
