package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lydakis/mcpchat/internal/config"
	"github.com/lydakis/mcpchat/internal/paths"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestRunAddCommandAddsServer(t *testing.T) {
	isolateEnv(t)
	// "sh" so the prerequisite check passes on any unix box.
	manifest := writeManifest(t, `{"mcpServers": {"echo": {"command": "sh", "args": ["-c", "true"]}}}`)

	var out, errOut bytes.Buffer
	if code := runAddCommand([]string{manifest}, &out, &errOut); code != ExitOK {
		t.Fatalf("code = %d, want %d (stderr = %q)", code, ExitOK, errOut.String())
	}
	if !strings.Contains(out.String(), `Added server "echo"`) {
		t.Fatalf("output = %q, want added message", out.String())
	}

	cfg, err := config.LoadFrom(paths.ConfigFile())
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	srv, ok := cfg.Servers["echo"]
	if !ok {
		t.Fatal("server echo missing from saved config")
	}
	if srv.Command != "sh" {
		t.Fatalf("command = %q, want sh", srv.Command)
	}
}

func TestRunAddCommandRefusesExistingWithoutOverwrite(t *testing.T) {
	isolateEnv(t)
	writeTestConfig(t, `
[servers.echo]
command = "sh"
`)
	manifest := writeManifest(t, `{"mcpServers": {"echo": {"command": "sh"}}}`)

	var out, errOut bytes.Buffer
	if code := runAddCommand([]string{manifest}, &out, &errOut); code != ExitUsageErr {
		t.Fatalf("code = %d, want %d", code, ExitUsageErr)
	}
	if !strings.Contains(errOut.String(), "--overwrite") {
		t.Fatalf("stderr = %q, want overwrite hint", errOut.String())
	}
}

func TestRunAddCommandOverwrites(t *testing.T) {
	isolateEnv(t)
	writeTestConfig(t, `
[servers.echo]
command = "sh"
`)
	manifest := writeManifest(t, `{"mcpServers": {"echo": {"command": "sh", "args": ["-c", "true"]}}}`)

	var out, errOut bytes.Buffer
	if code := runAddCommand([]string{manifest, "--overwrite"}, &out, &errOut); code != ExitOK {
		t.Fatalf("code = %d, want %d (stderr = %q)", code, ExitOK, errOut.String())
	}
	if !strings.Contains(out.String(), `Updated server "echo"`) {
		t.Fatalf("output = %q, want updated message", out.String())
	}
}

func TestRunAddCommandMissingSourceIsInternal(t *testing.T) {
	isolateEnv(t)

	var out, errOut bytes.Buffer
	missing := filepath.Join(t.TempDir(), "nope.json")
	if code := runAddCommand([]string{missing}, &out, &errOut); code != ExitInternal {
		t.Fatalf("code = %d, want %d", code, ExitInternal)
	}
}

func TestRunAddCommandBadManifestIsUsage(t *testing.T) {
	isolateEnv(t)
	manifest := writeManifest(t, `{{{ not a manifest`)

	var out, errOut bytes.Buffer
	if code := runAddCommand([]string{manifest}, &out, &errOut); code != ExitUsageErr {
		t.Fatalf("code = %d, want %d", code, ExitUsageErr)
	}
}

func TestRunAddCommandHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := runAddCommand([]string{"--help"}, &out, &errOut); code != ExitOK {
		t.Fatalf("code = %d, want %d", code, ExitOK)
	}
	if !strings.Contains(out.String(), "mcpchat add <source>") {
		t.Fatalf("output = %q, want usage text", out.String())
	}
}

func TestParseAddArgs(t *testing.T) {
	parsed, err := parseAddArgs([]string{"manifest.json", "--name", "files", "--overwrite"})
	if err != nil {
		t.Fatalf("parseAddArgs() error = %v", err)
	}
	if parsed.source != "manifest.json" || parsed.name != "files" || !parsed.overwrite {
		t.Fatalf("parsed = %+v", parsed)
	}

	bad := [][]string{
		{},
		{"--name"},
		{"--name="},
		{"--bogus", "x"},
		{"a", "b"},
	}
	for _, args := range bad {
		if _, err := parseAddArgs(args); err == nil {
			t.Fatalf("parseAddArgs(%v) error = nil, want non-nil", args)
		}
	}
}
