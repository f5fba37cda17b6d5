package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromExpandsEnvValuesAfterParsing(t *testing.T) {
	t.Setenv("API_TOKEN", `abc"def`)

	path := filepath.Join(t.TempDir(), "config.toml")
	const raw = `
[servers.github]
url = "https://example.com/mcp"
headers = { Authorization = "Bearer ${API_TOKEN}" }
`
	if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	got := cfg.Servers["github"].Headers["Authorization"]
	want := `Bearer abc"def`
	if got != want {
		t.Fatalf("Authorization header = %q, want %q", got, want)
	}
}

func TestLoadFromExpandsProviderAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-123")

	path := filepath.Join(t.TempDir(), "config.toml")
	const raw = `
[provider]
name = "openai"
model = "gpt-4o"
api_key = "${OPENAI_API_KEY}"
`
	if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Provider.APIKey != "sk-test-123" {
		t.Fatalf("api_key = %q, want expanded", cfg.Provider.APIKey)
	}
}

func TestLoadFromMissingFileReturnsEmptyConfig(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg == nil || cfg.Servers == nil {
		t.Fatal("LoadFrom() returned nil config or servers map")
	}
	if len(cfg.Servers) != 0 {
		t.Fatalf("servers len = %d, want 0", len(cfg.Servers))
	}
}

func TestLoadForEditPreservesPlaceholders(t *testing.T) {
	t.Setenv("API_TOKEN", "secret")

	path := filepath.Join(t.TempDir(), "config.toml")
	const raw = `
[servers.github]
url = "https://example.com/mcp"
headers = { Authorization = "Bearer ${API_TOKEN}" }
`
	if err := os.WriteFile(path, []byte(raw), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadForEditFrom(path)
	if err != nil {
		t.Fatalf("LoadForEditFrom() error = %v", err)
	}

	got := cfg.Servers["github"].Headers["Authorization"]
	want := "Bearer ${API_TOKEN}"
	if got != want {
		t.Fatalf("Authorization header = %q, want placeholder preserved %q", got, want)
	}
}

func TestServerConfigEnabledDefaultsTrue(t *testing.T) {
	srv := ServerConfig{Command: "srv"}
	if !srv.IsEnabled() {
		t.Fatal("IsEnabled() = false with no enabled key, want true")
	}

	off := false
	srv.Enabled = &off
	if srv.IsEnabled() {
		t.Fatal("IsEnabled() = true with enabled = false")
	}
}
