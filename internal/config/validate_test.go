package config

import (
	"strings"
	"testing"
)

func TestValidateRejectsBothTransports(t *testing.T) {
	cfg := &Config{Servers: map[string]ServerConfig{
		"both": {Command: "srv", URL: "https://example.com"},
	}}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if !strings.Contains(err.Error(), "servers.both") {
		t.Fatalf("Validate() error = %q, want servers.both mentioned", err)
	}
}

func TestValidateRejectsMissingTransport(t *testing.T) {
	cfg := &Config{Servers: map[string]ServerConfig{
		"empty": {},
	}}

	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() = nil, want error for missing transport")
	}
}

func TestValidateRejectsBadDurations(t *testing.T) {
	cfg := &Config{Servers: map[string]ServerConfig{
		"srv": {Command: "srv", DefaultTimeout: "banana"},
	}}
	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() = nil, want error for invalid default_timeout")
	}

	cfg.Servers["srv"] = ServerConfig{Command: "srv", ListingsTTL: "-5s"}
	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() = nil, want error for negative listings_ttl")
	}
}

func TestValidateProvider(t *testing.T) {
	cfg := &Config{Provider: ProviderConfig{Name: "openai", Model: "gpt-4o"}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}

	cfg = &Config{Provider: ProviderConfig{Name: "carrier-pigeon", Model: "m"}}
	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() = nil, want error for unknown provider")
	}

	cfg = &Config{Provider: ProviderConfig{Name: "custom", Model: "m"}}
	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() = nil, want error for custom provider without base_url")
	}

	cfg = &Config{Provider: ProviderConfig{Name: "openai"}}
	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() = nil, want error for missing model")
	}

	// No provider at all is fine; one-shot commands do not need one.
	if err := Validate(&Config{}); err != nil {
		t.Fatalf("Validate(empty) error = %v, want nil", err)
	}
}

func TestValidateForCurrentEnvDoesNotMutate(t *testing.T) {
	t.Setenv("SRV_URL", "https://example.com/mcp")

	cfg := &Config{Servers: map[string]ServerConfig{
		"srv": {URL: "${SRV_URL}"},
	}}

	if err := ValidateForCurrentEnv(cfg); err != nil {
		t.Fatalf("ValidateForCurrentEnv() error = %v", err)
	}
	if got := cfg.Servers["srv"].URL; got != "${SRV_URL}" {
		t.Fatalf("URL = %q, want placeholder untouched", got)
	}
}
