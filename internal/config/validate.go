package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

var knownProviders = map[string]bool{
	"openai":     true,
	"openrouter": true,
	"custom":     true,
}

// Validate checks configuration invariants and returns actionable errors.
func Validate(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	var errs []error
	errs = append(errs, validateProvider(cfg.Provider)...)

	names := make([]string, 0, len(cfg.Servers))
	for name := range cfg.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		errs = append(errs, validateServer(name, cfg.Servers[name])...)
	}

	return errors.Join(errs...)
}

// ValidateForCurrentEnv checks config invariants after expanding ${ENV_VAR}
// placeholders against the current process environment.
func ValidateForCurrentEnv(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	expanded := cloneConfig(cfg)
	expandConfigEnvVars(expanded)
	return Validate(expanded)
}

func validateProvider(p ProviderConfig) []error {
	var errs []error

	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "" {
		// Provider is optional; one-shot CLI commands work without it.
		return nil
	}
	if !knownProviders[name] {
		errs = append(errs, fmt.Errorf("provider.name: unknown provider %q (openai, openrouter, or custom)", p.Name))
	}
	if name == "custom" && strings.TrimSpace(p.BaseURL) == "" {
		errs = append(errs, fmt.Errorf("provider.base_url: required for custom provider"))
	}
	if p.BaseURL != "" {
		if _, err := url.ParseRequestURI(p.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("provider.base_url: invalid URL %q: %w", p.BaseURL, err))
		}
	}
	if strings.TrimSpace(p.Model) == "" {
		errs = append(errs, fmt.Errorf("provider.model: required when a provider is configured"))
	}

	return errs
}

func validateServer(name string, srv ServerConfig) []error {
	var errs []error

	hasCommand := strings.TrimSpace(srv.Command) != ""
	hasURL := strings.TrimSpace(srv.URL) != ""

	switch {
	case hasCommand && hasURL:
		errs = append(errs, fmt.Errorf("servers.%s: configure either command (stdio) or url (http), not both", name))
	case !hasCommand && !hasURL:
		errs = append(errs, fmt.Errorf("servers.%s: missing transport, set command (stdio) or url (http)", name))
	}

	if hasURL {
		if _, err := url.ParseRequestURI(srv.URL); err != nil {
			errs = append(errs, fmt.Errorf("servers.%s.url: invalid URL %q: %w", name, srv.URL, err))
		}
	}

	if err := validateDuration(srv.DefaultTimeout); err != nil {
		errs = append(errs, fmt.Errorf("servers.%s.default_timeout: %w", name, err))
	}
	if err := validateDuration(srv.ListingsTTL); err != nil {
		errs = append(errs, fmt.Errorf("servers.%s.listings_ttl: %w", name, err))
	}

	return errs
}

func validateDuration(raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if d <= 0 {
		return fmt.Errorf("must be > 0, got %q", raw)
	}
	return nil
}

func cloneConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}

	cloned := &Config{
		Provider:        cfg.Provider,
		FallbackSources: append([]string(nil), cfg.FallbackSources...),
		Servers:         make(map[string]ServerConfig, len(cfg.Servers)),
	}

	for name, srv := range cfg.Servers {
		cloned.Servers[name] = cloneServerConfig(srv)
	}

	return cloned
}

func cloneServerConfig(srv ServerConfig) ServerConfig {
	cloned := srv
	cloned.Args = append([]string(nil), srv.Args...)
	cloned.Env = cloneStringMap(srv.Env)
	cloned.Headers = cloneStringMap(srv.Headers)
	if srv.Enabled != nil {
		val := *srv.Enabled
		cloned.Enabled = &val
	}
	return cloned
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
