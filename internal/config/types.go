package config

// Config is the top-level mcpchat configuration.
type Config struct {
	Provider        ProviderConfig          `toml:"provider"`
	Servers         map[string]ServerConfig `toml:"servers"`
	FallbackSources []string                `toml:"fallback_sources"`
}

// ProviderConfig selects the chat model provider.
type ProviderConfig struct {
	// Name is "openai", "openrouter", or "custom" (requires base_url).
	Name    string `toml:"name"`
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// ServerConfig describes how to connect to a single MCP server.
type ServerConfig struct {
	// Stdio transport
	Command string            `toml:"command"`
	Args    []string          `toml:"args"`
	Env     map[string]string `toml:"env"`

	// HTTP transport
	URL     string            `toml:"url"`
	Headers map[string]string `toml:"headers"`

	// Enabled defaults to true; disabled servers are skipped at chat
	// startup but stay addressable by explicit CLI commands.
	Enabled *bool `toml:"enabled"`

	// DefaultTimeout overrides the tool-call timeout for this server.
	DefaultTimeout string `toml:"default_timeout"`

	// ListingsTTL overrides how long cached tool/resource listings live.
	ListingsTTL string `toml:"listings_ttl"`
}

// IsStdio returns true if the server uses stdio transport.
func (s ServerConfig) IsStdio() bool {
	return s.Command != ""
}

// IsHTTP returns true if the server uses HTTP transport.
func (s ServerConfig) IsHTTP() bool {
	return s.URL != ""
}

// IsEnabled returns true unless the server is explicitly disabled.
func (s ServerConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}
