package paths

import (
	"os"
	"path/filepath"
)

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	h, _ := os.UserHomeDir()
	return h
}

func xdgDir(envVar, fallbackSuffix string) string {
	if v := os.Getenv(envVar); v != "" {
		return filepath.Join(v, "mcpchat")
	}
	return filepath.Join(homeDir(), fallbackSuffix, "mcpchat")
}

// ConfigDir returns the mcpchat config directory ($XDG_CONFIG_HOME/mcpchat).
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir returns the mcpchat cache directory ($XDG_CACHE_HOME/mcpchat).
func CacheDir() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// StateDir returns the mcpchat state directory ($XDG_STATE_HOME/mcpchat).
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

// ConfigFile returns the path to config.toml.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// ListingsCacheDir returns the directory for cached tool and resource listings.
func ListingsCacheDir() string {
	return filepath.Join(CacheDir(), "listings")
}

// TranscriptsDir returns the directory for saved chat transcripts.
func TranscriptsDir() string {
	return filepath.Join(StateDir(), "transcripts")
}

// EnsureDir creates a directory and parents if needed.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0700)
}
