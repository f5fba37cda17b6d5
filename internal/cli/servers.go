package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lydakis/mcpchat/internal/config"
)

type serverListEntry struct {
	Name      string `json:"name"`
	Transport string `json:"transport"`
	Enabled   bool   `json:"enabled"`
	Target    string `json:"target"`
}

func runServersCommand(args []string, cfg *config.Config, stdout, stderr io.Writer) int {
	asJSON := false
	for _, arg := range args {
		switch arg {
		case "--json":
			asJSON = true
		default:
			fmt.Fprintf(stderr, "mcpchat: usage: mcpchat servers [--json]\n")
			return ExitUsageErr
		}
	}

	entries := serverListEntries(cfg)
	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			fmt.Fprintf(stderr, "mcpchat: %v\n", err)
			return ExitInternal
		}
		return ExitOK
	}

	if len(entries) == 0 {
		fmt.Fprintln(stdout, "No MCP servers configured.")
		fmt.Fprintf(stdout, "Create a config file at %s or run: mcpchat add <source>\n", config.ExampleConfigPath())
		return ExitOK
	}

	for _, e := range entries {
		state := "enabled"
		if !e.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(stdout, "%-20s %-6s %-9s %s\n", e.Name, e.Transport, state, e.Target)
	}
	return ExitOK
}

func serverListEntries(cfg *config.Config) []serverListEntry {
	entries := make([]serverListEntry, 0, len(cfg.Servers))
	for _, name := range sortedServerNames(cfg.Servers) {
		scfg := cfg.Servers[name]
		entry := serverListEntry{
			Name:    name,
			Enabled: scfg.IsEnabled(),
		}
		switch {
		case scfg.IsHTTP():
			entry.Transport = "http"
			entry.Target = scfg.URL
		default:
			entry.Transport = "stdio"
			entry.Target = scfg.Command
		}
		entries = append(entries, entry)
	}
	return entries
}
