package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/lydakis/mcpchat/internal/cache"
	"github.com/lydakis/mcpchat/internal/config"
	"github.com/lydakis/mcpchat/internal/mcpclient"
)

// withConnection starts one server, runs fn against its connection, and
// stops it again. Disabled servers are still addressable here; the
// enabled flag only gates chat startup.
func withConnection(ctx context.Context, cfg *config.Config, name string, stderr io.Writer, fn func(context.Context, *mcpclient.Connection) int) int {
	scfg, ok := cfg.Servers[name]
	if !ok {
		fmt.Fprintf(stderr, "mcpchat: unknown server: %s\n", name)
		if len(cfg.Servers) > 0 {
			fmt.Fprintln(stderr, "Available servers:")
			for _, n := range sortedServerNames(cfg.Servers) {
				fmt.Fprintf(stderr, "  %s\n", n)
			}
		}
		return ExitUsageErr
	}

	manager := mcpclient.NewManager(newLogger())
	if !manager.StartServer(ctx, name, scfg) {
		fmt.Fprintf(stderr, "mcpchat: server %q failed to start or complete the MCP handshake\n", name)
		return ExitInternal
	}
	defer manager.StopAll()

	return fn(ctx, manager.Connection(name))
}

// listingTTLFor reads a server's cache TTL override, falling back to
// the package default on absent or bad values.
func listingTTLFor(cfg *config.Config, name string) time.Duration {
	scfg, ok := cfg.Servers[name]
	if !ok || scfg.ListingsTTL == "" {
		return cache.DefaultTTL
	}
	ttl, err := time.ParseDuration(scfg.ListingsTTL)
	if err != nil || ttl <= 0 {
		return cache.DefaultTTL
	}
	return ttl
}
