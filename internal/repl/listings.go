package repl

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lydakis/mcpchat/internal/cache"
	"github.com/lydakis/mcpchat/internal/mcpclient"
)

// cachedTools returns per-server tool listings, reading the disk cache
// first and querying only servers with stale entries. Fresh listings
// are written back with the server's TTL.
func (r *REPL) cachedTools(ctx context.Context) map[string][]mcpclient.ToolInfo {
	out := make(map[string][]mcpclient.ToolInfo)
	for _, name := range r.manager.Names() {
		if payload, ok := cache.GetListing(name, cache.KindTools); ok {
			var tools []mcpclient.ToolInfo
			if json.Unmarshal(payload, &tools) == nil {
				if len(tools) > 0 {
					out[name] = tools
				}
				continue
			}
		}

		conn := r.manager.Connection(name)
		if conn == nil {
			continue
		}
		tools := conn.ListTools(ctx)
		if tools == nil {
			continue
		}
		if payload, err := json.Marshal(tools); err == nil {
			if err := cache.PutListing(name, cache.KindTools, payload, r.listingTTL(name)); err != nil {
				r.logger.Debug("caching tool listing failed", "server", name, "error", err)
			}
		}
		if len(tools) > 0 {
			out[name] = tools
		}
	}
	return out
}

func (r *REPL) cachedResources(ctx context.Context) map[string][]mcpclient.ResourceInfo {
	out := make(map[string][]mcpclient.ResourceInfo)
	for _, name := range r.manager.Names() {
		if payload, ok := cache.GetListing(name, cache.KindResources); ok {
			var resources []mcpclient.ResourceInfo
			if json.Unmarshal(payload, &resources) == nil {
				if len(resources) > 0 {
					out[name] = resources
				}
				continue
			}
		}

		conn := r.manager.Connection(name)
		if conn == nil {
			continue
		}
		resources := conn.ListResources(ctx)
		if resources == nil {
			continue
		}
		if payload, err := json.Marshal(resources); err == nil {
			if err := cache.PutListing(name, cache.KindResources, payload, r.listingTTL(name)); err != nil {
				r.logger.Debug("caching resource listing failed", "server", name, "error", err)
			}
		}
		if len(resources) > 0 {
			out[name] = resources
		}
	}
	return out
}

func (r *REPL) listingTTL(server string) time.Duration {
	scfg, ok := r.cfg.Servers[server]
	if !ok || scfg.ListingsTTL == "" {
		return cache.DefaultTTL
	}
	ttl, err := time.ParseDuration(scfg.ListingsTTL)
	if err != nil || ttl <= 0 {
		return cache.DefaultTTL
	}
	return ttl
}
