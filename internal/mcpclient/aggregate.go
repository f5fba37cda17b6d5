package mcpclient

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// GetAllTools fans tools/list out across all live connections and merges
// the results per server name. Servers that fail or return nothing are
// omitted; one broken server never aborts aggregation for the rest.
func (m *Manager) GetAllTools(ctx context.Context) map[string][]ToolInfo {
	return aggregate(ctx, m, (*Connection).ListTools)
}

// GetAllResources is GetAllTools for resources/list.
func (m *Manager) GetAllResources(ctx context.Context) map[string][]ResourceInfo {
	return aggregate(ctx, m, (*Connection).ListResources)
}

func aggregate[T any](ctx context.Context, m *Manager, query func(*Connection, context.Context) []T) map[string][]T {
	conns := m.snapshot()

	var mu sync.Mutex
	out := make(map[string][]T, len(conns))

	g, ctx := errgroup.WithContext(ctx)
	for name, conn := range conns {
		g.Go(func() error {
			items := query(conn, ctx)
			if len(items) == 0 {
				return nil
			}
			mu.Lock()
			out[name] = items
			mu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck // queries absorb failures into empty results

	return out
}
