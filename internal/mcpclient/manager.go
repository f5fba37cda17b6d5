package mcpclient

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lydakis/mcpchat/internal/config"
)

// Manager is a concurrency-safe registry mapping server names to
// Connections. Construct one explicitly and pass it to whoever needs it;
// its lifecycle is construct, use, StopAll.
//
// The registry lock is held for the whole of StartServer, handshake
// included: two concurrent starts of the same name can never both
// register, at the cost of a slow handshake briefly blocking other
// registry operations.
type Manager struct {
	logger *slog.Logger

	mu    sync.Mutex
	conns map[string]*Connection
}

// NewManager creates an empty registry.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger: logger,
		conns:  make(map[string]*Connection),
	}
}

// newTransport is a seam for tests to substitute fake transports.
var newTransport = NewTransport

// NewTransport builds the transport matching a server config. An
// unconfigurable transport kind is a programming/config error and the one
// case reported as a real error.
func NewTransport(scfg config.ServerConfig) (Transport, error) {
	switch {
	case scfg.IsStdio():
		return NewStdioTransport(scfg.Command, scfg.Args, scfg.Env), nil
	case scfg.IsHTTP():
		return NewHTTPTransport(scfg.URL, scfg.Headers), nil
	default:
		return nil, fmt.Errorf("no command or url configured")
	}
}

// StartServer registers and starts a named connection. Starting an
// already-registered name is a no-op success. Returns false when
// acquisition or the handshake fails; the registry is then unchanged and
// the same name may be retried.
func (m *Manager) StartServer(ctx context.Context, name string, scfg config.ServerConfig) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conns[name]; ok {
		return true
	}

	transport, err := newTransport(scfg)
	if err != nil {
		m.logger.Warn("cannot start server", "server", name, "error", err)
		return false
	}

	conn := NewConnection(name, transport, m.logger)
	if scfg.DefaultTimeout != "" {
		if d, err := time.ParseDuration(scfg.DefaultTimeout); err == nil {
			conn.SetToolCallTimeout(d)
		}
	}

	if !conn.Start(ctx) {
		m.logger.Debug("server failed to start", "server", name)
		return false
	}

	m.conns[name] = conn
	m.logger.Debug("server started", "server", name)
	return true
}

// StopServer stops and removes a named connection; no-op if absent.
func (m *Manager) StopServer(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conn, ok := m.conns[name]; ok {
		conn.Stop()
		delete(m.conns, name)
	}
}

// StopAll stops every registered connection and clears the registry.
// Safe to call repeatedly and concurrently with StartServer; it leaves
// no half-stopped entries behind.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, conn := range m.conns {
		conn.Stop()
		delete(m.conns, name)
	}
}

// Connection returns the named connection, or nil.
func (m *Manager) Connection(name string) *Connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conns[name]
}

// IsConnected reports whether name is registered and initialized.
func (m *Manager) IsConnected(name string) bool {
	conn := m.Connection(name)
	return conn != nil && conn.Initialized()
}

// Names returns the registered server names, sorted.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.conns))
	for name := range m.conns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// snapshot copies the registry so aggregation can query connections
// without holding the lock across network calls.
func (m *Manager) snapshot() map[string]*Connection {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]*Connection, len(m.conns))
	for name, conn := range m.conns {
		out[name] = conn
	}
	return out
}
