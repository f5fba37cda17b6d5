package mcpclient

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
)

// scriptedServer spawns sh running script as a stand-in MCP server.
func scriptedServer(t *testing.T, script string) *StdioTransport {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("scripted sh servers require a unix shell")
	}

	transport := NewStdioTransport("sh", []string{"-c", script}, nil)
	transport.settle = 50 * time.Millisecond
	return transport
}

const roundTripScript = `
read line
printf '%s\n' '{"jsonrpc":"2.0","id":1,"result":{"capabilities":{"tools":{}}}}'
read line
read line
printf '%s\n' '{"jsonrpc":"2.0","id":2,"result":{"tools":[{"name":"echo","description":"Echo input"}]}}'
cat >/dev/null
`

func TestStdioRoundTrip(t *testing.T) {
	transport := scriptedServer(t, roundTripScript)

	conn := NewConnection("scripted", transport, nil)
	defer conn.Stop()

	if !conn.Start(context.Background()) {
		t.Fatal("Start() = false against scripted server, want true")
	}

	tools := conn.ListTools(context.Background())
	if len(tools) != 1 {
		t.Fatalf("tools len = %d, want 1", len(tools))
	}
	if tools[0].Name != "echo" || tools[0].Description != "Echo input" {
		t.Fatalf("tool = %+v, want echo/Echo input", tools[0])
	}
}

func TestStdioDropsInterleavedLogging(t *testing.T) {
	const script = `
read line
printf '%s\n' 'starting up, please hold'
printf '%s\n' '{"not":"a response"}'
printf '%s\n' '{"jsonrpc":"2.0","id":1,"result":{"capabilities":{}}}'
cat >/dev/null
`
	transport := scriptedServer(t, script)

	conn := NewConnection("chatty", transport, nil)
	defer conn.Stop()

	if !conn.Start(context.Background()) {
		t.Fatal("Start() = false with interleaved log lines, want true")
	}
}

func TestStdioAcquireFailsWhenProcessExitsEarly(t *testing.T) {
	transport := scriptedServer(t, "exit 3")

	err := transport.Acquire(context.Background())
	if err == nil {
		t.Fatal("Acquire() = nil for immediately-exiting process, want error")
	}
	if !strings.Contains(err.Error(), "exited during startup") {
		t.Fatalf("Acquire() error = %v, want exit-during-startup", err)
	}
}

func TestStdioAcquireFailsForMissingBinary(t *testing.T) {
	transport := NewStdioTransport("definitely-not-a-real-binary-mcpchat", nil, nil)
	transport.settle = 10 * time.Millisecond

	if err := transport.Acquire(context.Background()); err == nil {
		t.Fatal("Acquire() = nil for missing binary, want error")
	}
}

func TestStdioSendRequestTimesOut(t *testing.T) {
	// Server swallows input and never answers.
	transport := scriptedServer(t, "cat >/dev/null")
	if err := transport.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer transport.Release()

	conn := NewConnection("silent", transport, nil)
	conn.mu.Lock()
	conn.state = StateReady
	conn.mu.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	got := conn.call(ctx, "tools/list", nil, 100*time.Millisecond)
	if got != nil {
		t.Fatalf("call() against silent server = %v, want nil", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("call() blocked %v, want prompt timeout", elapsed)
	}
	if conn.State() != StateReady {
		t.Fatalf("State() = %v after timeout, want ready (transport intact)", conn.State())
	}
}

func TestStdioReleaseIsIdempotent(t *testing.T) {
	transport := scriptedServer(t, "cat >/dev/null")
	if err := transport.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	transport.Release()
	transport.Release() // must not panic or block
}

func TestStdioEnvOverridesReachChild(t *testing.T) {
	const script = `
read line
printf '{"jsonrpc":"2.0","id":1,"result":{"capabilities":{"env":{"value":"%s"}}}}\n' "$MCPCHAT_TEST_VALUE"
cat >/dev/null
`
	if runtime.GOOS == "windows" {
		t.Skip("scripted sh servers require a unix shell")
	}

	transport := NewStdioTransport("sh", []string{"-c", script}, map[string]string{
		"MCPCHAT_TEST_VALUE": "from-config",
	})
	transport.settle = 50 * time.Millisecond

	conn := NewConnection("env", transport, nil)
	defer conn.Stop()

	if !conn.Start(context.Background()) {
		t.Fatal("Start() = false, want true")
	}
	caps := conn.Capabilities()
	if got := string(caps["env"]); !strings.Contains(got, "from-config") {
		t.Fatalf("capability echo = %s, want env override visible to child", got)
	}
}
