package mcpclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/lydakis/mcpchat/internal/jsonrpc"
)

const (
	// settleDelay gives slow-starting servers (package-manager-fetched
	// binaries and the like) time to become ready before the handshake.
	settleDelay = 2 * time.Second

	// releaseWait bounds the graceful terminate before escalating to kill.
	releaseWait = 5 * time.Second

	// maxLineBytes caps a single response line; large tool results can
	// exceed the default bufio.Scanner limit by a wide margin.
	maxLineBytes = 10 * 1024 * 1024
)

// StdioTransport talks to a spawned child process, one newline-terminated
// JSON document per message on its stdin/stdout.
type StdioTransport struct {
	command string
	args    []string
	env     map[string]string

	settle time.Duration

	writeMu sync.Mutex
	stdin   io.WriteCloser

	mu       sync.Mutex
	cmd      *exec.Cmd
	released bool

	lines  chan string
	exited chan struct{}
}

// NewStdioTransport builds a transport that will spawn command with args
// and the process environment overridden by env.
func NewStdioTransport(command string, args []string, env map[string]string) *StdioTransport {
	return &StdioTransport{
		command: command,
		args:    append([]string(nil), args...),
		env:     env,
		settle:  settleDelay,
	}
}

// Acquire spawns the child process and waits out the settle delay.
// A process that exits before the delay elapses fails acquisition.
func (t *StdioTransport) Acquire(ctx context.Context) error {
	cmd := exec.Command(t.command, t.args...)
	cmd.Env = mergedEnviron(t.env)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}

	// A plain os.Pipe instead of StdoutPipe keeps Wait safe to call
	// while the reader goroutine is still draining output.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = nil // protocol traffic only; server logging is dropped

	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return fmt.Errorf("spawning %s: %w", t.command, err)
	}
	// The child holds its own copy of the write end.
	stdoutW.Close()

	t.mu.Lock()
	t.cmd = cmd
	t.released = false
	t.lines = make(chan string, 8)
	t.exited = make(chan struct{})
	t.mu.Unlock()

	t.writeMu.Lock()
	t.stdin = stdin
	t.writeMu.Unlock()

	go t.readLines(stdoutR)
	go func() {
		_ = cmd.Wait()
		close(t.exited)
	}()

	select {
	case <-time.After(t.settle):
	case <-ctx.Done():
		t.Release()
		return ctx.Err()
	}

	select {
	case <-t.exited:
		t.Release()
		return fmt.Errorf("%s exited during startup", t.command)
	default:
	}
	return nil
}

func (t *StdioTransport) readLines(r io.ReadCloser) {
	defer r.Close()

	lines := t.lines
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
	close(lines)
}

// SendRequest writes one line and reads lines until the response with the
// matching id arrives or ctx expires. Lines that do not parse as the
// awaited response (server logging, stray notifications) are dropped.
func (t *StdioTransport) SendRequest(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	if req.IsNotification() {
		return nil, fmt.Errorf("request requires an id")
	}
	if err := t.writeLine(req); err != nil {
		return nil, err
	}

	t.mu.Lock()
	lines := t.lines
	t.mu.Unlock()
	if lines == nil {
		return nil, fmt.Errorf("transport not acquired")
	}

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return nil, fmt.Errorf("%s closed its output stream", t.command)
			}
			var resp jsonrpc.Response
			if err := json.Unmarshal([]byte(line), &resp); err != nil {
				continue
			}
			if resp.ID != *req.ID {
				continue
			}
			return &resp, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// SendNotification writes one line without reading a response.
func (t *StdioTransport) SendNotification(req *jsonrpc.Request) error {
	return t.writeLine(req)
}

func (t *StdioTransport) writeLine(req *jsonrpc.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if t.stdin == nil {
		return fmt.Errorf("transport not acquired")
	}
	if _, err := t.stdin.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing to %s: %w", t.command, err)
	}
	return nil
}

// Release terminates the child gracefully, escalating to a hard kill
// after releaseWait. Idempotent; never fails.
func (t *StdioTransport) Release() {
	t.mu.Lock()
	if t.released || t.cmd == nil {
		t.mu.Unlock()
		return
	}
	t.released = true
	cmd := t.cmd
	exited := t.exited
	t.mu.Unlock()

	t.writeMu.Lock()
	if t.stdin != nil {
		_ = t.stdin.Close()
		t.stdin = nil
	}
	t.writeMu.Unlock()

	if cmd.Process == nil {
		return
	}
	_ = terminateProcess(cmd.Process)

	select {
	case <-exited:
	case <-time.After(releaseWait):
		_ = cmd.Process.Kill()
		<-exited
	}

	// Unblock the reader goroutine if output was left undrained.
	t.mu.Lock()
	lines := t.lines
	t.lines = nil
	t.mu.Unlock()
	if lines != nil {
		go func() {
			for range lines {
			}
		}()
	}
}

// mergedEnviron overlays overrides on the process environment.
func mergedEnviron(overrides map[string]string) []string {
	env := os.Environ()
	for k, v := range overrides {
		env = append(env, k+"="+v)
	}
	return env
}
