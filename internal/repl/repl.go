// Package repl is the interactive chat loop: plain line-oriented input
// with backtick shell escapes, slash commands, @file mentions, and a
// native tool-calling loop over the connected MCP servers.
package repl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/lydakis/mcpchat/internal/catalog"
	"github.com/lydakis/mcpchat/internal/config"
	"github.com/lydakis/mcpchat/internal/mcpclient"
	"github.com/lydakis/mcpchat/internal/provider"
	"github.com/lydakis/mcpchat/internal/response"
)

const (
	prompt = "mcpchat> "

	// maxToolIterations bounds the tool-calling loop for one user turn.
	maxToolIterations = 5

	// maxToolResultBytes caps a single tool result in the chat history.
	maxToolResultBytes = 30_000

	systemPrompt = "You are mcpchat, a command-line assistant. You can call " +
		"tools provided by connected MCP servers; use them whenever they help " +
		"answer the user. Prefer concise answers formatted for a terminal."
)

// chatClient is the provider surface the loop needs.
type chatClient interface {
	ChatCompletion(ctx context.Context, req provider.ChatRequest) (*provider.Message, error)
	ListModels(ctx context.Context) ([]string, error)
}

// REPL drives one interactive session.
type REPL struct {
	cfg       *config.Config
	client    chatClient
	model     string
	manager   *mcpclient.Manager
	logger    *slog.Logger
	sessionID string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	history []provider.Message

	// Seams for tests.
	listTools      func(ctx context.Context) map[string][]mcpclient.ToolInfo
	listResources  func(ctx context.Context) map[string][]mcpclient.ResourceInfo
	callTool       func(ctx context.Context, server, tool string, args map[string]any) json.RawMessage
	serverNames    func() []string
	execShell      func(ctx context.Context, command string) (shellResult, error)
	saveModel      func(model string) error
	saveTranscript func(history []provider.Message) error
}

// New builds a session bound to stdin/stdout/stderr.
func New(cfg *config.Config, client chatClient, manager *mcpclient.Manager, logger *slog.Logger) *REPL {
	sessionID := uuid.NewString()
	r := &REPL{
		cfg:       cfg,
		client:    client,
		model:     cfg.Provider.Model,
		manager:   manager,
		logger:    logger.With("session", sessionID),
		sessionID: sessionID,
		in:        os.Stdin,
		out:       os.Stdout,
		errOut:    os.Stderr,
		history:   []provider.Message{{Role: "system", Content: systemPrompt}},
		execShell: runShell,
	}
	r.listTools = r.cachedTools
	r.listResources = r.cachedResources
	r.callTool = r.managerCallTool
	r.serverNames = r.manager.Names
	r.saveModel = persistModel
	r.saveTranscript = func(history []provider.Message) error {
		return writeTranscript(r.sessionID, history)
	}
	return r
}

func (r *REPL) managerCallTool(ctx context.Context, server, tool string, args map[string]any) json.RawMessage {
	conn := r.manager.Connection(server)
	if conn == nil {
		return nil
	}
	return conn.CallTool(ctx, tool, args)
}

func persistModel(model string) error {
	cfg, err := config.LoadForEdit()
	if err != nil {
		return err
	}
	cfg.Provider.Model = model
	return config.Save(cfg)
}

// Run reads lines until EOF or /exit, saving the transcript and
// stopping all servers on the way out.
func (r *REPL) Run(ctx context.Context) error {
	defer r.manager.StopAll()
	defer func() {
		if err := r.saveTranscript(r.history); err != nil {
			r.logger.Debug("saving transcript failed", "error", err)
		}
	}()

	r.logger.Info("session started", "model", r.model, "servers", len(r.manager.Names()))

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(r.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "`"):
			r.handleShell(ctx, strings.TrimSpace(strings.TrimPrefix(line, "`")))
		case strings.HasPrefix(line, "/"):
			if quit := r.handleSlash(ctx, line); quit {
				return nil
			}
		default:
			r.handleChat(ctx, line)
		}
	}
}

func (r *REPL) handleShell(ctx context.Context, command string) {
	if command == "" {
		fmt.Fprintln(r.errOut, "usage: `<command>  (for example `ls -la)")
		return
	}

	result, err := r.execShell(ctx, command)
	if err != nil {
		fmt.Fprintf(r.errOut, "shell: %v\n", err)
		return
	}
	if result.TimedOut {
		fmt.Fprintln(r.errOut, "shell: command timed out after 30s")
		return
	}
	if result.Stdout != "" {
		fmt.Fprint(r.out, ensureNewline(result.Stdout))
	}
	if result.Stderr != "" {
		fmt.Fprint(r.errOut, ensureNewline(result.Stderr))
	}
	if result.ExitCode != 0 {
		fmt.Fprintf(r.errOut, "exit code: %d\n", result.ExitCode)
	}
}

func (r *REPL) handleSlash(ctx context.Context, line string) (quit bool) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "/"))
	cmd, rest, _ := strings.Cut(body, " ")
	cmd = strings.ToLower(cmd)
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		r.printHelp()
	case "servers":
		r.printServers()
	case "tools":
		r.printTools(ctx, rest)
	case "resources":
		r.printResources(ctx, rest)
	case "read":
		r.readResource(ctx, rest)
	case "call":
		r.callToolCommand(ctx, rest)
	case "model":
		r.changeModel(ctx, rest)
	case "clear":
		r.history = r.history[:1]
		fmt.Fprintln(r.out, "Conversation history cleared.")
	case "exit", "quit":
		return true
	default:
		fmt.Fprintf(r.errOut, "unknown command: /%s (try /help)\n", cmd)
	}
	return false
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  /help                       show this help")
	fmt.Fprintln(r.out, "  /servers                    list configured servers and connection state")
	fmt.Fprintln(r.out, "  /tools [server]             list tools")
	fmt.Fprintln(r.out, "  /resources [server]         list resources")
	fmt.Fprintln(r.out, "  /read <server> <uri>        read a resource")
	fmt.Fprintln(r.out, "  /call <server> <tool> [json]  call a tool directly")
	fmt.Fprintln(r.out, "  /model [name]               show, list, or change the model")
	fmt.Fprintln(r.out, "  /clear                      clear conversation history")
	fmt.Fprintln(r.out, "  /exit                       quit")
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "  `<command>                  run a local shell command")
	fmt.Fprintln(r.out, "  @file.ext                   attach a file to your message (max 100KB)")
}

func (r *REPL) printServers() {
	if len(r.cfg.Servers) == 0 {
		fmt.Fprintln(r.out, "No MCP servers configured.")
		fmt.Fprintf(r.out, "Create a config file at %s\n", config.ExampleConfigPath())
		return
	}

	names := make([]string, 0, len(r.cfg.Servers))
	for name := range r.cfg.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		scfg := r.cfg.Servers[name]
		kind := "stdio"
		if scfg.IsHTTP() {
			kind = "http"
		}
		state := "disconnected"
		if r.manager.IsConnected(name) {
			state = "connected"
		} else if !scfg.IsEnabled() {
			state = "disabled"
		}
		fmt.Fprintf(r.out, "%s\t%s\t%s\n", name, kind, state)
	}
}

func (r *REPL) printTools(ctx context.Context, server string) {
	tools := r.listTools(ctx)
	if server != "" {
		if list, ok := tools[server]; ok {
			tools = map[string][]mcpclient.ToolInfo{server: list}
		} else {
			fmt.Fprintf(r.errOut, "no tools from %q (server unknown or unreachable)\n", server)
			return
		}
	}
	if len(tools) == 0 {
		fmt.Fprintln(r.out, "No tools available.")
		return
	}
	for _, name := range sortedKeys(tools) {
		fmt.Fprintf(r.out, "%s:\n", name)
		for _, tool := range tools[name] {
			if tool.Description != "" {
				fmt.Fprintf(r.out, "  %s\t%s\n", tool.Name, tool.Description)
			} else {
				fmt.Fprintf(r.out, "  %s\n", tool.Name)
			}
		}
	}
}

func (r *REPL) printResources(ctx context.Context, server string) {
	resources := r.listResources(ctx)
	if server != "" {
		if list, ok := resources[server]; ok {
			resources = map[string][]mcpclient.ResourceInfo{server: list}
		} else {
			fmt.Fprintf(r.errOut, "no resources from %q (server unknown or unreachable)\n", server)
			return
		}
	}
	if len(resources) == 0 {
		fmt.Fprintln(r.out, "No resources available.")
		return
	}
	for _, name := range sortedKeys(resources) {
		fmt.Fprintf(r.out, "%s:\n", name)
		for _, res := range resources[name] {
			fmt.Fprintf(r.out, "  %s\t%s\n", res.URI, res.Name)
		}
	}
}

func (r *REPL) readResource(ctx context.Context, rest string) {
	server, uri, ok := strings.Cut(rest, " ")
	if !ok || strings.TrimSpace(uri) == "" {
		fmt.Fprintln(r.errOut, "usage: /read <server> <uri>")
		return
	}
	uri = strings.TrimSpace(uri)

	conn := r.manager.Connection(server)
	if conn == nil {
		fmt.Fprintf(r.errOut, "server %q is not connected\n", server)
		return
	}
	raw := conn.ReadResource(ctx, uri)
	if raw == nil {
		fmt.Fprintf(r.errOut, "reading %s from %q failed\n", uri, server)
		return
	}
	fmt.Fprintln(r.out, string(raw))
}

func (r *REPL) callToolCommand(ctx context.Context, rest string) {
	server, rest, ok := strings.Cut(rest, " ")
	if !ok {
		fmt.Fprintln(r.errOut, "usage: /call <server> <tool> [json]")
		return
	}
	tool, rawArgs, _ := strings.Cut(strings.TrimSpace(rest), " ")
	if tool == "" {
		fmt.Fprintln(r.errOut, "usage: /call <server> <tool> [json]")
		return
	}

	args := map[string]any{}
	if trimmed := strings.TrimSpace(rawArgs); trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			fmt.Fprintf(r.errOut, "invalid JSON arguments: %v\n", err)
			return
		}
	}

	raw := r.callTool(ctx, server, tool, args)
	if raw == nil {
		fmt.Fprintf(r.errOut, "calling %s on %q failed\n", tool, server)
		return
	}

	out, isErr := response.Unwrap(response.Decode(raw))
	if isErr {
		r.errOut.Write(out) //nolint:errcheck
		return
	}
	r.out.Write(out) //nolint:errcheck
}

func (r *REPL) changeModel(ctx context.Context, name string) {
	if name == "" {
		fmt.Fprintf(r.out, "Current model: %s\n", r.model)
		models, err := r.client.ListModels(ctx)
		if err != nil {
			fmt.Fprintf(r.errOut, "listing models: %v\n", err)
			return
		}
		for _, m := range models {
			fmt.Fprintln(r.out, m)
		}
		return
	}

	r.model = name
	if err := r.saveModel(name); err != nil {
		fmt.Fprintf(r.errOut, "warning: model changed for this session but not saved: %v\n", err)
	} else {
		fmt.Fprintf(r.out, "Model changed to %s\n", name)
	}
}

func (r *REPL) handleChat(ctx context.Context, input string) {
	enhanced := expandFileMentions(input, r.errOut)

	tools := r.listTools(ctx)
	resources := r.listResources(ctx)
	enhanced += renderContext(tools, resources)

	// converse appends tool round trips as it goes; roll the whole
	// turn back on provider error so no assistant tool_calls message
	// is left without its tool result.
	base := len(r.history)
	r.history = append(r.history, provider.Message{Role: "user", Content: enhanced})

	reply, err := r.converse(ctx, catalog.BuildToolSpecs(tools))
	if err != nil {
		fmt.Fprintf(r.errOut, "provider: %v\n", err)
		r.history = r.history[:base]
		return
	}
	if reply != "" {
		r.history = append(r.history, provider.Message{Role: "assistant", Content: reply})
		fmt.Fprintln(r.out, reply)
	}
}

// converse runs the chat round trips for one user turn, executing at
// most maxToolIterations tool calls before forcing a final answer.
func (r *REPL) converse(ctx context.Context, specs []provider.ToolSpec) (string, error) {
	for iteration := 0; ; iteration++ {
		req := provider.ChatRequest{
			Model:    r.model,
			Messages: r.history,
			Tools:    specs,
		}
		if len(specs) > 0 {
			req.ToolChoice = "auto"
		}

		msg, err := r.client.ChatCompletion(ctx, req)
		if err != nil {
			return "", err
		}
		if len(msg.ToolCalls) == 0 || iteration >= maxToolIterations {
			return strings.TrimSpace(msg.Content), nil
		}

		tc := msg.ToolCalls[0]
		result := r.executeToolCall(ctx, tc)

		arguments := tc.Function.Arguments
		if arguments == "" {
			arguments = "{}"
		}
		r.history = append(r.history,
			provider.Message{
				Role: "assistant",
				ToolCalls: []provider.ToolCall{{
					ID:   tc.ID,
					Type: "function",
					Function: provider.FunctionCall{
						Name:      tc.Function.Name,
						Arguments: arguments,
					},
				}},
			},
			provider.Message{
				Role:       "tool",
				ToolCallID: tc.ID,
				Content:    result,
			},
		)
	}
}

func (r *REPL) executeToolCall(ctx context.Context, tc provider.ToolCall) string {
	args := map[string]any{}
	if raw := strings.TrimSpace(tc.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			fmt.Fprintf(r.errOut, "warning: invalid JSON arguments for %s\n", tc.Function.Name)
			args = map[string]any{}
		}
	}

	server, tool, ok := catalog.Resolve(tc.Function.Name, r.serverNames())
	if !ok {
		r.logger.Warn("model requested unknown tool", "tool", tc.Function.Name)
		return fmt.Sprintf(`{"error":"unknown tool %q: no connected server matches"}`, tc.Function.Name)
	}

	fmt.Fprintf(r.out, "[tool] %s/%s\n", server, tool)
	r.logger.Info("tool call", "server", server, "tool", tool)

	raw := r.callTool(ctx, server, tool, args)
	if raw == nil {
		return fmt.Sprintf(`{"error":"tool %s on server %s failed or the server is unavailable"}`, tool, server)
	}
	return truncateToolResult(string(raw))
}

func truncateToolResult(s string) string {
	if len(s) <= maxToolResultBytes {
		return s
	}
	return s[:maxToolResultBytes] + "\n[Truncated for context size]"
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
