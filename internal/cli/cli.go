// Package cli parses arguments and dispatches subcommands. With no
// arguments the binary drops into the interactive chat loop; everything
// else is a one-shot command against the config or a single server.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sort"

	"github.com/lydakis/mcpchat/internal/config"
	"github.com/lydakis/mcpchat/internal/mcpclient"
	"github.com/lydakis/mcpchat/internal/provider"
	"github.com/lydakis/mcpchat/internal/repl"
)

var (
	rootStdout   io.Writer = os.Stdout
	rootStderr   io.Writer = os.Stderr
	buildVersion           = "dev"

	debugLogging = false

	// launchREPL is swapped out in tests so Run can be exercised
	// without a terminal or a provider.
	launchREPL = runREPL
)

func init() {
	buildVersion = resolveBuildVersion(buildVersion)
}

// Run is the main CLI entry point. Returns an exit code.
func Run(args []string) int {
	args = extractDebugFlag(args)

	if handled, code := handleRootFlags(args); handled {
		return code
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(rootStderr, "mcpchat: %v\n", err)
		return ExitInternal
	}
	if ferr := config.MergeFallbackServers(cfg); ferr != nil {
		fmt.Fprintf(rootStderr, "mcpchat: warning: failed to load fallback MCP server config: %v\n", ferr)
	}

	if len(args) == 0 {
		return launchREPL(cfg)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "servers":
		return runServersCommand(rest, cfg, rootStdout, rootStderr)
	case "tools":
		return runToolsCommand(rest, cfg, rootStdout, rootStderr)
	case "resources":
		return runResourcesCommand(rest, cfg, rootStdout, rootStderr)
	case "call":
		return runCallCommand(rest, cfg, os.Stdin, rootStdout, rootStderr)
	case "read":
		return runReadCommand(rest, cfg, rootStdout, rootStderr)
	case "add":
		return runAddCommand(rest, rootStdout, rootStderr)
	case "remove":
		return runRemoveCommand(rest, rootStdout, rootStderr)
	case "enable":
		return runEnableCommand(rest, true, rootStdout, rootStderr)
	case "disable":
		return runEnableCommand(rest, false, rootStdout, rootStderr)
	case "probe":
		return runProbeCommand(rest, rootStdout, rootStderr)
	case "completion":
		return runCompletionCommand(rest, rootStdout, rootStderr)
	case "__complete":
		return runInternalCompletion(rest, cfg, rootStdout, rootStderr)
	default:
		fmt.Fprintf(rootStderr, "mcpchat: unknown command: %s\n", cmd)
		printRootHelp(rootStderr)
		return ExitUsageErr
	}
}

// extractDebugFlag strips --debug wherever it appears so subcommand
// parsers never see it.
func extractDebugFlag(args []string) []string {
	out := args[:0:0]
	for _, arg := range args {
		if arg == "--debug" {
			debugLogging = true
			continue
		}
		out = append(out, arg)
	}
	return out
}

func handleRootFlags(args []string) (bool, int) {
	if len(args) != 1 {
		return false, 0
	}

	switch args[0] {
	case "--version", "-V":
		fmt.Fprintf(rootStdout, "mcpchat %s\n", buildVersion)
		return true, 0
	case "--help", "-h":
		printRootHelp(rootStdout)
		return true, 0
	default:
		return false, 0
	}
}

func resolveBuildVersion(defaultVersion string) string {
	if defaultVersion != "" && defaultVersion != "dev" {
		return defaultVersion
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return defaultVersion
	}
	if info.Main.Version == "" || info.Main.Version == "(devel)" {
		return defaultVersion
	}
	return info.Main.Version
}

func printRootHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  mcpchat                                 Start the interactive chat")
	fmt.Fprintln(out, "  mcpchat servers [--json]                List configured servers")
	fmt.Fprintln(out, "  mcpchat tools <server> [-v|--json]      List a server's tools")
	fmt.Fprintln(out, "  mcpchat resources <server> [--json]     List a server's resources")
	fmt.Fprintln(out, "  mcpchat call <server> <tool> [ARGS]     Call a tool once")
	fmt.Fprintln(out, "  mcpchat read <server> <uri>             Read a resource once")
	fmt.Fprintln(out, "  mcpchat add <source> [--name <server>]  Add a server from a manifest")
	fmt.Fprintln(out, "  mcpchat remove <server>                 Remove a server from config")
	fmt.Fprintln(out, "  mcpchat enable <server>                 Enable a server")
	fmt.Fprintln(out, "  mcpchat disable <server>                Disable a server")
	fmt.Fprintln(out, "  mcpchat probe <url> [--json]            Probe an HTTP MCP endpoint")
	fmt.Fprintln(out, "  mcpchat completion <bash|zsh|fish>      Print a shell completion script")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Global flags:")
	fmt.Fprintln(out, "  --help, -h       Show help")
	fmt.Fprintln(out, "  --version, -V    Show version")
	fmt.Fprintln(out, "  --debug          Verbose logging to stderr")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if debugLogging {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runREPL(cfg *config.Config) int {
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(rootStderr, "mcpchat: invalid config: %v\n", err)
		return ExitUsageErr
	}

	client, err := provider.New(cfg.Provider)
	if err != nil {
		fmt.Fprintf(rootStderr, "mcpchat: %v\n", err)
		return ExitUsageErr
	}

	logger := newLogger()
	ctx := context.Background()
	manager := mcpclient.NewManager(logger)
	for _, name := range sortedServerNames(cfg.Servers) {
		scfg := cfg.Servers[name]
		if !scfg.IsEnabled() {
			continue
		}
		if !manager.StartServer(ctx, name, scfg) {
			fmt.Fprintf(rootStderr, "mcpchat: warning: server %q did not start; continuing without it\n", name)
		}
	}

	if err := repl.New(cfg, client, manager, logger).Run(ctx); err != nil {
		fmt.Fprintf(rootStderr, "mcpchat: %v\n", err)
		return ExitInternal
	}
	return ExitOK
}

func sortedServerNames(servers map[string]config.ServerConfig) []string {
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
