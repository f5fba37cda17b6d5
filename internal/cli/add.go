package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/lydakis/mcpchat/internal/bootstrap"
	"github.com/lydakis/mcpchat/internal/config"
	"github.com/lydakis/mcpchat/internal/paths"
)

type addArgs struct {
	source    string
	name      string
	overwrite bool
	help      bool
}

func runAddCommand(args []string, stdout, stderr io.Writer) int {
	parsed, err := parseAddArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "mcpchat: %v\n", err)
		printAddHelp(stderr)
		return ExitUsageErr
	}
	if parsed.help {
		printAddHelp(stdout)
		return ExitOK
	}

	resolved, err := bootstrap.Resolve(context.Background(), parsed.source, bootstrap.ResolveOptions{
		Name: parsed.name,
	})
	if err != nil {
		fmt.Fprintf(stderr, "mcpchat: add: %v\n", err)
		return classifyResolveErrorExitCode(err)
	}

	cfgPath := paths.ConfigFile()
	cfg, err := config.LoadForEditFrom(cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "mcpchat: add: loading config: %v\n", err)
		return ExitInternal
	}
	if cfg.Servers == nil {
		cfg.Servers = make(map[string]config.ServerConfig)
	}

	_, exists := cfg.Servers[resolved.Name]
	if exists && !parsed.overwrite {
		fmt.Fprintf(stderr, "mcpchat: add: server %q already exists; rerun with --overwrite to replace it\n", resolved.Name)
		return ExitUsageErr
	}
	if err := bootstrap.CheckPrerequisites(config.ExpandServerForCurrentEnv(resolved.Server)); err != nil {
		fmt.Fprintf(stderr, "mcpchat: add: %v\n", err)
		return ExitUsageErr
	}

	cfg.Servers[resolved.Name] = resolved.Server
	if err := config.ValidateForCurrentEnv(cfg); err != nil {
		fmt.Fprintf(stderr, "mcpchat: add: invalid resulting config: %v\n", err)
		return ExitUsageErr
	}

	if err := config.SaveTo(cfgPath, cfg); err != nil {
		fmt.Fprintf(stderr, "mcpchat: add: writing config: %v\n", err)
		return ExitInternal
	}

	verb := "Added"
	if exists {
		verb = "Updated"
	}
	fmt.Fprintf(stdout, "%s server %q in %s\n", verb, resolved.Name, cfgPath)
	return ExitOK
}

func classifyResolveErrorExitCode(err error) int {
	if bootstrap.IsSourceAccessError(err) {
		return ExitInternal
	}
	return ExitUsageErr
}

func parseAddArgs(args []string) (*addArgs, error) {
	parsed := &addArgs{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--help" || arg == "-h":
			parsed.help = true
		case arg == "--overwrite":
			parsed.overwrite = true
		case strings.HasPrefix(arg, "--name="):
			value := strings.TrimSpace(strings.TrimPrefix(arg, "--name="))
			if value == "" {
				return nil, fmt.Errorf("missing value for --name")
			}
			parsed.name = value
		case arg == "--name":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for --name")
			}
			i++
			value := strings.TrimSpace(args[i])
			if value == "" || strings.HasPrefix(value, "-") {
				return nil, fmt.Errorf("missing value for --name")
			}
			parsed.name = value
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown flag: %s", arg)
		default:
			if parsed.source != "" {
				return nil, fmt.Errorf("unexpected positional argument: %s", arg)
			}
			parsed.source = strings.TrimSpace(arg)
		}
	}

	if parsed.help {
		return parsed, nil
	}
	if parsed.source == "" {
		return nil, fmt.Errorf("missing source (usage: mcpchat add <source>)")
	}

	return parsed, nil
}

func printAddHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  mcpchat add <source> [--name <server>] [--overwrite]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Sources:")
	fmt.Fprintln(out, "  - install-link URL (for example cursor://.../mcp/install?... )")
	fmt.Fprintln(out, "  - manifest URL (http/https)")
	fmt.Fprintln(out, "  - local manifest file path (JSON, TOML, or YAML)")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Flags:")
	fmt.Fprintln(out, "  --name <server>   Select or rename the server entry to add.")
	fmt.Fprintln(out, "  --overwrite       Replace an existing server entry.")
	fmt.Fprintln(out, "  --help, -h        Show this help output.")
}
