package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lydakis/mcpchat/internal/config"
	"github.com/lydakis/mcpchat/internal/mcpclient"
	"github.com/lydakis/mcpchat/internal/response"
)

func runCallCommand(args []string, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(stderr, "mcpchat: usage: mcpchat call <server> <tool> [--flag value ... | '<json>']")
		return ExitUsageErr
	}
	server, tool := args[0], args[1]

	parsed, err := parseToolCallArgs(args[2:], stdin, stdinIsTTY())
	if err != nil {
		fmt.Fprintf(stderr, "mcpchat: %v\n", err)
		return ExitUsageErr
	}

	return withConnection(context.Background(), cfg, server, stderr, func(ctx context.Context, conn *mcpclient.Connection) int {
		if parsed.help {
			return printToolHelp(ctx, conn, server, tool, stdout, stderr)
		}

		if parsed.verbose {
			if req, err := json.Marshal(parsed.toolArgs); err == nil {
				fmt.Fprintf(stderr, "mcpchat: calling %s/%s with %s\n", server, tool, req)
			}
		}

		raw := conn.CallTool(ctx, tool, parsed.toolArgs)
		if raw == nil {
			fmt.Fprintf(stderr, "mcpchat: tool %q on server %q failed or the server is unavailable\n", tool, server)
			return ExitInternal
		}

		out, isErr := response.Unwrap(response.Decode(raw))
		if isErr {
			if !parsed.quiet {
				_, _ = stderr.Write(out)
			}
			return ExitToolErr
		}
		if !parsed.quiet {
			_, _ = stdout.Write(out)
		}
		return ExitOK
	})
}

// printToolHelp renders flag help for one tool from its input schema.
func printToolHelp(ctx context.Context, conn *mcpclient.Connection, server, tool string, stdout, stderr io.Writer) int {
	tools := conn.ListTools(ctx)
	if tools == nil {
		fmt.Fprintf(stderr, "mcpchat: server %q did not return a tool listing\n", server)
		return ExitInternal
	}

	for _, info := range tools {
		if info.Name != tool {
			continue
		}
		fmt.Fprintf(stdout, "Usage: mcpchat call %s %s [FLAGS]\n", server, tool)
		if info.Description != "" {
			fmt.Fprintf(stdout, "\n%s\n", info.Description)
		}
		lines := schemaFlagLines(info.InputSchema)
		if len(lines) > 0 {
			fmt.Fprintln(stdout, "\nTool flags:")
			for _, line := range lines {
				fmt.Fprintf(stdout, "  %s\n", line.render())
			}
		}
		fmt.Fprintln(stdout, "\nGeneral flags:")
		fmt.Fprintln(stdout, "  --quiet, -q      Suppress result output, keep the exit code")
		fmt.Fprintln(stdout, "  --verbose, -v    Print the outgoing request to stderr")
		fmt.Fprintln(stdout, "  --help, -h       Show this help output")
		fmt.Fprintln(stdout, "\nArguments may also be a single JSON object, positional or on stdin.")
		fmt.Fprintln(stdout, "Use --tool-<name> for tool parameters shadowed by the flags above.")
		return ExitOK
	}

	fmt.Fprintf(stderr, "mcpchat: server %q has no tool %q\n", server, tool)
	return ExitUsageErr
}

func stdinIsTTY() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
