package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lydakis/mcpchat/internal/cache"
	"github.com/lydakis/mcpchat/internal/config"
	"github.com/lydakis/mcpchat/internal/mcpclient"
)

func runCompletionCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "mcpchat: usage: mcpchat completion <bash|zsh|fish>")
		return ExitUsageErr
	}

	script, ok := completionScripts[strings.ToLower(args[0])]
	if !ok {
		fmt.Fprintf(stderr, "mcpchat: unknown shell for completion: %s\n", args[0])
		return ExitUsageErr
	}

	_, _ = io.WriteString(stdout, script)
	return ExitOK
}

// runInternalCompletion answers `__complete` queries from the shell
// scripts. It must stay fast, so tool and flag names come from the
// listings cache only; a cold cache completes to nothing.
func runInternalCompletion(args []string, cfg *config.Config, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "mcpchat: usage: mcpchat __complete <servers|tools|flags> ...")
		return ExitUsageErr
	}

	switch args[0] {
	case "servers":
		if len(args) != 1 {
			fmt.Fprintln(stderr, "mcpchat: usage: mcpchat __complete servers")
			return ExitUsageErr
		}
		for _, name := range sortedServerNames(cfg.Servers) {
			fmt.Fprintln(stdout, name)
		}
		return ExitOK
	case "tools":
		if len(args) != 2 {
			fmt.Fprintln(stderr, "mcpchat: usage: mcpchat __complete tools <server>")
			return ExitUsageErr
		}
		for _, tool := range cachedToolListing(args[1]) {
			fmt.Fprintln(stdout, tool.Name)
		}
		return ExitOK
	case "flags":
		if len(args) != 3 {
			fmt.Fprintln(stderr, "mcpchat: usage: mcpchat __complete flags <server> <tool>")
			return ExitUsageErr
		}
		for _, tool := range cachedToolListing(args[1]) {
			if tool.Name != args[2] {
				continue
			}
			for _, line := range schemaFlagLines(tool.InputSchema) {
				fmt.Fprintf(stdout, "--%s\n", line.Name)
			}
			break
		}
		return ExitOK
	default:
		fmt.Fprintf(stderr, "mcpchat: unknown completion query: %s\n", args[0])
		return ExitUsageErr
	}
}

func cachedToolListing(server string) []mcpclient.ToolInfo {
	payload, ok := cache.GetListing(server, cache.KindTools)
	if !ok {
		return nil
	}
	var tools []mcpclient.ToolInfo
	if err := json.Unmarshal(payload, &tools); err != nil {
		return nil
	}
	return tools
}
