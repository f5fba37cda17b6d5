package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lydakis/mcpchat/internal/mcpclient"
)

const probeTimeout = 15 * time.Second

func runProbeCommand(args []string, stdout, stderr io.Writer) int {
	asJSON := false
	url := ""
	for _, arg := range args {
		switch {
		case arg == "--json":
			asJSON = true
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(stderr, "mcpchat: unsupported flag for probe: %s\n", arg)
			return ExitUsageErr
		case url != "":
			fmt.Fprintf(stderr, "mcpchat: unexpected argument: %s\n", arg)
			return ExitUsageErr
		default:
			url = arg
		}
	}
	if url == "" {
		fmt.Fprintln(stderr, "mcpchat: usage: mcpchat probe <url> [--json]")
		return ExitUsageErr
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		fmt.Fprintf(stderr, "mcpchat: probe expects an http(s) URL, got %q\n", url)
		return ExitUsageErr
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	result := mcpclient.ProbeHTTP(ctx, url)

	if asJSON {
		if code := writeJSON(stdout, stderr, result); code != ExitOK {
			return code
		}
	} else {
		fmt.Fprintf(stdout, "Endpoint:           %s\n", url)
		fmt.Fprintf(stdout, "Reachable:          %s\n", yesNo(result.Reachable))
		fmt.Fprintf(stdout, "MCP compatible:     %s\n", yesNo(result.MCPCompatible))
		fmt.Fprintf(stdout, "Supports tools:     %s\n", yesNo(result.SupportsTools))
		fmt.Fprintf(stdout, "Supports resources: %s\n", yesNo(result.SupportsResources))
		if result.Err != "" {
			fmt.Fprintf(stdout, "Error:              %s\n", result.Err)
		}
	}

	if !result.Reachable || !result.MCPCompatible {
		return ExitToolErr
	}
	return ExitOK
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
