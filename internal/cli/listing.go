package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lydakis/mcpchat/internal/cache"
	"github.com/lydakis/mcpchat/internal/config"
	"github.com/lydakis/mcpchat/internal/mcpclient"
)

type listingOpts struct {
	server  string
	verbose bool
	asJSON  bool
}

func parseListingArgs(cmd string, args []string) (listingOpts, error) {
	opts := listingOpts{}
	for _, arg := range args {
		switch arg {
		case "-v", "--verbose":
			opts.verbose = true
		case "--json":
			opts.asJSON = true
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, fmt.Errorf("unsupported flag for %s: %s", cmd, arg)
			}
			if opts.server != "" {
				return opts, fmt.Errorf("unexpected argument: %s", arg)
			}
			opts.server = arg
		}
	}
	if opts.server == "" {
		return opts, fmt.Errorf("usage: mcpchat %s <server> [-v|--json]", cmd)
	}
	return opts, nil
}

func runToolsCommand(args []string, cfg *config.Config, stdout, stderr io.Writer) int {
	opts, err := parseListingArgs("tools", args)
	if err != nil {
		fmt.Fprintf(stderr, "mcpchat: %v\n", err)
		return ExitUsageErr
	}

	return withConnection(context.Background(), cfg, opts.server, stderr, func(ctx context.Context, conn *mcpclient.Connection) int {
		tools := conn.ListTools(ctx)
		if tools == nil {
			fmt.Fprintf(stderr, "mcpchat: server %q did not return a tool listing\n", opts.server)
			return ExitInternal
		}
		refreshListing(cfg, opts.server, cache.KindTools, tools)

		if opts.asJSON {
			return writeJSON(stdout, stderr, tools)
		}
		if len(tools) == 0 {
			fmt.Fprintf(stdout, "Server %q exposes no tools.\n", opts.server)
			return ExitOK
		}
		for _, tool := range tools {
			writeToolEntry(stdout, tool, opts.verbose)
		}
		return ExitOK
	})
}

func runResourcesCommand(args []string, cfg *config.Config, stdout, stderr io.Writer) int {
	opts, err := parseListingArgs("resources", args)
	if err != nil {
		fmt.Fprintf(stderr, "mcpchat: %v\n", err)
		return ExitUsageErr
	}

	return withConnection(context.Background(), cfg, opts.server, stderr, func(ctx context.Context, conn *mcpclient.Connection) int {
		resources := conn.ListResources(ctx)
		if resources == nil {
			fmt.Fprintf(stderr, "mcpchat: server %q did not return a resource listing\n", opts.server)
			return ExitInternal
		}
		refreshListing(cfg, opts.server, cache.KindResources, resources)

		if opts.asJSON {
			return writeJSON(stdout, stderr, resources)
		}
		if len(resources) == 0 {
			fmt.Fprintf(stdout, "Server %q exposes no resources.\n", opts.server)
			return ExitOK
		}
		for _, res := range resources {
			name := res.Name
			if name == "" {
				name = res.URI
			}
			fmt.Fprintf(stdout, "%s\n    %s\n", name, res.URI)
			if opts.verbose && res.Description != "" {
				fmt.Fprintf(stdout, "    %s\n", res.Description)
			}
		}
		return ExitOK
	})
}

// refreshListing writes a fresh listing through to the disk cache so
// chat context and shell completion pick it up.
func refreshListing(cfg *config.Config, server string, kind cache.Kind, listing any) {
	payload, err := json.Marshal(listing)
	if err != nil {
		return
	}
	_ = cache.PutListing(server, kind, payload, listingTTLFor(cfg, server))
}

func writeToolEntry(out io.Writer, tool mcpclient.ToolInfo, verbose bool) {
	desc := tool.Description
	if !verbose {
		if i := strings.IndexByte(desc, '\n'); i >= 0 {
			desc = desc[:i]
		}
		if len(desc) > 100 {
			desc = desc[:97] + "..."
		}
	}
	if desc == "" {
		fmt.Fprintf(out, "%s\n", tool.Name)
	} else {
		fmt.Fprintf(out, "%s - %s\n", tool.Name, desc)
	}
	if verbose {
		for _, line := range schemaFlagLines(tool.InputSchema) {
			fmt.Fprintf(out, "    %s\n", line.render())
		}
	}
}

func writeJSON(stdout, stderr io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(stderr, "mcpchat: %v\n", err)
		return ExitInternal
	}
	return ExitOK
}
