package cli

import (
	"fmt"
	"io"

	"github.com/lydakis/mcpchat/internal/cache"
	"github.com/lydakis/mcpchat/internal/config"
	"github.com/lydakis/mcpchat/internal/paths"
)

func runRemoveCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "mcpchat: usage: mcpchat remove <server>")
		return ExitUsageErr
	}
	name := args[0]

	cfgPath := paths.ConfigFile()
	cfg, err := config.LoadForEditFrom(cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "mcpchat: remove: loading config: %v\n", err)
		return ExitInternal
	}
	if _, ok := cfg.Servers[name]; !ok {
		fmt.Fprintf(stderr, "mcpchat: remove: no server %q in config\n", name)
		return ExitUsageErr
	}

	delete(cfg.Servers, name)
	if err := config.SaveTo(cfgPath, cfg); err != nil {
		fmt.Fprintf(stderr, "mcpchat: remove: writing config: %v\n", err)
		return ExitInternal
	}
	cache.Invalidate(name, cache.KindTools)
	cache.Invalidate(name, cache.KindResources)

	fmt.Fprintf(stdout, "Removed server %q from %s\n", name, cfgPath)
	return ExitOK
}

func runEnableCommand(args []string, enable bool, stdout, stderr io.Writer) int {
	verb := "enable"
	if !enable {
		verb = "disable"
	}
	if len(args) != 1 {
		fmt.Fprintf(stderr, "mcpchat: usage: mcpchat %s <server>\n", verb)
		return ExitUsageErr
	}
	name := args[0]

	cfgPath := paths.ConfigFile()
	cfg, err := config.LoadForEditFrom(cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "mcpchat: %s: loading config: %v\n", verb, err)
		return ExitInternal
	}
	scfg, ok := cfg.Servers[name]
	if !ok {
		fmt.Fprintf(stderr, "mcpchat: %s: no server %q in config\n", verb, name)
		return ExitUsageErr
	}

	if scfg.IsEnabled() == enable {
		fmt.Fprintf(stdout, "Server %q is already %sd\n", name, verb)
		return ExitOK
	}

	scfg.Enabled = &enable
	cfg.Servers[name] = scfg
	if err := config.SaveTo(cfgPath, cfg); err != nil {
		fmt.Fprintf(stderr, "mcpchat: %s: writing config: %v\n", verb, err)
		return ExitInternal
	}

	fmt.Fprintf(stdout, "%sd server %q\n", titleVerb(verb), name)
	return ExitOK
}

func titleVerb(verb string) string {
	if verb == "" {
		return verb
	}
	return string(verb[0]-'a'+'A') + verb[1:]
}
