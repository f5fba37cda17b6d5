package bootstrap

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lydakis/mcpchat/internal/config"
)

type lookupPathFunc func(file string) (string, error)

// CheckPrerequisites verifies that a stdio server's command exists in
// PATH before it gets written to the config. HTTP servers have no
// local prerequisites.
func CheckPrerequisites(server config.ServerConfig) error {
	return checkPrerequisites(server, exec.LookPath)
}

func checkPrerequisites(server config.ServerConfig, lookup lookupPathFunc) error {
	if !server.IsStdio() {
		return nil
	}

	command := strings.TrimSpace(server.Command)
	if command == "" {
		return nil
	}
	if _, err := lookup(command); err != nil {
		return fmt.Errorf("required runtime %q not found in PATH", command)
	}

	// Manifests often launch through env ("env -S npx ..."); the real
	// runtime is the wrapped command, so check that too.
	if filepath.Base(command) == "env" {
		if wrapped := envWrappedCommand(server.Args); wrapped != "" {
			if _, err := lookup(wrapped); err != nil {
				return fmt.Errorf("required runtime %q not found in PATH", wrapped)
			}
		}
	}
	return nil
}

// envWrappedCommand finds the command env will exec: the first token
// that is not an option or a KEY=value assignment, honoring -S /
// --split-string payloads and the -- separator.
func envWrappedCommand(args []string) string {
	for i := 0; i < len(args); i++ {
		token := strings.TrimSpace(args[i])
		switch {
		case token == "":
			continue
		case token == "--":
			return firstCommandToken(args[i+1:])
		case token == "-S" || token == "--split-string":
			if i+1 >= len(args) {
				return ""
			}
			i++
			if cmd := envWrappedCommand(strings.Fields(args[i])); cmd != "" {
				return cmd
			}
		case strings.HasPrefix(token, "-S=") || strings.HasPrefix(token, "--split-string="):
			_, payload, _ := strings.Cut(token, "=")
			if cmd := envWrappedCommand(strings.Fields(payload)); cmd != "" {
				return cmd
			}
		case token == "-u" || token == "--unset" || token == "-C" || token == "--chdir":
			if i+1 >= len(args) {
				return ""
			}
			i++
		case strings.HasPrefix(token, "-"):
			continue
		case strings.Contains(token[1:], "="):
			// KEY=value assignment.
			continue
		default:
			return trimBalancedQuotes(token)
		}
	}
	return ""
}

func firstCommandToken(args []string) string {
	for _, raw := range args {
		token := trimBalancedQuotes(strings.TrimSpace(raw))
		if token == "" || strings.Contains(token[1:], "=") {
			continue
		}
		return token
	}
	return ""
}

func trimBalancedQuotes(token string) string {
	if len(token) >= 2 {
		first, last := token[0], token[len(token)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return token[1 : len(token)-1]
		}
	}
	return token
}
