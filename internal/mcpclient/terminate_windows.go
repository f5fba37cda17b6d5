//go:build windows

package mcpclient

import "os"

// Windows has no SIGTERM; a hard kill is the only termination primitive.
func terminateProcess(p *os.Process) error {
	return p.Kill()
}
