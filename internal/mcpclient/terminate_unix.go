//go:build unix

package mcpclient

import (
	"os"

	"golang.org/x/sys/unix"
)

func terminateProcess(p *os.Process) error {
	return p.Signal(unix.SIGTERM)
}
