//go:build !windows

package delegate

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// The terminal delivers these to the whole foreground process group, so the
// child already receives them.
var ignoredSignals = []os.Signal{unix.SIGINT, unix.SIGQUIT}

var forwardedSignals = []os.Signal{unix.SIGTERM, unix.SIGHUP}

// exitStatus follows the shell convention of 128+N for a child killed by
// signal N.
func exitStatus(err *exec.ExitError) int {
	if ws, ok := err.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return err.ExitCode()
}
