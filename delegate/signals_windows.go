//go:build windows

package delegate

import (
	"os"
	"os/exec"
)

var ignoredSignals = []os.Signal{os.Interrupt}

var forwardedSignals []os.Signal

func exitStatus(err *exec.ExitError) int {
	return err.ExitCode()
}
