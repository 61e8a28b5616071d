// Package delegate relaunches work in a child process that shares the
// parent's terminal, and reports how that child exited.
package delegate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/tliron/commonlog"
)

// Environment variables set on executable delegation.
const (
	EnvRunAsNode = "ELECTRON_RUN_AS_NODE"
	EnvRuntime   = "BYTENODE_RUNTIME"
)

// logger is resolved per call so the backend chosen by main applies.
func logger() commonlog.Logger {
	return commonlog.GetLogger("bytenode.delegate")
}

// Command describes a child process.
type Command struct {
	Path string
	Args []string
	// Env is the full child environment; nil inherits the parent's.
	Env []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Executable returns the command that re-runs the orchestrator at self with
// args, driving the runtime at use as a plain scripting runtime. The entries
// are appended to base, so they override any inherited values.
func Executable(self, use string, args, base []string) Command {
	env := append(append([]string(nil), base...),
		EnvRunAsNode+"=1",
		EnvRuntime+"="+use,
	)
	return Command{
		Path: self,
		Args: append([]string(nil), args...),
		Env:  env,
	}
}

// Preload returns the command that starts runtime with module preloaded,
// followed by args unchanged.
func Preload(runtime, module string, args []string) Command {
	return Command{
		Path: runtime,
		Args: append([]string{"-r", module}, args...),
	}
}

// ExitError reports a child that ran and exited unsuccessfully.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

// Delegator runs child processes attached to the given streams.
type Delegator struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Delegator wired to the process's standard streams.
func New() *Delegator {
	return &Delegator{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts c and blocks until it exits. There is no timeout. While the
// child runs, terminal interrupts are left to the child and termination
// requests sent to the parent are forwarded to it.
//
// A child that exits non-zero yields *ExitError; a child that cannot be
// started yields the start error.
func (d *Delegator) Run(c Command) error {
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Env = c.Env
	cmd.Stdin = d.Stdin
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr

	logger().Debugf("delegating: %s", c)

	if err := cmd.Start(); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigs, append(append([]os.Signal(nil), ignoredSignals...), forwardedSignals...)...)
	go func() {
		for {
			select {
			case sig := <-sigs:
				if !isForwarded(sig) {
					continue
				}
				logger().Debugf("forwarding %v to child %d", sig, cmd.Process.Pid)
				_ = cmd.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	signal.Stop(sigs)
	close(done)

	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: c.Path, Code: exitStatus(exitErr)}
	}
	return err
}

func isForwarded(sig os.Signal) bool {
	for _, s := range forwardedSignals {
		if s == sig {
			return true
		}
	}
	return false
}
