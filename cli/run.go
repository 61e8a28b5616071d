package cli

import (
	"context"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/bytenode/compiler"
	"github.com/chazu/bytenode/delegate"
)

// logger is resolved per call so the backend chosen by main applies.
func logger() commonlog.Logger {
	return commonlog.GetLogger("bytenode.cli")
}

const useMessage = "--use flag expects the next argument to be the " +
	"path of node, electron or nwjs executable."

// Spawner runs a delegated child process to completion.
type Spawner interface {
	Run(c delegate.Command) error
}

// Runner executes one invocation against its collaborators.
type Runner struct {
	Compiler compiler.Compiler
	Spawner  Spawner

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Env is the base environment for executable delegation.
	Env []string
	// Preload is the loader module preloaded on default-run.
	Preload string
	// LoaderPattern is used when --loader has no pattern argument.
	LoaderPattern string
	// Module is the compile-as-module default that --no-module negates.
	Module bool
	// StdinLimit caps the bytes accepted from stdin; zero means no cap.
	StdinLimit int64
	// StdinFilename names stdin source when --filename is not given.
	StdinFilename string
}

// NewRunner returns a Runner on the process's standard streams with
// default settings.
func NewRunner(c compiler.Compiler, s Spawner) *Runner {
	return &Runner{
		Compiler:      c,
		Spawner:       s,
		Stdin:         os.Stdin,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Env:           os.Environ(),
		Preload:       "bytenode",
		LoaderPattern: compiler.DefaultLoaderPattern,
		Module:        true,
	}
}

// Run dispatches p and returns the process exit status.
func (r *Runner) Run(ctx context.Context, p Program) int {
	return ExitCode(r.Stderr, r.Execute(ctx, p))
}

// Execute dispatches p and performs the selected mode.
func (r *Runner) Execute(ctx context.Context, p Program) error {
	mode := Dispatch(p)
	logger().Debugf("mode %s for %v", mode, p.Args)

	switch mode {
	case ModeDelegate:
		return r.delegate(p)
	case ModeHelp:
		printUsage(r.Stdout)
		return nil
	case ModeVersion:
		r.printVersion(ctx)
		return nil
	case ModeCompile:
		return r.compile(ctx, p)
	default:
		return r.defaultRun(p)
	}
}

// delegate re-runs the orchestrator with the runtime named by --use.
func (r *Runner) delegate(p Program) error {
	use, ok := p.ArgAfter(FlagUse)
	if !ok {
		return &UsageError{Msg: useMessage}
	}
	return r.Spawner.Run(delegate.Executable(p.SelfPath, use, p.WithoutFlagArg(FlagUse), r.Env))
}

// defaultRun starts the runtime with the loader preloaded so bytecode
// named on the command line, or required from the REPL, can load.
func (r *Runner) defaultRun(p Program) error {
	return r.Spawner.Run(delegate.Preload(p.Runtime, r.Preload, p.Raw))
}
