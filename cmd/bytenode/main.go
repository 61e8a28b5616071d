// bytenode CLI - compiles JavaScript to V8 bytecode and runs the results
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/bytenode/cli"
	"github.com/chazu/bytenode/compiler"
	"github.com/chazu/bytenode/compiler/cache"
	"github.com/chazu/bytenode/config"
	"github.com/chazu/bytenode/delegate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	os.Exit(cli.ExitCode(os.Stderr, err))
}

// newRootCommand builds the bytenode command. Flag parsing is left to the
// cli package, which owns short-flag expansion and passes unknown tokens
// through to the runtime.
func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:                "bytenode [option] [ FILE... | - ] [arguments]",
		Short:              "Compile JavaScript to V8 bytecode and run it",
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args)
		},
	}
}

func run(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(wd, os.Getenv)
	if err != nil {
		return err
	}
	commonlog.Configure(cfg.Log.Verbosity, nil)

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot locate bytenode executable: %w", err)
	}

	rt := compiler.NewRuntime(cfg.Runtime.Executable)
	rt.Preload = cfg.Runtime.Preload
	rt.Extension = cfg.Compile.Extension
	rt.Jobs = cfg.Compile.Jobs

	if cfg.Cache.Enabled {
		store, err := openCache(cfg.Cache.Path)
		if err != nil {
			commonlog.GetLogger("bytenode").Warningf("artifact cache disabled: %v", err)
		} else {
			defer store.Close()
			rt.Cache = store
		}
	}

	d := &delegate.Delegator{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}

	r := cli.NewRunner(rt, d)
	r.Stdin = cmd.InOrStdin()
	r.Stdout = cmd.OutOrStdout()
	r.Stderr = cmd.ErrOrStderr()
	r.Preload = cfg.Runtime.Preload
	r.LoaderPattern = cfg.Compile.LoaderPattern
	r.Module = cfg.Compile.Module
	r.StdinLimit = cfg.Stdin.MaxBytes
	r.StdinFilename = cfg.Stdin.Filename

	p := cli.NewProgram(self, cfg.Runtime.Executable, args)
	return r.Execute(cmd.Context(), p)
}

func openCache(path string) (*cache.Store, error) {
	if path == "" {
		var err error
		if path, err = cache.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return cache.Open(path)
}
