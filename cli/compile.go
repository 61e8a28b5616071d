package cli

import (
	"context"
	"fmt"

	"github.com/chazu/bytenode/compiler"
)

// compile runs compile mode. A multi-file batch reports per-file failures
// and still succeeds; a single file or stdin failure is returned.
func (r *Runner) compile(ctx context.Context, p Program) error {
	opts := compiler.Options{
		CompileAsModule: r.Module && !p.HasFlag(FlagNoModule),
		CreateLoader:    p.HasFlag(FlagLoader),
		LoaderPattern:   r.LoaderPattern,
	}

	// Flag arguments don't start with a dash, so they were classified as
	// files; take them back out.
	if opts.CreateLoader {
		if pattern, ok := p.ArgAfter(FlagLoader); ok {
			opts.LoaderPattern = pattern
			p = p.WithoutFile(pattern)
		}
	}
	if p.HasFlag(FlagOutput) {
		if output, ok := p.ArgAfter(FlagOutput); ok {
			opts.Output = output
			p = p.WithoutFile(output)
		}
	}
	filename := r.StdinFilename
	if p.Stdin && p.HasFlag(FlagFilename) {
		if name, ok := p.ArgAfter(FlagFilename); ok {
			filename = name
			p = p.WithoutFile(name)
		}
	}

	switch {
	case len(p.Files) > 1:
		results, err := r.Compiler.CompileFiles(ctx, p.Files, opts)
		if err != nil {
			return err
		}
		for _, res := range results.Failures() {
			fmt.Fprintln(r.Stderr, res)
		}
	case len(p.Files) == 1:
		opts.Filename = p.Files[0]
		if _, err := r.Compiler.Compile(ctx, opts); err != nil {
			return err
		}
	case !p.Stdin:
		logger().Warning("nothing to compile; pass FILE... or - for stdin")
	}

	if !p.Stdin {
		return nil
	}
	return r.compileStdin(ctx, filename, opts.CompileAsModule)
}
