// Package compiler defines the bytecode compiler contract used by the CLI and
// a production implementation that drives a JavaScript runtime.
package compiler

import (
	"context"
	"fmt"
)

// DefaultLoaderPattern names loader files after their source; '%' is
// replaced with the source base name without extension.
const DefaultLoaderPattern = "%.loader.js"

// DefaultExtension is the extension given to compiled artifacts.
const DefaultExtension = ".jsc"

// Options configures compilation of a source file.
type Options struct {
	Filename        string
	CompileAsModule bool
	CreateLoader    bool
	LoaderPattern   string
	Output          string
}

// CodeOptions configures compilation of in-memory source.
type CodeOptions struct {
	Code            []byte
	Filename        string
	CompileAsModule bool
}

// Result is the outcome of compiling one file. Exactly one of Output or Err
// is meaningful.
type Result struct {
	Path   string
	Output string
	Loader string
	Err    error
}

// Failed reports whether the file failed to compile.
func (r Result) Failed() bool { return r.Err != nil }

func (r Result) String() string {
	if r.Failed() {
		return fmt.Sprintf("Error: %s: %v", r.Path, r.Err)
	}
	return fmt.Sprintf("%s -> %s", r.Path, r.Output)
}

// Results holds per-file outcomes in input order.
type Results []Result

// Failures returns the failed entries.
func (rs Results) Failures() Results {
	var failed Results
	for _, r := range rs {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Compiler is the contract the CLI compiles through.
type Compiler interface {
	// Compile compiles opts.Filename to an artifact on disk.
	Compile(ctx context.Context, opts Options) (Result, error)
	// CompileFiles compiles every file with the shared options. Per-file
	// failures are reported in the results; the error return is reserved for
	// failures that affect the whole batch.
	CompileFiles(ctx context.Context, files []string, opts Options) (Results, error)
	// CompileCode compiles source held in memory and returns the bytecode.
	CompileCode(ctx context.Context, opts CodeOptions) ([]byte, error)
	// RuntimeVersion reports the version of the runtime producing bytecode.
	RuntimeVersion(ctx context.Context) string
}
