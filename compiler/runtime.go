package compiler

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/bytenode/compiler/cache"
)

//go:embed helper.js
var helperSource string

// logger is resolved per call so the backend chosen by main applies.
func logger() commonlog.Logger {
	return commonlog.GetLogger("bytenode.compiler")
}

// Runtime compiles through a JavaScript runtime executable (node, or
// electron running as node). Each compilation runs the embedded helper in a
// fresh runtime process.
type Runtime struct {
	// Executable is the runtime binary, resolved through PATH when it has
	// no separator.
	Executable string
	// Env is the child environment; nil inherits the current process env.
	Env []string
	// Preload is the module name loader files require before the artifact.
	Preload string
	// Extension is given to artifacts when no output path is set.
	Extension string
	// Jobs bounds concurrent compilations in CompileFiles. Zero means
	// runtime.NumCPU().
	Jobs int
	// Cache, when set, short-circuits compilation of unchanged sources.
	Cache *cache.Store

	versionMu sync.Mutex
	version   string
}

// NewRuntime returns a Runtime for executable with default settings.
func NewRuntime(executable string) *Runtime {
	return &Runtime{
		Executable: executable,
		Preload:    "bytenode",
		Extension:  DefaultExtension,
	}
}

type helperRequest struct {
	Code            string `json:"code"`
	Filename        string `json:"filename,omitempty"`
	CompileAsModule bool   `json:"compileAsModule"`
}

func (r *Runtime) extension() string {
	if r.Extension == "" {
		return DefaultExtension
	}
	return r.Extension
}

func (r *Runtime) jobs() int {
	if r.Jobs > 0 {
		return r.Jobs
	}
	return runtime.NumCPU()
}

// CompileCode runs the helper on opts.Code and returns the bytecode.
func (r *Runtime) CompileCode(ctx context.Context, opts CodeOptions) ([]byte, error) {
	var key cache.Key
	if r.Cache != nil {
		key = cache.NewKey(opts.Code, opts.Filename, opts.CompileAsModule, r.Executable, r.RuntimeVersion(ctx))
		bytecode, ok, err := r.Cache.Get(ctx, key)
		if err != nil {
			logger().Warningf("cache lookup failed: %v", err)
		} else if ok {
			logger().Debugf("cache hit for %s", displayName(opts.Filename))
			return bytecode, nil
		}
	}

	if !utf8.Valid(opts.Code) {
		return nil, fmt.Errorf("%s is not valid UTF-8", displayName(opts.Filename))
	}

	req, err := json.Marshal(helperRequest{
		Code:            string(opts.Code),
		Filename:        opts.Filename,
		CompileAsModule: opts.CompileAsModule,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding compile request: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Executable, "-e", helperSource)
	cmd.Env = r.Env
	cmd.Stdin = bytes.NewReader(req)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger().Debugf("compiling %s with %s", displayName(opts.Filename), r.Executable)
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, fmt.Errorf("running %s: %w", r.Executable, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s produced no bytecode for %s", r.Executable, displayName(opts.Filename))
	}

	bytecode := stdout.Bytes()
	if r.Cache != nil {
		if err := r.Cache.Put(ctx, key, bytecode); err != nil {
			logger().Warningf("cache store failed: %v", err)
		}
	}
	return bytecode, nil
}

// Compile reads opts.Filename, compiles it and writes the artifact, plus a
// loader file when requested.
func (r *Runtime) Compile(ctx context.Context, opts Options) (Result, error) {
	if opts.Filename == "" {
		return Result{}, errors.New("no filename to compile")
	}
	src, err := os.ReadFile(opts.Filename)
	if err != nil {
		return Result{}, err
	}

	bytecode, err := r.CompileCode(ctx, CodeOptions{
		Code:            src,
		Filename:        opts.Filename,
		CompileAsModule: opts.CompileAsModule,
	})
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Path:   opts.Filename,
		Output: OutputPath(opts.Filename, opts.Output, r.extension()),
	}
	if dir := filepath.Dir(res.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(res.Output, bytecode, 0o644); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", res.Output, err)
	}

	if opts.CreateLoader {
		res.Loader, err = writeLoader(r.Preload, opts.LoaderPattern, opts.Filename, res.Output)
		if err != nil {
			return Result{}, err
		}
	}

	logger().Infof("compiled %s", res)
	return res, nil
}

// CompileFiles compiles files concurrently, bounded by Jobs. When
// opts.Output is set it names the directory receiving every artifact.
func (r *Runtime) CompileFiles(ctx context.Context, files []string, opts Options) (Results, error) {
	results := make(Results, len(files))

	// Two sources that map to one artifact would race on the same file;
	// the first keeps the destination and later ones fail.
	claimed := make(map[string]string, len(files))

	var g errgroup.Group
	g.SetLimit(r.jobs())
	for i, file := range files {
		fileOpts := opts
		fileOpts.Filename = file
		fileOpts.Output = ""
		if opts.Output != "" {
			fileOpts.Output = filepath.Join(opts.Output, stem(file)+r.extension())
		}

		dest := filepath.Clean(OutputPath(file, fileOpts.Output, r.extension()))
		if first, ok := claimed[dest]; ok {
			results[i] = Result{Path: file, Err: fmt.Errorf("output %s collides with %s", dest, first)}
			continue
		}
		claimed[dest] = file

		g.Go(func() error {
			res, err := r.Compile(ctx, fileOpts)
			if err != nil {
				res = Result{Path: file, Err: err}
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// RuntimeVersion asks the runtime for its version and caches the first
// successful answer. It returns "unknown" while the runtime cannot be
// queried.
func (r *Runtime) RuntimeVersion(ctx context.Context) string {
	r.versionMu.Lock()
	defer r.versionMu.Unlock()
	if r.version != "" {
		return r.version
	}

	cmd := exec.CommandContext(ctx, r.Executable, "--version")
	cmd.Env = r.Env
	out, err := cmd.Output()
	if err != nil {
		logger().Debugf("querying %s version: %v", r.Executable, err)
		return "unknown"
	}
	v := strings.TrimPrefix(strings.TrimSpace(string(out)), "v")
	if v == "" {
		return "unknown"
	}
	r.version = v
	return v
}

func displayName(filename string) string {
	if filename == "" {
		return "<stdin>"
	}
	return filename
}
