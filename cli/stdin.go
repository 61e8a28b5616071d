package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/chazu/bytenode/compiler"
)

const chunkSize = 32 << 10

// compileStdin reads all of stdin, compiles it, and writes the bytecode to
// stdout.
func (r *Runner) compileStdin(ctx context.Context, filename string, compileAsModule bool) error {
	if f, ok := r.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logger().Notice("reading source from the terminal; press Ctrl-D to finish")
	}

	code, err := readAll(ctx, r.Stdin, r.StdinLimit)
	if err != nil {
		return err
	}

	bytecode, err := r.Compiler.CompileCode(ctx, compiler.CodeOptions{
		Code:            code,
		Filename:        filename,
		CompileAsModule: compileAsModule,
	})
	if err != nil {
		return err
	}
	if _, err := r.Stdout.Write(bytecode); err != nil {
		return fmt.Errorf("writing bytecode: %w", err)
	}
	return nil
}

type chunk struct {
	data []byte
	err  error
}

// readAll accumulates chunks read from in on a separate goroutine until end
// of stream, ctx cancellation, or more than limit bytes (when limit > 0).
func readAll(ctx context.Context, in io.Reader, limit int64) ([]byte, error) {
	chunks := make(chan chunk)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(chunks)
		buf := make([]byte, chunkSize)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				select {
				case chunks <- chunk{data: append([]byte(nil), buf[:n]...)}:
				case <-done:
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				select {
				case chunks <- chunk{err: err}:
				case <-done:
				}
				return
			}
		}
	}()

	var code bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case c, ok := <-chunks:
			if !ok {
				return code.Bytes(), nil
			}
			if c.err != nil {
				return nil, fmt.Errorf("reading stdin: %w", c.err)
			}
			if limit > 0 && int64(code.Len()+len(c.data)) > limit {
				return nil, fmt.Errorf("stdin source exceeds %d bytes", limit)
			}
			code.Write(c.data)
		}
	}
}
