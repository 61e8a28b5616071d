package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/chazu/bytenode/delegate"
)

// UsageError reports a malformed invocation.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// ExitCode maps the outcome of a run to a process exit status, printing the
// error to w unless a delegated child already reported it.
func ExitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *delegate.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintln(w, err)
	return 1
}
