package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tliron/commonlog"

	"github.com/chazu/bytenode/cli"
	"github.com/chazu/bytenode/config"
)

// execute runs the root command in-process with an isolated configuration.
func execute(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvRuntime, filepath.Join(t.TempDir(), "no-such-node"))
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	code := cli.ExitCode(&stderr, err)
	return stdout.String(), stderr.String(), code
}

func TestHelpFlag(t *testing.T) {
	out, _, code := execute(t, "", "-h")
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if !strings.Contains(out, "Usage: bytenode") {
		t.Errorf("stdout = %q", out)
	}
}

func TestVersionWithoutRuntime(t *testing.T) {
	out, _, code := execute(t, "", "--version")
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	want := "Bytenode " + cli.Version + " | Node unknown\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestUseWithoutExecutable(t *testing.T) {
	_, errOut, code := execute(t, "", "-c", "a.js", "--use")
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
	if !strings.Contains(errOut, "--use flag expects") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestCompileMissingRuntime(t *testing.T) {
	_, errOut, code := execute(t, "console.log(1)", "-c", "-")
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
	if errOut == "" {
		t.Error("expected an error message on stderr")
	}
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv(config.EnvLog, "loud")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"-h"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), config.EnvLog) {
		t.Errorf("err = %v, want %s error", err, config.EnvLog)
	}
	var usage *cli.UsageError
	if errors.As(err, &usage) {
		t.Error("config error reported as usage error")
	}
}

func TestLibraryLoggersUseBackend(t *testing.T) {
	commonlog.Configure(2, nil)
	defer commonlog.Configure(0, nil)
	for _, name := range []string{"bytenode.cli", "bytenode.compiler", "bytenode.delegate"} {
		if !commonlog.GetLogger(name).AllowLevel(commonlog.Debug) {
			t.Errorf("%s: debug not enabled after Configure(2)", name)
		}
	}
}
