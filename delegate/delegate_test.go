package delegate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// TestHelperProcess is not a real test. It is the child process spawned by
// the other tests through helperCommand.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("BYTENODE_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(2)
	}
	switch args[1] {
	case "exit":
		code, _ := strconv.Atoi(args[2])
		os.Exit(code)
	case "env":
		fmt.Print(os.Getenv(args[2]))
	case "args":
		fmt.Print(strings.Join(args[2:], " "))
	case "cat":
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(os.Stdin)
		fmt.Print(buf.String())
	}
	os.Exit(0)
}

func helperCommand(args ...string) Command {
	return Command{
		Path: os.Args[0],
		Args: append([]string{"-test.run=TestHelperProcess", "--"}, args...),
		Env:  append(os.Environ(), "BYTENODE_WANT_HELPER_PROCESS=1"),
	}
}

func runCaptured(t *testing.T, c Command, stdin string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	d := &Delegator{Stdin: strings.NewReader(stdin), Stdout: &out, Stderr: &out}
	err := d.Run(c)
	return out.String(), err
}

func TestRunSuccess(t *testing.T) {
	out, err := runCaptured(t, helperCommand("args", "a", "b"), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "a b" {
		t.Errorf("output = %q, want %q", out, "a b")
	}
}

func TestRunInheritsStdin(t *testing.T) {
	out, err := runCaptured(t, helperCommand("cat"), "from parent")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "from parent" {
		t.Errorf("output = %q, want %q", out, "from parent")
	}
}

func TestRunPropagatesExitCode(t *testing.T) {
	_, err := runCaptured(t, helperCommand("exit", "7"), "")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if exitErr.Code != 7 {
		t.Errorf("Code = %d, want 7", exitErr.Code)
	}
}

func TestRunSpawnFailure(t *testing.T) {
	_, err := runCaptured(t, Command{Path: filepath.Join(t.TempDir(), "missing-runtime")}, "")
	if err == nil {
		t.Fatal("expected spawn error")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Errorf("spawn failure reported as exit error: %v", err)
	}
}

func TestExecutableEnvironment(t *testing.T) {
	c := Executable(os.Args[0], "/opt/electron", []string{"-test.run=TestHelperProcess", "--", "env", EnvRunAsNode},
		append(os.Environ(), "BYTENODE_WANT_HELPER_PROCESS=1"))

	out, err := runCaptured(t, c, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "1" {
		t.Errorf("%s = %q, want 1", EnvRunAsNode, out)
	}

	found := false
	for _, kv := range c.Env {
		if kv == EnvRuntime+"=/opt/electron" {
			found = true
		}
	}
	if !found {
		t.Errorf("env missing %s: %v", EnvRuntime, c.Env)
	}
}

func TestExecutableKeepsBaseEnv(t *testing.T) {
	c := Executable("/bin/bytenode", "electron", nil, []string{"PATH=/usr/bin"})
	if c.Env[0] != "PATH=/usr/bin" {
		t.Errorf("base env dropped: %v", c.Env)
	}
	if c.Path != "/bin/bytenode" {
		t.Errorf("Path = %q, want /bin/bytenode", c.Path)
	}
}

func TestPreloadCommand(t *testing.T) {
	c := Preload("node", "bytenode", []string{"app.jsc", "--port", "80"})
	if c.Path != "node" {
		t.Errorf("Path = %q, want node", c.Path)
	}
	want := "-r bytenode app.jsc --port 80"
	if got := strings.Join(c.Args, " "); got != want {
		t.Errorf("Args = %q, want %q", got, want)
	}
	if c.Env != nil {
		t.Errorf("Env = %v, want inherited", c.Env)
	}
}
