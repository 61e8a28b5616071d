package compiler

import (
	"path/filepath"
	"testing"
)

func TestOutputPath(t *testing.T) {
	cases := []struct {
		source, output, want string
	}{
		{"script.js", "", "script.jsc"},
		{"src/app.mjs", "", "src/app.jsc"},
		{"noext", "", "noext.jsc"},
		{"script.js", "out/x.bin", "out/x.bin"},
	}
	for _, tc := range cases {
		if got := OutputPath(tc.source, tc.output, DefaultExtension); got != tc.want {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", tc.source, tc.output, got, tc.want)
		}
	}
}

func TestLoaderPath(t *testing.T) {
	cases := []struct {
		pattern, source, artifact, want string
	}{
		{"", "src/main.js", "src/main.jsc", filepath.Join("src", "main.loader.js")},
		{"%.load.js", "main.js", "main.jsc", "main.load.js"},
		{"entry.js", "src/main.js", "build/main.jsc", filepath.Join("build", "entry.js")},
		{"/abs/%.js", "main.js", "main.jsc", "/abs/main.js"},
	}
	for _, tc := range cases {
		if got := LoaderPath(tc.pattern, tc.source, tc.artifact); got != tc.want {
			t.Errorf("LoaderPath(%q, %q, %q) = %q, want %q", tc.pattern, tc.source, tc.artifact, got, tc.want)
		}
	}
}

func TestLoaderSource(t *testing.T) {
	got, err := LoaderSource("bytenode", "dist/main.loader.js", "dist/main.jsc")
	if err != nil {
		t.Fatal(err)
	}
	want := "require('bytenode');\nrequire('./main.jsc');\n"
	if got != want {
		t.Errorf("LoaderSource = %q, want %q", got, want)
	}

	got, err = LoaderSource("bytenode", "loaders/main.js", "dist/main.jsc")
	if err != nil {
		t.Fatal(err)
	}
	want = "require('bytenode');\nrequire('../dist/main.jsc');\n"
	if got != want {
		t.Errorf("LoaderSource = %q, want %q", got, want)
	}
}

func TestResultsFailures(t *testing.T) {
	rs := Results{
		{Path: "a.js", Output: "a.jsc"},
		{Path: "b.js", Err: errString("boom")},
		{Path: "c.js", Output: "c.jsc"},
	}
	failed := rs.Failures()
	if len(failed) != 1 || failed[0].Path != "b.js" {
		t.Fatalf("Failures = %v, want only b.js", failed)
	}
	if got, want := failed[0].String(), "Error: b.js: boom"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
