package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// stem returns the base name of path without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath returns where the artifact for source is written. An explicit
// output wins; otherwise the source extension is replaced with ext.
func OutputPath(source, output, ext string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(source, filepath.Ext(source)) + ext
}

// LoaderPath expands pattern for source and places the result next to the
// artifact. Absolute patterns are used as-is.
func LoaderPath(pattern, source, artifact string) string {
	if pattern == "" {
		pattern = DefaultLoaderPattern
	}
	name := strings.ReplaceAll(pattern, "%", stem(source))
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(filepath.Dir(artifact), name)
}

// LoaderSource renders a loader that preloads module and then requires the
// artifact relative to the loader's own directory.
func LoaderSource(module, loader, artifact string) (string, error) {
	rel, err := filepath.Rel(filepath.Dir(loader), artifact)
	if err != nil {
		return "", fmt.Errorf("locating %s from %s: %w", artifact, loader, err)
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return fmt.Sprintf("require('%s');\nrequire('%s');\n", module, rel), nil
}

// writeLoader writes the loader file for artifact and returns its path.
func writeLoader(module, pattern, source, artifact string) (string, error) {
	path := LoaderPath(pattern, source, artifact)
	src, err := LoaderSource(module, path, artifact)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return "", fmt.Errorf("writing loader %s: %w", path, err)
	}
	return path, nil
}
