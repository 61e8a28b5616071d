// Package config handles bytenode.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "bytenode.toml"

// Environment overrides, applied after the file is loaded.
const (
	EnvConfig  = "BYTENODE_CONFIG"
	EnvRuntime = "BYTENODE_RUNTIME"
	EnvPreload = "BYTENODE_PRELOAD"
	EnvLog     = "BYTENODE_LOG"
	EnvCache   = "BYTENODE_CACHE"
)

// Config is the resolved bytenode configuration.
type Config struct {
	Runtime Runtime `toml:"runtime" json:"runtime"`
	Compile Compile `toml:"compile" json:"compile"`
	Stdin   Stdin   `toml:"stdin" json:"stdin"`
	Cache   Cache   `toml:"cache" json:"cache"`
	Log     Log     `toml:"log" json:"log"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" json:"-"`
}

// Runtime selects the JavaScript runtime.
type Runtime struct {
	Executable string `toml:"executable" json:"executable"`
	Preload    string `toml:"preload" json:"preload"`
}

// Compile holds compilation defaults.
type Compile struct {
	LoaderPattern string `toml:"loader-pattern" json:"loader-pattern"`
	Extension     string `toml:"extension" json:"extension"`
	Module        bool   `toml:"module" json:"module"`
	Jobs          int    `toml:"jobs" json:"jobs"`
}

// Stdin bounds the stdin compile path.
type Stdin struct {
	MaxBytes int64  `toml:"max-bytes" json:"max-bytes"`
	Filename string `toml:"filename" json:"filename"`
}

// Cache configures the artifact cache.
type Cache struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Path    string `toml:"path" json:"path"`
}

// Log configures diagnostics on stderr.
type Log struct {
	Verbosity int `toml:"verbosity" json:"verbosity"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Runtime: Runtime{
			Executable: "node",
			Preload:    "bytenode",
		},
		Compile: Compile{
			LoaderPattern: "%.loader.js",
			Extension:     ".jsc",
			Module:        true,
			Jobs:          runtime.NumCPU(),
		},
		Stdin: Stdin{
			MaxBytes: 64 << 20,
		},
	}
}

// LoadFile reads a config file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return c, nil
}

// Find walks up from startDir looking for bytenode.toml and returns its
// path, or "" when there is none.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load resolves the configuration for a process started in dir: the file
// named by BYTENODE_CONFIG, else the nearest bytenode.toml, else defaults;
// then environment overrides; then validation.
func Load(dir string, getenv func(string) string) (*Config, error) {
	path := getenv(EnvConfig)
	if path == "" {
		var err error
		if path, err = Find(dir); err != nil {
			return nil, err
		}
	}

	c := Default()
	if path != "" {
		var err error
		if c, err = LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := c.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvRuntime); v != "" {
		c.Runtime.Executable = v
	}
	if v := getenv(EnvPreload); v != "" {
		c.Runtime.Preload = v
	}
	if v := getenv(EnvLog); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", EnvLog, v)
		}
		c.Log.Verbosity = n
	}
	if v := getenv(EnvCache); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", EnvCache, v)
		}
		c.Cache.Enabled = b
	}
	return nil
}
