// Package config loads the qxwatch configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the configuration file qxwatch looks for in the working directory.
const DefaultFile = ".qxtags.toml"

// Config controls the watch daemon.
type Config struct {
	// Roots are the directories to index and watch.
	Roots []string `toml:"roots"`
	// Output is the tags file rewritten after every change.
	Output string `toml:"output"`
	// Debounce is how long events are collected before re-indexing.
	Debounce time.Duration `toml:"debounce"`
	// Gitignore skips paths matched by the first root's .gitignore.
	Gitignore bool `toml:"gitignore"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Output:   "tags",
		Debounce: 250 * time.Millisecond,
	}
}

// Load reads path over the defaults. A missing file is not an error when
// optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Resolve makes roots and output absolute and validates the result.
func (c *Config) Resolve() error {
	if len(c.Roots) == 0 {
		return errors.New("no roots to watch")
	}
	if c.Output == "" {
		return errors.New("output path is empty")
	}
	if c.Debounce < 0 {
		return fmt.Errorf("negative debounce %s", c.Debounce)
	}
	for i, r := range c.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return fmt.Errorf("resolving root %s: %w", r, err)
		}
		c.Roots[i] = abs
	}
	out, err := filepath.Abs(c.Output)
	if err != nil {
		return fmt.Errorf("resolving output %s: %w", c.Output, err)
	}
	c.Output = out
	return nil
}
