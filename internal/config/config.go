// Package config loads the calculator's TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the calculator configuration.
type Config struct {
	// Prompt is the REPL prompt.
	Prompt string `toml:"prompt"`
	// Banner is printed when the REPL starts on a terminal.
	Banner string `toml:"banner"`
	// Prec is the float precision in bits. Zero means the default.
	Prec uint `toml:"prec"`
	// Format is the fmt verb used to print results, e.g. "%g".
	Format string `toml:"format"`
	// Color is one of auto, always, or never.
	Color string `toml:"color"`
	// MaxDepth limits expression nesting. Zero means the default.
	MaxDepth int `toml:"max_depth"`
	// MaxBits limits the magnitude of results. Zero means the default.
	MaxBits uint `toml:"max_bits"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Prompt: "calc> ",
		Banner: "Simple Calculator. Type 'quit' or 'exit' to stop.",
		Format: "%v",
		Color:  ColorAuto,
	}
}

// DefaultPath returns the path of the configuration file used when none is
// given, $XDG_CONFIG_HOME/arith/config.toml or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "arith", "config.toml"), nil
}

// FindAndLoad loads the configuration at path. If path is empty, it loads the
// file at DefaultPath if there is one, and otherwise returns the default
// configuration. The second result is the path of the file loaded, if any.
func FindAndLoad(path string) (*Config, string, error) {
	if path != "" {
		cfg, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	p, err := DefaultPath()
	if err != nil {
		// No config directory means no config file.
		return Default(), "", nil
	}
	cfg, err := Load(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return cfg, p, nil
}

// Load loads a configuration file. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		s := make([]string, len(keys))
		for i, k := range keys {
			s[i] = k.String()
		}
		return nil, fmt.Errorf("loading config %s: unknown keys %s", path, strings.Join(s, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration's values are usable.
func (c *Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be %s, %s, or %s, not %q", ColorAuto, ColorAlways, ColorNever, c.Color)
	}
	if !strings.HasPrefix(c.Format, "%") {
		return fmt.Errorf("format %q is not a fmt verb", c.Format)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative")
	}
	return nil
}
