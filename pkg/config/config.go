// Package config loads facet settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/polyface"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables shared by the engine, the app and the CLI.
type Config struct {
	Tolerances  polyface.Tolerances `toml:"tolerances" yaml:"tolerances"`
	Cells       int                 `toml:"cells" yaml:"cells"`             // marching cubes resolution
	Triangulate bool                `toml:"triangulate" yaml:"triangulate"` // fan-triangulate clip output
	Palette     []string            `toml:"palette" yaml:"palette"`         // render colours, cycled per mesh
	LogLevel    string              `toml:"log_level" yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Tolerances: polyface.DefaultTolerances(),
		Cells:      sdfx.DefaultCells,
		Palette: []string{
			"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
			"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
		},
		LogLevel: "warn",
	}
}

// Load reads path over the defaults. The extension picks the format:
// .toml, or .yaml/.yml. Unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data), filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes r in the format named by ext over the defaults.
func Parse(r io.Reader, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := c.Tolerances.Validate(); err != nil {
		return err
	}
	if c.Cells < 1 {
		return fmt.Errorf("cells must be at least 1, have %d", c.Cells)
	}
	if len(c.Palette) == 0 {
		return errors.New("palette is empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
