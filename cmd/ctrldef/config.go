package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/SimonDaKappa/go-ctrldef"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the CLI settings. Every field can be overridden by the
// matching flag.
type Config struct {
	RootNamespace string `yaml:"root_namespace"`
	IndentGlyph   string `yaml:"indent_glyph"`
	Strict        bool   `yaml:"strict"`
	Format        string `yaml:"format"`
	LogLevel      string `yaml:"log_level"`
}

func defaultConfig() *Config {
	return &Config{
		RootNamespace: ctrldef.DefaultRootNamespace,
		IndentGlyph:   ctrldef.DefaultIndentGlyph,
		Format:        formatJSON,
		LogLevel:      "warn",
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults. Environment variables in the file are expanded.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.RootNamespace == "" {
		return fmt.Errorf("%w: root_namespace is empty", ErrInvalidConfig)
	}
	if c.IndentGlyph == "" {
		return fmt.Errorf("%w: indent_glyph is empty", ErrInvalidConfig)
	}
	switch c.Format {
	case formatJSON, formatYAML, formatSpew:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	return nil
}

// CompileOpts maps the config onto library options.
func (c *Config) CompileOpts() ctrldef.CompileOpts {
	return ctrldef.CompileOpts{
		RootNamespace: c.RootNamespace,
		IndentGlyph:   c.IndentGlyph,
		Strict:        c.Strict,
	}
}
