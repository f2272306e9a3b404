// Package config loads and validates tool configuration.
package config

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"lispdoc/document"
	"lispdoc/render"
)

type (
	// StyleConfig controls transcript formatting.
	StyleConfig struct {
		Prompt       string `yaml:"prompt"`
		Continuation string `yaml:"continuation"`
		ErrorPrefix  string `yaml:"error_prefix"`
	}

	Config struct {
		Style    StyleConfig `yaml:"style"`
		Fence    string      `yaml:"fence"`
		LogLevel string      `yaml:"log_level"`
		// Prelude is source evaluated into every new session before any
		// fragment runs.
		Prelude string `yaml:"prelude,omitempty"`
	}
)

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	style := render.DefaultStyle()
	return &Config{
		Style: StyleConfig{
			Prompt:       style.Prompt,
			Continuation: style.Continuation,
			ErrorPrefix:  style.ErrorPrefix,
		},
		Fence:    document.DefaultFenceTag,
		LogLevel: "none",
	}
}

// Load reads configuration from path, layered over the defaults. A missing
// file is not an error; explicit fields replace defaults, omitted fields
// keep them.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem with the configuration, not just the
// first.
func (c *Config) Validate() error {
	var errs error
	switch c.LogLevel {
	case "none", "normal", "debug":
	default:
		errs = multierr.Append(errs, fmt.Errorf("log_level must be one of none, normal, debug; got %q", c.LogLevel))
	}
	if c.Fence == "" {
		errs = multierr.Append(errs, fmt.Errorf("fence must not be empty"))
	}
	if c.Style.Prompt == "" {
		errs = multierr.Append(errs, fmt.Errorf("style.prompt must not be empty"))
	}
	return errs
}

// RenderStyle converts the configured style for the renderer.
func (c *Config) RenderStyle() render.Style {
	return render.Style{
		Prompt:       c.Style.Prompt,
		Continuation: c.Style.Continuation,
		ErrorPrefix:  c.Style.ErrorPrefix,
	}
}
