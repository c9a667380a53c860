// Package config loads logreport settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"logreport/internal/extractor"
	"logreport/internal/format"
	"logreport/internal/registry"
)

// Default paths, relative to the working directory.
const (
	DefaultInput  = "sample-log.txt"
	DefaultOutput = "output.txt"
)

// Config holds all logreport configuration.
type Config struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`

	// Strict rejects lines that end before a field begins.
	Strict bool `yaml:"strict"`

	Date   DateConfig       `yaml:"date"`
	Schema extractor.Schema `yaml:"schema"`

	// Archive is the SQLite file runs are recorded in. Empty disables archiving.
	Archive string `yaml:"archive"`
}

// DateConfig selects the output date style.
type DateConfig struct {
	Style   string `yaml:"style"`   // long, weekday
	Pattern string `yaml:"pattern"` // strftime pattern, overrides Style
}

// DefaultConfig returns the configuration that reproduces the standard report.
func DefaultConfig() *Config {
	return &Config{
		Input:  DefaultInput,
		Output: DefaultOutput,
		Date: DateConfig{
			Style: format.DefaultStyle,
		},
		Schema: extractor.DefaultSchema(),
	}
}

// Load reads path and applies it over the defaults. Keys missing from the
// file keep their default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks paths, schema and date style.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("config: input path is empty")
	}
	if c.Output == "" {
		return fmt.Errorf("config: output path is empty")
	}
	if err := c.Schema.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.DateStyle(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DateStyle resolves the configured date style.
func (c *Config) DateStyle() (registry.Style, error) {
	return format.ResolveStyle(c.Date.Style, c.Date.Pattern)
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
