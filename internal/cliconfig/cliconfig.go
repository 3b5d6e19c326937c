// Package cliconfig loads the CLI's own optional YAML config file. Nothing
// here reaches internal/engine: the engine core takes no environment
// variables or config files, per its single-call contract.
package cliconfig

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds CLI-only preferences; it never influences translation or
// execution semantics.
type Config struct {
	DefaultFormat   string `yaml:"defaultFormat"`
	PrintTranslated bool   `yaml:"printTranslated"`
}

// Default returns the CLI's built-in defaults, used when no config file is
// given or found.
func Default() Config {
	return Config{DefaultFormat: "json", PrintTranslated: false}
}

// Load reads and parses a YAML config file at path, falling back to
// Default() for any field it doesn't set.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
