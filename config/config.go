// Package config holds the options shared by the analyses and the leveled
// logging they report through.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config contains the tunable options of the analyses. Fields not present in
// a loaded file keep their defaults.
type Config struct {
	// LogLevel controls the verbosity of the analyses (see LogLevel
	// constants).
	LogLevel int `yaml:"log-level"`

	// MaxSteps bounds the number of transfer-function applications of a
	// fixed-point run. <= 0 means unbounded; the bound exists only to make
	// a non-monotone client observable.
	MaxSteps int `yaml:"max-steps"`

	// ValidateGraph runs the structural validator before analyses and logs
	// its findings. Violations are diagnostics, never fatal.
	ValidateGraph bool `yaml:"validate-graph"`
}

// Default returns the default configuration: info-level logging, unbounded
// fixed-point iteration, no validation.
func Default() *Config {
	return &Config{LogLevel: int(InfoLevel)}
}

// Load reads a yaml config file.
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file %s: %w", filename, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", filename, err)
	}

	if cfg.LogLevel < int(ErrLevel) || cfg.LogLevel > int(TraceLevel) {
		return nil, fmt.Errorf("config file %s: log-level %d out of range [%d, %d]",
			filename, cfg.LogLevel, ErrLevel, TraceLevel)
	}

	return cfg, nil
}
