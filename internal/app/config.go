package app

import (
	"errors"
	"fmt"
	"os"
)

// DefaultDir is where decision files live, relative to the repository root.
const DefaultDir = ".taskcluster"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Dir holds the decision files (.hcl), searched recursively.
	Dir string
	// SettingsPath is an optional YAML settings file.
	SettingsPath string

	LogFormat string
	LogLevel  string

	// Submit forces submission even outside of a task.
	Submit bool
	// DryRun prints definitions without submitting, even inside a task.
	DryRun bool

	// Getenv reads the environment. Defaults to os.Getenv.
	Getenv func(string) string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Dir == "" {
		return nil, errors.New("Dir is a required configuration field and cannot be empty")
	}
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.Submit && cfg.DryRun {
		return nil, errors.New("submit and dry-run are mutually exclusive")
	}
	if cfg.Getenv == nil {
		cfg.Getenv = os.Getenv
	}
	return &cfg, nil
}
