package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SchemaPath string // .json or .yaml schema document
	FontsDir   string // directory the asset pre-pass loads fonts from

	LogFormat string
	LogLevel  string

	// Overrides are raw "name=value" global-parameter overrides applied
	// before the run.
	Overrides []string

	// Dump prints the materialized tree as an indented outline after the run.
	Dump bool
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.SchemaPath == "" {
		return nil, errors.New("SchemaPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
