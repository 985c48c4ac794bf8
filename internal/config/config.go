// Package config loads treeviz settings from a config file, environment
// variables and defaults.
package config

import "errors"

// Default values applied before any config source.
const (
	DefaultOutputWidth = 80
	DefaultOutputColor = false
	DefaultOutputStats = false
)

// Validation errors.
var (
	ErrInvalidWidth = errors.New("output.width must be positive")
)

// Config holds all treeviz settings.
type Config struct {
	// Adapter names the default definition file applied when the command
	// line does not choose one.
	Adapter string `mapstructure:"adapter"`

	// Format forces a document format instead of extension detection.
	Format string `mapstructure:"format"`

	Output OutputConfig `mapstructure:"output"`
}

// OutputConfig holds rendering knobs.
type OutputConfig struct {
	Width int  `mapstructure:"width"`
	Color bool `mapstructure:"color"`
	Stats bool `mapstructure:"stats"`
}

// Validate checks cross-field constraints after loading.
func (c *Config) Validate() error {
	if c.Output.Width <= 0 {
		return ErrInvalidWidth
	}

	return nil
}
