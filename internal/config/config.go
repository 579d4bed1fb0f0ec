// Package config provides YAML-based engine configuration for the
// collision registry and its host.
package config

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/hitbox/internal/collision"
)

// Config contains all engine configuration.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	Pairs    PairsConfig    `yaml:"pairs"`
	Log      LogConfig      `yaml:"log"`
}

// RegistryConfig defines registry limits.
type RegistryConfig struct {
	Capacity int `yaml:"capacity"` // Per category, 0 = unbounded
}

// PairsConfig selects which category combinations are tested for collisions.
type PairsConfig struct {
	DynamicFixed   bool `yaml:"dynamic_fixed"`
	DynamicDynamic bool `yaml:"dynamic_dynamic"`
	FixedFixed     bool `yaml:"fixed_fixed"`
}

// LogConfig defines logging parameters.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Policy converts the pair flags to a collision.Policy.
func (c Config) Policy() collision.Policy {
	var p collision.Policy
	if c.Pairs.DynamicFixed {
		p |= collision.DynamicFixed
	}
	if c.Pairs.DynamicDynamic {
		p |= collision.DynamicDynamic
	}
	if c.Pairs.FixedFixed {
		p |= collision.FixedFixed
	}
	return p
}

// LogLevel parses the configured log level. An empty level means info.
func (c Config) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("config: log level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}

// Validate checks the config for values the engine cannot use.
func (c Config) Validate() error {
	if c.Registry.Capacity < 0 {
		return fmt.Errorf("config: registry capacity must be >= 0, got %d", c.Registry.Capacity)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// RegistryOptions returns the options that build a registry from this config.
// logger may be nil.
func (c Config) RegistryOptions(logger *log.Logger) []collision.Option {
	opts := []collision.Option{
		collision.WithCapacity(c.Registry.Capacity),
		collision.WithPolicy(c.Policy()),
	}
	if logger != nil {
		opts = append(opts, collision.WithLogger(logger))
	}
	return opts
}

// NewRegistry builds an empty registry configured by c.
func (c Config) NewRegistry(logger *log.Logger) *collision.Registry {
	return collision.NewRegistry(c.RegistryOptions(logger)...)
}
