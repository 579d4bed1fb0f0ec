package config

import (
	_ "embed"

	"github.com/vovakirdan/hitbox/internal/collision"
)

//go:embed defaults/engine.yaml
var defaultEngineYAML []byte

// Default returns the default engine configuration.
func Default() Config {
	return Config{
		Registry: RegistryConfig{
			Capacity: collision.DefaultCapacity,
		},
		Pairs: PairsConfig{
			DynamicFixed:   true,
			DynamicDynamic: true,
			FixedFixed:     false,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultYAML returns the embedded default config file.
func DefaultYAML() []byte {
	return defaultEngineYAML
}
