package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Overrides are the settings that may be supplied through the environment.
type Overrides struct {
	MaxTurns int    `env:"CLUEDO_MAX_TURNS"`
	Seed     int64  `env:"CLUEDO_SEED"`
	LogLevel string `env:"CLUEDO_LOG_LEVEL"`
	Layout   string `env:"CLUEDO_LAYOUT"`
}

// LoadOverrides reads overrides from environment variables.
func LoadOverrides() (Overrides, error) {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return o, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

// Apply copies every non-zero override onto the config.
func (c *GameConfig) Apply(o Overrides) {
	if o.MaxTurns > 0 {
		c.MaxTurns = o.MaxTurns
	}
	if o.Layout != "" {
		c.Layout = o.Layout
	}
}
