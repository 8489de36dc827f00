// Package config loads keeper process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv populates target from the WORLDKEEPER_-prefixed environment
// variables named in its env tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("load environment config: %w", err)
	}
	return nil
}
