package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// applyEnvOverrides pisa los valores del YAML con las variables de entorno
// definidas. Las no definidas dejan el valor del archivo intacto.
func (c *Config) applyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
