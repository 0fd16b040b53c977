// Package config loads Orus's environment-driven configuration (spec §6:
// "ORUS_STD_PATH overrides the stdlib root; ORUS_CACHE_PATH overrides the
// bytecode cache root"), independent of the CLI flag-parsing layer so the
// module loader can be constructed and tested without going through
// internal/cli at all.
package config

import "github.com/caarlos0/env/v6"

// Config holds every value the module loader (lang/modules) needs to
// resolve and cache modules, populated from environment variables.
type Config struct {
	StdPath   string `env:"ORUS_STD_PATH"`
	CachePath string `env:"ORUS_CACHE_PATH"`
}

// Load reads Config from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
