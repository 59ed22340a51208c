package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering an optional file and env vars over the
// defaults. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PERCEPT_CONFIG is set
//  3. env (prefix PERCEPT_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PERCEPT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Env keys like PERCEPT_MAX_CELLS map to the flat koanf key max_cells.
	envProvider := env.Provider("PERCEPT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "percept_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Iterations <= 0 {
		return nil, errors.New("iterations must be positive")
	}
	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	return &cfg, nil
}
