package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SHOTGROUP_CONFIG is set
//  3. env (prefix SHOTGROUP_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SHOTGROUP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// Environment variables: SHOTGROUP_ADDR, SHOTGROUP_OUTLIER_MULTIPLIER, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("SHOTGROUP_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "shotgroup_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.HistoryBackend != BackendMemory && cfg.HistoryBackend != BackendSQLite:
		return nil, fmt.Errorf("%w: history_backend must be memory or sqlite", ErrInvalidConfig)
	case cfg.OutlierMultiplier <= 0:
		return nil, fmt.Errorf("%w: outlier_multiplier must be positive", ErrInvalidConfig)
	case cfg.WideMinRadius <= cfg.TightMaxRadius:
		return nil, fmt.Errorf("%w: wide_min_radius must exceed tight_max_radius", ErrInvalidConfig)
	case cfg.ConfidenceHighShots <= cfg.ConfidenceMediumShots:
		return nil, fmt.Errorf("%w: confidence_high_shots must exceed confidence_medium_shots", ErrInvalidConfig)
	}
	return &cfg, nil
}
