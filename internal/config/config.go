package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (MODELRESOLVER_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// MODELRESOLVER_PATHS__MODELS_ROOT -> paths.models_root; a double
	// underscore marks nesting, a single one stays part of the key name.
	if err := k.Load(env.Provider("MODELRESOLVER_", ".", func(s string) string {
		trimmed := strings.ToLower(strings.TrimPrefix(s, "MODELRESOLVER_"))
		return strings.ReplaceAll(trimmed, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Paths.ModelsRoot == "" {
		return fmt.Errorf("paths.models_root is required")
	}
	if c.Paths.CacheDir == "" {
		return fmt.Errorf("paths.cache_dir is required")
	}
	if c.CatalogH.BaseURL == "" {
		return fmt.Errorf("catalog_h.base_url is required")
	}
	if c.CatalogC.BaseURL == "" {
		return fmt.Errorf("catalog_c.base_url is required")
	}
	if c.Search.Concurrency <= 0 {
		return fmt.Errorf("search.concurrency must be positive")
	}
	if c.Download.Concurrency <= 0 {
		return fmt.Errorf("download.concurrency must be positive")
	}
	if c.Download.Retries < 0 {
		return fmt.Errorf("download.retries must be non-negative")
	}
	if c.Matching.FuzzyThreshold < 0 || c.Matching.FuzzyThreshold > 1 {
		return fmt.Errorf("matching.fuzzy_threshold must be within [0,1]")
	}
	return nil
}
