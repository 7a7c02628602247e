package config

import (
	"os"
	"path/filepath"

	"github.com/nodegraph/modelresolver/internal/registry"
	"github.com/nodegraph/modelresolver/internal/router"
)

// DefaultConfig returns a Config with sensible defaults. Callers overlay a
// YAML file and then AUTODOC_-style (here, MODELRESOLVER_-prefixed)
// environment variables on top of it.
func DefaultConfig() *Config {
	subdirs := make(map[string]string, len(registry.DefaultSubdirs))
	for k, v := range registry.DefaultSubdirs {
		subdirs[string(k)] = v
	}

	return &Config{
		Paths: PathsConfig{
			ModelsRoot: "./models",
			CacheDir:   defaultCacheDir(),
		},
		Subdirs: subdirs,
		CatalogH: CatalogConfig{
			BaseURL: "https://huggingface.co",
		},
		CatalogC: CatalogConfig{
			BaseURL: "https://civitai.com",
		},
		Search: SearchConfig{
			Concurrency: 4,
			TimeoutS:    20,
		},
		Download: DownloadConfig{
			Concurrency:     3,
			Retries:         3,
			ChunkBytes:      4 << 20,
			PerTaskTimeoutS: 0,
		},
		Cache: CacheConfig{
			SearchTTLS:    3600,
			InventoryTTLS: 600,
		},
		Router: RouterConfig{
			OfficialPrefixes: router.DefaultOfficialPrefixes,
		},
		Matching: MatchingConfig{
			FuzzyThreshold: 0.7,
		},
		Server: ServerConfig{
			Addr: ":8765",
		},
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "modelresolver")
	}
	return ".modelresolver-cache"
}
