package config

// Config is the top-level modelresolver configuration, corresponding to
// .modelresolver.yml.
type Config struct {
	Paths    PathsConfig       `yaml:"paths" koanf:"paths"`
	Subdirs  map[string]string `yaml:"subdirs" koanf:"subdirs"`
	CatalogH CatalogConfig     `yaml:"catalog_h" koanf:"catalog_h"`
	CatalogC CatalogConfig     `yaml:"catalog_c" koanf:"catalog_c"`
	Search   SearchConfig      `yaml:"search" koanf:"search"`
	Download DownloadConfig    `yaml:"download" koanf:"download"`
	Cache    CacheConfig       `yaml:"cache" koanf:"cache"`
	Router   RouterConfig      `yaml:"router" koanf:"router"`
	Matching MatchingConfig    `yaml:"matching" koanf:"matching"`
	Rank     RankConfig        `yaml:"rank" koanf:"rank"`
	Server   ServerConfig      `yaml:"server" koanf:"server"`
}

// PathsConfig locates the local inventory and the SQLite-backed cache.
type PathsConfig struct {
	ModelsRoot string `yaml:"models_root" koanf:"models_root"`
	CacheDir   string `yaml:"cache_dir" koanf:"cache_dir"`
}

// CatalogConfig configures one remote catalog adapter (catalog_H or
// catalog_C).
type CatalogConfig struct {
	BaseURL string `yaml:"base_url" koanf:"base_url"`
	Token   string `yaml:"token" koanf:"token"`
}

// SearchConfig configures catalog searches. TimeoutS sets the adapters' HTTP
// client timeout. Concurrency is validated but not otherwise read: Core.Search
// starts one goroutine per routed adapter with no shared gate.
type SearchConfig struct {
	Concurrency int `yaml:"concurrency" koanf:"concurrency"`
	TimeoutS    int `yaml:"timeout_s" koanf:"timeout_s"`
}

// DownloadConfig configures the Download Manager's worker pool and transfer
// parameters.
type DownloadConfig struct {
	Concurrency     int   `yaml:"concurrency" koanf:"concurrency"`
	Retries         int   `yaml:"retries" koanf:"retries"`
	ChunkBytes      int64 `yaml:"chunk_bytes" koanf:"chunk_bytes"`
	PerTaskTimeoutS int   `yaml:"per_task_timeout_s" koanf:"per_task_timeout_s"`
}

// CacheConfig sets the TTL for each cache namespace.
type CacheConfig struct {
	SearchTTLS    int `yaml:"search_ttl_s" koanf:"search_ttl_s"`
	InventoryTTLS int `yaml:"inventory_ttl_s" koanf:"inventory_ttl_s"`
}

// RouterConfig carries the Search Router's configuration-driven exception
// lists (spec §4.7/§9).
type RouterConfig struct {
	CuratedAuthors   []string `yaml:"curated_authors" koanf:"curated_authors"`
	OfficialPrefixes []string `yaml:"official_prefixes" koanf:"official_prefixes"`
}

// MatchingConfig configures the local Matcher's fuzzy-lookup threshold.
type MatchingConfig struct {
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" koanf:"fuzzy_threshold"`
}

// RankConfig configures the Result Ranker's trust bonus.
type RankConfig struct {
	TrustedAuthors []string `yaml:"trusted_authors" koanf:"trusted_authors"`
}

// ServerConfig configures the HTTP/WebSocket API.
type ServerConfig struct {
	Addr           string   `yaml:"addr" koanf:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}
