// Package core wires the resolver's components into a single value that is
// constructed once from Config and passed explicitly to callers (the HTTP
// server, the MCP server, the CLI commands), replacing package-level
// singletons.
package core

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/nodegraph/modelresolver/internal/cache"
	"github.com/nodegraph/modelresolver/internal/catalog"
	"github.com/nodegraph/modelresolver/internal/config"
	"github.com/nodegraph/modelresolver/internal/db"
	"github.com/nodegraph/modelresolver/internal/download"
	"github.com/nodegraph/modelresolver/internal/inventory"
	"github.com/nodegraph/modelresolver/internal/query"
	"github.com/nodegraph/modelresolver/internal/rank"
	"github.com/nodegraph/modelresolver/internal/registry"
	"github.com/nodegraph/modelresolver/internal/router"
)

// Core bundles the fully-wired resolver: the local inventory, the cache, the
// registered catalog adapters, the download manager, and the configuration
// each was built from.
type Core struct {
	Config    *config.Config
	Log       *slog.Logger
	DB        *db.DB
	Cache     *cache.Cache
	Inventory *inventory.Inventory
	Adapters  []catalog.Adapter
	Downloads *download.Manager
}

// New constructs a Core from cfg. The returned Core owns its DB connection;
// callers should Close it on shutdown.
func New(cfg *config.Config, log *slog.Logger) (*Core, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.CacheDir, "modelresolver.db")
	d, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c := cache.New(d)
	inv := inventory.New(c, int64(cfg.Cache.InventoryTTLS))

	httpClient := &http.Client{Timeout: time.Duration(cfg.Search.TimeoutS) * time.Second}
	adapters := []catalog.Adapter{
		catalog.NewHuggingFaceAdapter(catalog.HuggingFaceConfig{
			BaseURL: cfg.CatalogH.BaseURL,
			Token:   cfg.CatalogH.Token,
		}, httpClient, c),
		catalog.NewCivitaiAdapter(catalog.CivitaiConfig{
			BaseURL: cfg.CatalogC.BaseURL,
			APIKey:  cfg.CatalogC.Token,
		}, httpClient, c),
	}

	dm := download.New(download.Config{
		Concurrency: cfg.Download.Concurrency,
		MaxRetries:  cfg.Download.Retries,
		ChunkBytes:  cfg.Download.ChunkBytes,
		Timeout:     time.Duration(cfg.Download.PerTaskTimeoutS) * time.Second,
		Auth: download.AuthHeaders{
			HuggingFaceHosts: []string{hostOf(cfg.CatalogH.BaseURL)},
			HuggingFaceToken: cfg.CatalogH.Token,
			CivitaiHosts:     []string{hostOf(cfg.CatalogC.BaseURL)},
			CivitaiAPIKey:    cfg.CatalogC.Token,
		},
	}, d, log)

	return &Core{
		Config:    cfg,
		Log:       log,
		DB:        d,
		Cache:     c,
		Inventory: inv,
		Adapters:  adapters,
		Downloads: dm,
	}, nil
}

// Close releases the underlying database connection.
func (c *Core) Close() error {
	return c.DB.Close()
}

// RouterConfig projects the loaded configuration into a router.Config.
func (c *Core) RouterConfig() router.Config {
	return router.Config{OfficialPrefixes: c.Config.Router.OfficialPrefixes}
}

// QueryConfig projects the loaded configuration into a query.Config.
func (c *Core) QueryConfig() query.Config {
	return query.Config{CuratedAuthors: c.Config.Router.CuratedAuthors}
}

// RankConfig projects the loaded configuration into a rank.Config.
func (c *Core) RankConfig() rank.Config {
	return rank.Config{TrustedAuthors: c.Config.Rank.TrustedAuthors}
}

// SubdirsByKind resolves the configured kind -> subdirectory mapping,
// falling back to the registry default for any kind the configuration
// doesn't override.
func (c *Core) SubdirsByKind(kind registry.Kind) string {
	if v, ok := c.Config.Subdirs[string(kind)]; ok {
		return v
	}
	return registry.DefaultSubdirs[kind]
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
