// Package inventory scans a models root directory and answers exact- and
// fuzzy-lookup queries against what is already present on disk.
package inventory

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nodegraph/modelresolver/internal/cache"
	"github.com/nodegraph/modelresolver/internal/keyword"
	"github.com/nodegraph/modelresolver/internal/registry"
	"github.com/nodegraph/modelresolver/internal/walker"
)

// recognizedIncludes are the artifact glob patterns the inventory indexes;
// passed to walker.Walk as its Include filter.
var recognizedIncludes = []string{
	"**/*.safetensors", "**/*.ckpt", "**/*.pt", "**/*.pth", "**/*.bin", "**/*.onnx", "**/*.gguf",
}

// LocalModel is a single artifact file discovered on disk.
type LocalModel struct {
	AbsolutePath string    `json:"absolute_path"`
	Filename     string    `json:"filename"`
	SizeBytes    int64     `json:"size_bytes"`
	ModifiedAt   time.Time `json:"modified_at"`
	Subdirectory string    `json:"subdirectory"`
	Keywords     []string  `json:"keywords"`
}

// SkippedSubtree records an unreadable subtree encountered during a scan;
// indexing itself never fails because of one (spec §4.4 failure semantics).
type SkippedSubtree = walker.SkippedSubtree

// Inventory holds the indexed models for one root directory.
type Inventory struct {
	root     string
	models   []LocalModel
	byName   map[string]*LocalModel
	skipped  []SkippedSubtree
	cache    *cache.Cache
	ttlSecs  int64
	nowFunc  func() time.Time
}

// New constructs an Inventory that persists its scan under the inventory
// namespace of c, with the given TTL in seconds. A nil cache disables
// persistence (every Index call performs a fresh scan).
func New(c *cache.Cache, ttlSeconds int64) *Inventory {
	return &Inventory{cache: c, ttlSecs: ttlSeconds, nowFunc: time.Now}
}

// Index recursively scans root, building the in-memory index. If a cached
// scan for this root is still within its TTL, the cache is used instead of
// touching the filesystem.
func (inv *Inventory) Index(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("inventory: resolve root: %w", err)
	}
	inv.root = abs

	if inv.cache != nil {
		now := inv.nowFunc().Unix()
		if raw, ok, err := inv.cache.Get(cache.NamespaceInventory, abs, now); err == nil && ok {
			var models []LocalModel
			if err := json.Unmarshal(raw, &models); err == nil {
				inv.setModels(models, nil)
				return nil
			}
		}
	}

	models, skipped, err := scan(abs)
	if err != nil {
		return err
	}
	inv.setModels(models, skipped)

	if inv.cache != nil {
		if raw, err := json.Marshal(models); err == nil {
			_ = inv.cache.Set(cache.NamespaceInventory, abs, raw, inv.ttlSecs, inv.nowFunc().Unix())
		}
	}
	return nil
}

func (inv *Inventory) setModels(models []LocalModel, skipped []SkippedSubtree) {
	inv.models = models
	inv.skipped = skipped
	inv.byName = make(map[string]*LocalModel, len(models))
	for i := range models {
		inv.byName[strings.ToLower(models[i].Filename)] = &models[i]
	}
}

// Skipped returns the unreadable subtrees recorded by the most recent Index.
func (inv *Inventory) Skipped() []SkippedSubtree { return inv.skipped }

// Models returns every indexed LocalModel.
func (inv *Inventory) Models() []LocalModel { return inv.models }

// LookupExact returns the LocalModel whose filename matches (case
// insensitively), in O(1).
func (inv *Inventory) LookupExact(filename string) (LocalModel, bool) {
	m, ok := inv.byName[strings.ToLower(filename)]
	if !ok {
		return LocalModel{}, false
	}
	return *m, true
}

// LookupFuzzy scans all models whose subdirectory matches kind's canonical
// directory (or every model, when kind is unknown) and returns the best
// Jaccard match against keywords whose score is at least threshold.
func (inv *Inventory) LookupFuzzy(keywords []string, kind registry.Kind, threshold float64) (LocalModel, float64, bool) {
	wantDir := registry.DefaultSubdirs[kind]

	var best LocalModel
	bestScore := -1.0
	for _, m := range inv.models {
		if kind != registry.KindUnknown && wantDir != "" && m.Subdirectory != wantDir {
			continue
		}
		score := keyword.Similarity(keywords, m.Keywords)
		if score > bestScore {
			bestScore = score
			best = m
		}
	}
	if bestScore < threshold || bestScore < 0 {
		return LocalModel{}, 0, false
	}
	return best, bestScore, true
}

// scan walks root via the shared walker package and builds a LocalModel for
// every file matching recognizedIncludes. An unreadable subtree is recorded
// and skipped; the scan itself never aborts because of one.
func scan(root string) ([]LocalModel, []SkippedSubtree, error) {
	found, skipped, err := walker.Walk(walker.WalkerConfig{RootDir: root, Include: recognizedIncludes})
	if err != nil {
		return nil, skipped, fmt.Errorf("inventory: %w", err)
	}

	models := make([]LocalModel, 0, len(found))
	for _, f := range found {
		models = append(models, LocalModel{
			AbsolutePath: f.Path,
			Filename:     filepath.Base(f.RelPath),
			SizeBytes:    f.Size,
			ModifiedAt:   time.Unix(f.ModifiedAt, 0).UTC(),
			Subdirectory: walker.TopLevelDir(f.RelPath),
			Keywords:     keyword.Extract(filepath.Base(f.RelPath)),
		})
	}
	return models, skipped, nil
}

