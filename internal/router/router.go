// Package router computes the ordered list of catalogs to query for an
// artifact. The routing rules are fixed branches in Route; only the official
// checkpoint prefixes come from configuration.
package router

import (
	"strings"

	"github.com/nodegraph/modelresolver/internal/registry"
)

// CatalogID identifies a registered catalog adapter by its symbolic id.
type CatalogID string

const (
	CatalogH CatalogID = "catalog_H"
	CatalogC CatalogID = "catalog_C"
)

// Config carries the configuration-driven parts of routing: the official
// checkpoint prefixes that route a checkpoint to catalog_H alone.
type Config struct {
	OfficialPrefixes []string
}

// DefaultOfficialPrefixes ships as the explicit default so the behavior
// never depends on a hidden constant (spec §9 open question).
var DefaultOfficialPrefixes = []string{
	"flux1-dev", "flux1-schnell", "sdxl-base", "sd_xl_base", "stable-diffusion-",
}

// Route returns the ordered catalog list for ref, evaluating its rules in
// order; the first matching rule wins.
func Route(cfg Config, filename string, kind registry.Kind) []CatalogID {
	lower := strings.ToLower(filename)

	if kind == registry.KindLora {
		return []CatalogID{CatalogC, CatalogH}
	}

	switch kind {
	case registry.KindUNet, registry.KindVAE, registry.KindClip, registry.KindTextEncoder,
		registry.KindControlNet, registry.KindUpscale, registry.KindEmbeddings:
		return []CatalogID{CatalogH}
	}

	if strings.HasSuffix(lower, ".gguf") {
		return []CatalogID{CatalogH}
	}

	if kind == registry.KindCheckpoint {
		for _, prefix := range cfg.OfficialPrefixes {
			if strings.HasPrefix(lower, strings.ToLower(prefix)) {
				return []CatalogID{CatalogH}
			}
		}
		return []CatalogID{CatalogH, CatalogC}
	}

	// kind == unknown, or any kind not covered above.
	return []CatalogID{CatalogH, CatalogC}
}
