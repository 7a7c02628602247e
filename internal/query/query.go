// Package query synthesizes candidate search strings from a filename.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

// Config carries the configuration-driven curated author namespaces used by
// the specialized-repository-hint decomposer.
type Config struct {
	CuratedAuthors []string
}

// seriesRule canonicalizes one model family's variant spellings.
type seriesRule struct {
	family    string
	variants  []string
	versions  []string
	canonical func(version string) string
}

var seriesRules = []seriesRule{
	{
		family:   "flux",
		variants: []string{"flux1", "flux-1", "flux_1"},
		versions: []string{"dev", "schnell", "pro"},
		canonical: func(version string) string {
			return fmt.Sprintf("flux1-%s", version)
		},
	},
	{
		family:   "wan",
		variants: []string{"wan2.1", "wan2_1", "wan21", "wan2", "wan"},
		canonical: func(string) string {
			return "Wan2.1"
		},
	},
	{
		family:   "hunyuan",
		variants: []string{"hunyuan", "hy"},
		canonical: func(string) string {
			return "HunyuanDiT"
		},
	},
}

var gbSizeToken = regexp.MustCompile(`(?i)\d+gb`)

// Synthesize returns an ordered, duplicate-free list of candidate query
// strings for filename, when queried against adapterID.
func Synthesize(cfg Config, filename, adapterID string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(q string) {
		if q == "" || seen[q] {
			return
		}
		seen[q] = true
		out = append(out, q)
	}

	base := basename(filename)
	add(base)

	add(technical(base))

	for _, variant := range normalizedSeries(base) {
		add(variant)
	}

	if adapterID == "catalog_H" && strings.HasSuffix(strings.ToLower(filename), ".gguf") {
		for _, hint := range repositoryHints(cfg, base) {
			add(hint)
		}
	}

	for _, q := range append([]string{}, out...) {
		for _, variant := range separatorVariants(q) {
			add(variant)
		}
	}

	return out
}

func basename(filename string) string {
	ext := filename
	for _, e := range []string{".safetensors", ".ckpt", ".pt", ".pth", ".bin", ".onnx", ".gguf"} {
		if strings.HasSuffix(strings.ToLower(filename), e) {
			return filename[:len(filename)-len(e)]
		}
	}
	return ext
}

// technical drops size markers (e.g. "12gb") but keeps quant/precision
// tokens, since those narrow the search rather than adding noise.
func technical(base string) string {
	return strings.TrimSpace(gbSizeToken.ReplaceAllString(base, ""))
}

// normalizedSeries recognizes model-family prefixes and emits canonicalized
// query forms for each configured version.
func normalizedSeries(base string) []string {
	lower := strings.ToLower(base)
	var out []string
	for _, rule := range seriesRules {
		for _, variant := range rule.variants {
			if !strings.Contains(lower, variant) {
				continue
			}
			if len(rule.versions) == 0 {
				out = append(out, rule.canonical(""))
				break
			}
			for _, version := range rule.versions {
				if strings.Contains(lower, version) {
					out = append(out, rule.canonical(version))
				}
			}
			break
		}
	}
	return out
}

// repositoryHints emits queries scoped to curated author namespaces known to
// host quantized GGUF builds, only relevant to the HuggingFace-like adapter.
func repositoryHints(cfg Config, base string) []string {
	lower := strings.ToLower(base)
	isFlux := strings.Contains(lower, "flux")
	if !isFlux || len(cfg.CuratedAuthors) == 0 {
		return nil
	}
	var out []string
	for _, author := range cfg.CuratedAuthors {
		out = append(out,
			fmt.Sprintf("%s/FLUX.1-dev-gguf", author),
			fmt.Sprintf("%s/flux.1-dev-gguf", author),
		)
	}
	return out
}

// separatorVariants emits copies of q with '.'/'_' swapped for '-' and ' ',
// for any query that actually contains one of those separators.
func separatorVariants(q string) []string {
	if !strings.ContainsAny(q, "._") {
		return nil
	}
	dash := strings.NewReplacer(".", "-", "_", "-").Replace(q)
	space := strings.NewReplacer(".", " ", "_", " ").Replace(q)
	return []string{dash, space}
}
