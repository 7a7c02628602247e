// Package rank scores and merges per-artifact candidate search hits into a
// single ordered, deduplicated RankedCandidate.
package rank

import (
	"sort"

	"github.com/nodegraph/modelresolver/internal/catalog"
	"github.com/nodegraph/modelresolver/internal/workflow"
)

// RankedCandidate is one ArtifactRef plus its ordered, deduplicated hit list.
type RankedCandidate struct {
	Ref         workflow.ArtifactRef
	Hits        []ScoredHit
	Rating      int // 1-5 stars; 0 when no hits survive
	Recommended string
}

// ScoredHit is a SearchHit plus the score the ranker assigned it.
type ScoredHit struct {
	catalog.SearchHit
	Score int
}

// Config carries the configuration-driven curated trust-list: repositories
// or authors whose hits earn a +1 bonus, capped at 5 (spec §4.9). The list
// has no shipped default: config.DefaultConfig leaves it empty.
type Config struct {
	TrustedAuthors []string
}

// Rank concatenates hits from queried adapters (primary first, in the order
// given), dedups by direct_url, scores, and stable-sorts descending.
func Rank(cfg Config, ref workflow.ArtifactRef, adapterHits [][]catalog.SearchHit) RankedCandidate {
	trusted := make(map[string]bool, len(cfg.TrustedAuthors))
	for _, a := range cfg.TrustedAuthors {
		trusted[a] = true
	}

	seen := make(map[string]bool)
	var scored []ScoredHit
	for _, hits := range adapterHits {
		for _, h := range hits {
			if seen[h.DirectURL] {
				continue
			}
			seen[h.DirectURL] = true
			scored = append(scored, ScoredHit{SearchHit: h, Score: score(h, trusted)})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	cand := RankedCandidate{Ref: ref, Hits: scored}
	if len(scored) == 0 {
		cand.Rating = 0
		return cand
	}
	cand.Rating = scored[0].Score
	cand.Recommended = scored[0].DirectURL
	return cand
}

func score(h catalog.SearchHit, trusted map[string]bool) int {
	var s int
	switch h.Confidence {
	case catalog.ConfidenceExact:
		s = 5
	case catalog.ConfidenceFilenameMatch:
		s = 4
	case catalog.ConfidenceKeywordMatch:
		if h.KeywordMatchScore >= 0.8 {
			s = 3
		} else {
			s = 2
		}
	case catalog.ConfidenceSuggestive:
		s = 1
	}

	if trusted[h.RepositoryOrAuthor] {
		s++
	}
	if s > 5 {
		s = 5
	}
	return s
}
