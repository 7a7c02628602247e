package core

import (
	"context"
	"sync"

	"github.com/nodegraph/modelresolver/internal/catalog"
	"github.com/nodegraph/modelresolver/internal/match"
	"github.com/nodegraph/modelresolver/internal/query"
	"github.com/nodegraph/modelresolver/internal/rank"
	"github.com/nodegraph/modelresolver/internal/router"
	"github.com/nodegraph/modelresolver/internal/workflow"
)

// PlanItem is one resolved artifact in a Plan: its match status against the
// local inventory, and, for anything not fully present, the ranked remote
// candidates found across the routed catalogs.
type PlanItem struct {
	Match      match.Result
	Candidates *rank.RankedCandidate
}

// Plan is the full set of artifacts a workflow requires, along with their
// resolution status.
type Plan struct {
	Items []PlanItem
}

// Analyze extracts the artifact references from a workflow document.
func (c *Core) Analyze(raw []byte, warn workflow.WarnFunc) ([]workflow.ArtifactRef, error) {
	return workflow.Analyze(raw, warn)
}

// Match resolves refs against the indexed local inventory.
func (c *Core) Match(refs []workflow.ArtifactRef) []match.Result {
	return match.Resolve(c.Inventory, refs, c.Config.Matching.FuzzyThreshold)
}

// Search queries every catalog routed for ref, synthesizing one query set
// per adapter and merging/ranking the results. Adapters run concurrently;
// a single adapter's failure does not prevent the others' hits from being
// ranked.
func (c *Core) Search(ctx context.Context, ref workflow.ArtifactRef) rank.RankedCandidate {
	routed := router.Route(c.RouterConfig(), ref.Filename, ref.Kind)
	wanted := make(map[router.CatalogID]bool, len(routed))
	for _, id := range routed {
		wanted[id] = true
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		hits [][]catalog.SearchHit
	)
	for _, a := range c.Adapters {
		if !wanted[router.CatalogID(a.ID())] {
			continue
		}
		a := a
		wg.Add(1)
		go func() {
			defer wg.Done()
			queries := query.Synthesize(c.QueryConfig(), ref.Filename, a.ID())
			outcome := a.Search(ctx, ref.Filename, ref.Kind, queries)
			if outcome.Kind != catalog.OutcomeHits {
				return
			}
			mu.Lock()
			hits = append(hits, outcome.Hits)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return rank.Rank(c.RankConfig(), ref, hits)
}

// BuildPlan analyzes raw, matches every artifact against the local
// inventory, and searches the routed catalogs for anything not fully
// present (spec §6's "plan" operation).
func (c *Core) BuildPlan(ctx context.Context, raw []byte, warn workflow.WarnFunc) (Plan, error) {
	refs, err := c.Analyze(raw, warn)
	if err != nil {
		return Plan{}, err
	}

	results := c.Match(refs)
	items := make([]PlanItem, len(results))
	for i, r := range results {
		items[i] = PlanItem{Match: r}
		if r.Status == match.StatusPresent {
			continue
		}
		cand := c.Search(ctx, r.Ref)
		items[i].Candidates = &cand
	}

	return Plan{Items: items}, nil
}
