// Package match pairs ArtifactRefs against the local inventory.
package match

import (
	"github.com/nodegraph/modelresolver/internal/inventory"
	"github.com/nodegraph/modelresolver/internal/keyword"
	"github.com/nodegraph/modelresolver/internal/registry"
	"github.com/nodegraph/modelresolver/internal/workflow"
)

// Status is the outcome of matching one ArtifactRef against the inventory.
type Status string

const (
	StatusPresent Status = "present"
	StatusPartial Status = "partial"
	StatusMissing Status = "missing"
)

// Result pairs an ArtifactRef with the best local candidate found, if any.
type Result struct {
	Ref       workflow.ArtifactRef
	Status    Status
	Score     float64
	Candidate *inventory.LocalModel
}

// Resolve matches every ref against inv, using threshold as the fuzzy-match
// cutoff (spec default 0.7; threshold 1.0 reduces fuzzy lookup to exact-match
// semantics since only a perfect Jaccard score then clears the bar).
func Resolve(inv *inventory.Inventory, refs []workflow.ArtifactRef, threshold float64) []Result {
	results := make([]Result, 0, len(refs))
	for _, ref := range refs {
		results = append(results, resolveOne(inv, ref, threshold))
	}
	return results
}

func resolveOne(inv *inventory.Inventory, ref workflow.ArtifactRef, threshold float64) Result {
	if m, ok := inv.LookupExact(ref.Filename); ok {
		model := m
		return Result{Ref: ref, Status: StatusPresent, Score: 1.0, Candidate: &model}
	}

	kind := ref.Kind
	if kind == "" {
		kind = registry.KindUnknown
	}
	kws := keyword.Extract(ref.Filename)
	if m, score, ok := inv.LookupFuzzy(kws, kind, threshold); ok {
		model := m
		return Result{Ref: ref, Status: StatusPartial, Score: score, Candidate: &model}
	}

	return Result{Ref: ref, Status: StatusMissing, Score: 0}
}
