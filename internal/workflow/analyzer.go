package workflow

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nodegraph/modelresolver/internal/classify"
	"github.com/nodegraph/modelresolver/internal/registry"
)

// WarnFunc receives a human-readable warning about a node that was skipped
// during analysis (spec §4.2: "a malformed node is skipped and logged").
type WarnFunc func(nodeID, message string)

// rawNode is the loosely-typed shape used while walking the document, since
// workflow nodes are effectively a tagged variant with an arbitrary widget
// bag rather than a single fixed schema (spec §9 design note).
type rawNode struct {
	id     string
	typ    string
	values []any
	inputs map[string]any
}

// Analyze parses a workflow document and returns its deduplicated list of
// artifact references. An empty workflow yields an empty, non-error result.
// A malformed top-level document fails with ErrInvalidWorkflow; a malformed
// individual node is skipped (and reported through warn, if non-nil). After
// dedup, each reference's kind is refined once by classify.Refine.
func Analyze(raw []byte, warn WarnFunc) ([]ArtifactRef, error) {
	if warn == nil {
		warn = func(string, string) {}
	}
	nodes, err := decodeNodes(raw, warn)
	if err != nil {
		return nil, err
	}

	var collected []ArtifactRef
	for _, n := range nodes {
		collected = append(collected, analyzeNode(n)...)
	}

	refs := dedup(collected)
	for i := range refs {
		refs[i].Kind = classify.Refine(refs[i].Filename, refs[i].Kind)
	}
	return refs, nil
}

// decodeNodes accepts either {"nodes": [...]} or a bare top-level array of
// nodes, and loosely parses each element so that a malformed individual
// node can be skipped instead of failing the whole document.
func decodeNodes(raw []byte, warn WarnFunc) ([]rawNode, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkflow, err)
	}

	var list []any
	switch v := generic.(type) {
	case map[string]any:
		nodesVal, ok := v["nodes"]
		if !ok {
			return nil, fmt.Errorf("%w: missing top-level \"nodes\"", ErrInvalidWorkflow)
		}
		arr, ok := nodesVal.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: \"nodes\" is not an array", ErrInvalidWorkflow)
		}
		list = arr
	case []any:
		list = v
	default:
		return nil, fmt.Errorf("%w: unrecognized document shape", ErrInvalidWorkflow)
	}

	nodes := make([]rawNode, 0, len(list))
	for i, elem := range list {
		m, ok := elem.(map[string]any)
		if !ok {
			warn(fmt.Sprint(i), "node is not a JSON object")
			continue
		}
		id := ""
		if idv, ok := m["id"]; ok {
			id = fmt.Sprint(idv)
		}
		typ, ok := m["type"].(string)
		if !ok || typ == "" {
			warn(id, "node is missing a string \"type\"")
			continue
		}
		var values []any
		if wv, ok := m["widgets_values"].([]any); ok {
			values = wv
		}
		var inputs map[string]any
		if in, ok := m["inputs"].(map[string]any); ok {
			inputs = in
		}
		nodes = append(nodes, rawNode{id: id, typ: typ, values: values, inputs: inputs})
	}
	return nodes, nil
}

// analyzeNode runs all six detection strategies against a single node and
// returns the union of what they find (spec §4.2: "all strategies' results
// are unioned across nodes").
func analyzeNode(n rawNode) []ArtifactRef {
	var refs []ArtifactRef

	refs = append(refs, knownLoaderStrategy(n)...)
	refs = append(refs, fluxSpecificStrategy(n)...)
	refs = append(refs, pathWalkStrategy(n)...)
	refs = append(refs, widgetScanStrategy(n)...)
	refs = append(refs, ggufHintStrategy(n)...)
	refs = append(refs, customNodeStrategy(n)...)

	return refs
}

func knownLoaderStrategy(n rawNode) []ArtifactRef {
	entry, ok := registry.Lookup(n.typ)
	if !ok {
		return nil
	}
	var refs []ArtifactRef
	for _, v := range n.values {
		s, ok := v.(string)
		if !ok || !hasRecognizedExtension(s) {
			continue
		}
		refs = append(refs, ArtifactRef{
			Filename: s, Kind: entry.Kind, NodeID: n.id, NodeType: n.typ,
			DetectionStrategy: StrategyKnownLoader,
		})
	}
	return refs
}

func fluxSpecificStrategy(n rawNode) []ArtifactRef {
	if !registry.FluxSpecificTypes[n.typ] {
		return nil
	}
	entry, ok := registry.Lookup(n.typ)
	kind := registry.KindUNet
	if ok {
		kind = entry.Kind
	}
	var refs []ArtifactRef
	for _, v := range n.values {
		s, ok := v.(string)
		if !ok || !hasRecognizedExtension(s) {
			continue
		}
		refs = append(refs, ArtifactRef{
			Filename: s, Kind: kind, NodeID: n.id, NodeType: n.typ,
			DetectionStrategy: StrategyFluxSpecific,
		})
	}
	return refs
}

func pathWalkStrategy(n rawNode) []ArtifactRef {
	var refs []ArtifactRef
	walkAny(n.inputs, func(s string) {
		if strings.ContainsAny(s, "/\\") && hasRecognizedExtension(s) {
			refs = append(refs, ArtifactRef{
				Filename: filepath.Base(s), Kind: registry.KindUnknown, NodeID: n.id, NodeType: n.typ,
				DetectionStrategy: StrategyPathWalk,
			})
		}
	})
	return refs
}

func widgetScanStrategy(n rawNode) []ArtifactRef {
	var refs []ArtifactRef
	for _, v := range n.values {
		s, ok := v.(string)
		if !ok || !hasRecognizedExtension(s) {
			continue
		}
		refs = append(refs, ArtifactRef{
			Filename: s, Kind: registry.KindUnknown, NodeID: n.id, NodeType: n.typ,
			DetectionStrategy: StrategyWidgetScan,
		})
	}
	return refs
}

func ggufHintStrategy(n rawNode) []ArtifactRef {
	var refs []ArtifactRef
	consider := func(s string) {
		if !strings.HasSuffix(strings.ToLower(s), ".gguf") {
			return
		}
		kind := registry.KindUNet
		lower := strings.ToLower(s)
		for _, marker := range []string{"encoder", "t5", "umt5", "clip"} {
			if strings.Contains(lower, marker) {
				kind = registry.KindTextEncoder
				break
			}
		}
		refs = append(refs, ArtifactRef{
			Filename: s, Kind: kind, NodeID: n.id, NodeType: n.typ,
			DetectionStrategy: StrategyGGUFHint,
		})
	}
	for _, v := range n.values {
		if s, ok := v.(string); ok {
			consider(s)
		}
	}
	walkAny(n.inputs, consider)
	return refs
}

func customNodeStrategy(n rawNode) []ArtifactRef {
	if !registry.CustomNodeLoaders[n.typ] {
		return nil
	}
	var refs []ArtifactRef
	consider := func(s string) {
		if !hasRecognizedExtension(s) {
			return
		}
		refs = append(refs, ArtifactRef{
			Filename: s, Kind: registry.KindLora, NodeID: n.id, NodeType: n.typ,
			DetectionStrategy: StrategyCustomNode,
		})
	}
	for _, v := range n.values {
		if s, ok := v.(string); ok {
			consider(s)
		}
	}
	walkAny(n.inputs, consider)
	return refs
}

// walkAny recursively visits every string value reachable from v (maps,
// slices, or a bare string) and calls fn on each.
func walkAny(v any, fn func(string)) {
	switch t := v.(type) {
	case string:
		fn(t)
	case map[string]any:
		for _, val := range t {
			walkAny(val, fn)
		}
	case []any:
		for _, val := range t {
			walkAny(val, fn)
		}
	}
}

func hasRecognizedExtension(s string) bool {
	lower := strings.ToLower(s)
	for _, ext := range recognizedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// dedup groups references by case-insensitive filename and keeps the most
// specific kind per the registry's total order (spec §4.2/§4.3).
func dedup(refs []ArtifactRef) []ArtifactRef {
	order := make([]string, 0, len(refs))
	byKey := make(map[string]ArtifactRef, len(refs))

	for _, r := range refs {
		key := strings.ToLower(r.Filename)
		existing, ok := byKey[key]
		if !ok {
			order = append(order, key)
			byKey[key] = r
			continue
		}
		merged := existing
		merged.Kind = registry.MoreSpecific(existing.Kind, r.Kind)
		byKey[key] = merged
	}

	out := make([]ArtifactRef, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out
}
