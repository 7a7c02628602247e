// Package workflow parses a node-graph workflow document and extracts the
// model artifacts it depends on.
package workflow

import "github.com/nodegraph/modelresolver/internal/registry"

// DetectionStrategy identifies which analyzer pass found a given reference.
type DetectionStrategy string

const (
	StrategyKnownLoader  DetectionStrategy = "known_loader"
	StrategyFluxSpecific DetectionStrategy = "flux_specific"
	StrategyPathWalk     DetectionStrategy = "path_walk"
	StrategyWidgetScan   DetectionStrategy = "widget_scan"
	StrategyGGUFHint     DetectionStrategy = "gguf_hint"
	StrategyCustomNode   DetectionStrategy = "custom_node"
)

// ArtifactRef is a single model dependency extracted from a workflow.
type ArtifactRef struct {
	Filename          string
	Kind              registry.Kind
	NodeID            string
	NodeType          string
	DetectionStrategy DetectionStrategy
}

// Node is a single entry in the workflow graph.
type Node struct {
	ID            any            `json:"id"`
	Type          string         `json:"type"`
	WidgetsValues []any          `json:"widgets_values,omitempty"`
	Inputs        map[string]any `json:"inputs,omitempty"`
}

// Document is the top-level decoded shape of a workflow JSON file.
type Document struct {
	Nodes []Node `json:"nodes"`
}

// recognizedExtensions mirrors the extensions the keyword extractor and
// local inventory recognize; a value without one of these is not a model
// artifact reference (spec §8 boundary: "a filename without any recognized
// extension is ignored by both analyzer and inventory").
var recognizedExtensions = []string{
	".safetensors", ".ckpt", ".pt", ".pth", ".bin", ".onnx", ".gguf",
}
