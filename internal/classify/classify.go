// Package classify refines an ArtifactRef's kind from filename heuristics.
//
// The node-level hint produced by the workflow analyzer is frequently wrong
// for community loaders; these rules take precedence because without them
// routing misclassifies LoRA artifacts as checkpoints and never queries the
// catalog that actually hosts them.
package classify

import (
	"strings"

	"github.com/nodegraph/modelresolver/internal/registry"
)

// rule is one row of the classifier's filename -> kind table, evaluated in
// declared order. The table is data, not code: adding a rule does not touch
// the evaluation loop.
type rule struct {
	name    string
	matches func(lower string) bool
	kind    registry.Kind
}

var rules = []rule{
	{
		name:    "vae",
		matches: func(s string) bool { return strings.Contains(s, "vae") },
		kind:    registry.KindVAE,
	},
	{
		name: "lora_or_rank",
		matches: func(s string) bool {
			return strings.Contains(s, "lora") || strings.Contains(s, "rank")
		},
		kind: registry.KindLora,
	},
	{
		name: "gguf_text_encoder",
		matches: func(s string) bool {
			return strings.HasSuffix(s, ".gguf") && containsAny(s, "encoder", "umt5", "t5", "clip")
		},
		kind: registry.KindTextEncoder,
	},
	{
		name:    "gguf_unet",
		matches: func(s string) bool { return strings.HasSuffix(s, ".gguf") },
		kind:    registry.KindUNet,
	},
	{
		name:    "onnx_reactor",
		matches: func(s string) bool { return strings.HasSuffix(s, ".onnx") },
		kind:    registry.KindReactor,
	},
	{
		name: "gfpgan_reactor",
		matches: func(s string) bool {
			return strings.HasSuffix(s, ".pth") && strings.Contains(s, "gfpgan")
		},
		kind: registry.KindReactor,
	},
	{
		name: "style_lora_family",
		matches: func(s string) bool {
			return containsAny(s, "lora", "style", "anime", "cartoon", "cute", "detail", "tweaker") &&
				containsAny(s, "flux", "sdxl", "sd15", "sd21")
		},
		kind: registry.KindLora,
	},
}

// Kind returns the kind that filename forces, and whether any rule matched.
// Rules are evaluated in table order and the first match wins.
func Kind(filename string) (registry.Kind, bool) {
	lower := strings.ToLower(filename)
	for _, r := range rules {
		if r.matches(lower) {
			return r.kind, true
		}
	}
	return "", false
}

// Refine applies the classifier to kind, returning the forced kind when a
// rule matches filename, and kind unchanged otherwise. Applying Refine twice
// to its own output yields the same kind (spec: kind-override monotonicity):
// the rule table is keyed only on filename, never on the current kind, so a
// second pass re-evaluates the same predicates and reaches the same rule.
func Refine(filename string, kind registry.Kind) registry.Kind {
	if forced, ok := Kind(filename); ok {
		return forced
	}
	return kind
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
