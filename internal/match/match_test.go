package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nodegraph/modelresolver/internal/inventory"
	"github.com/nodegraph/modelresolver/internal/registry"
	"github.com/nodegraph/modelresolver/internal/workflow"
)

func buildInventory(t *testing.T, files map[string]string) *inventory.Inventory {
	t.Helper()
	root := t.TempDir()
	for rel := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	inv := inventory.New(nil, 0)
	if err := inv.Index(root); err != nil {
		t.Fatalf("Index() error: %v", err)
	}
	return inv
}

func TestResolvePresent(t *testing.T) {
	inv := buildInventory(t, map[string]string{"vae/ae.safetensors": ""})
	refs := []workflow.ArtifactRef{{Filename: "ae.safetensors", Kind: registry.KindVAE}}

	results := Resolve(inv, refs, 0.7)
	if len(results) != 1 || results[0].Status != StatusPresent || results[0].Score != 1.0 {
		t.Fatalf("unexpected result: %+v", results)
	}
}

func TestResolvePartial(t *testing.T) {
	inv := buildInventory(t, map[string]string{
		"checkpoints/epicRealism_naturalSin.safetensors": "",
	})
	refs := []workflow.ArtifactRef{
		{Filename: "epicRealism_naturalSinRC1VAE.safetensors", Kind: registry.KindCheckpoint},
	}

	results := Resolve(inv, refs, 0.7)
	if len(results) != 1 || results[0].Status != StatusPartial {
		t.Fatalf("expected a partial match, got %+v", results)
	}
	if results[0].Candidate == nil || results[0].Candidate.Filename != "epicRealism_naturalSin.safetensors" {
		t.Fatalf("unexpected candidate: %+v", results[0].Candidate)
	}
}

func TestResolveMissing(t *testing.T) {
	inv := buildInventory(t, map[string]string{})
	refs := []workflow.ArtifactRef{{Filename: "flux1-dev-Q4_0.gguf", Kind: registry.KindUNet}}

	results := Resolve(inv, refs, 0.7)
	if len(results) != 1 || results[0].Status != StatusMissing {
		t.Fatalf("expected a missing result, got %+v", results)
	}
}

func TestResolveExactThresholdReducesToExactMatch(t *testing.T) {
	inv := buildInventory(t, map[string]string{
		"checkpoints/epicRealism_naturalSin.safetensors": "",
	})
	refs := []workflow.ArtifactRef{
		{Filename: "epicRealism_naturalSinRC1VAE.safetensors", Kind: registry.KindCheckpoint},
	}

	results := Resolve(inv, refs, 1.0)
	if results[0].Status != StatusMissing {
		t.Fatalf("expected threshold=1.0 to reject a near-but-not-exact match, got %+v", results[0])
	}
}
