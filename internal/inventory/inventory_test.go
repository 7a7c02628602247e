package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nodegraph/modelresolver/internal/keyword"
	"github.com/nodegraph/modelresolver/internal/registry"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("fake weights"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIndexAndLookupExact(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "vae", "ae.safetensors"))
	writeFile(t, filepath.Join(root, "checkpoints", "sdxl_base.safetensors"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	inv := New(nil, 0)
	if err := inv.Index(root); err != nil {
		t.Fatalf("Index() error: %v", err)
	}

	if len(inv.Models()) != 2 {
		t.Fatalf("expected 2 recognized models, got %d: %+v", len(inv.Models()), inv.Models())
	}

	m, ok := inv.LookupExact("AE.SAFETENSORS")
	if !ok {
		t.Fatal("expected case-insensitive exact lookup to hit")
	}
	if m.Subdirectory != "vae" {
		t.Errorf("expected subdirectory vae, got %q", m.Subdirectory)
	}
}

func TestLookupExactMiss(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "vae", "ae.safetensors"))

	inv := New(nil, 0)
	if err := inv.Index(root); err != nil {
		t.Fatalf("Index() error: %v", err)
	}

	if _, ok := inv.LookupExact("missing.safetensors"); ok {
		t.Fatal("expected a miss for an absent filename")
	}
}

func TestLookupFuzzy(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "checkpoints", "epicRealism_naturalSin.safetensors"))

	inv := New(nil, 0)
	if err := inv.Index(root); err != nil {
		t.Fatalf("Index() error: %v", err)
	}

	requested := "epicRealism_naturalSinRC1VAE.safetensors"
	kws := keyword.Extract(requested)

	m, score, ok := inv.LookupFuzzy(kws, registry.KindCheckpoint, 0.5)
	if !ok {
		t.Fatalf("expected a fuzzy hit, got score %v", score)
	}
	if m.Filename != "epicRealism_naturalSin.safetensors" {
		t.Errorf("unexpected fuzzy match: %+v", m)
	}
}

func TestLookupFuzzyBelowThreshold(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "checkpoints", "totally_unrelated_model.safetensors"))

	inv := New(nil, 0)
	if err := inv.Index(root); err != nil {
		t.Fatalf("Index() error: %v", err)
	}

	_, _, ok := inv.LookupFuzzy([]string{"flux", "dev"}, registry.KindCheckpoint, 0.7)
	if ok {
		t.Fatal("expected no fuzzy hit for an unrelated keyword set")
	}
}

func TestIndexEmptyRootIsNotAnError(t *testing.T) {
	root := t.TempDir()
	inv := New(nil, 0)
	if err := inv.Index(root); err != nil {
		t.Fatalf("Index() on an empty root should not fail: %v", err)
	}
	if len(inv.Models()) != 0 {
		t.Fatalf("expected zero models, got %d", len(inv.Models()))
	}
}
