package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nodegraph/modelresolver/internal/registry"
)

func TestHuggingFaceAdapterExactMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		models := []huggingFaceModel{
			{ID: "author_A/FLUX.1-dev-gguf", Files: []string{"flux1-dev-Q4_0.gguf"}},
		}
		json.NewEncoder(w).Encode(models)
	}))
	defer srv.Close()

	a := NewHuggingFaceAdapter(HuggingFaceConfig{BaseURL: srv.URL}, srv.Client(), nil)
	outcome := a.Search(context.Background(), "flux1-dev-Q4_0.gguf", registry.KindUNet, []string{"flux1-dev-gguf"})

	if outcome.Kind != OutcomeHits || len(outcome.Hits) != 1 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Hits[0].Confidence != ConfidenceExact {
		t.Errorf("expected exact confidence, got %v", outcome.Hits[0].Confidence)
	}
	wantURL := srv.URL + "/author_A/FLUX.1-dev-gguf/resolve/main/flux1-dev-Q4_0.gguf"
	if outcome.Hits[0].DirectURL != wantURL {
		t.Errorf("DirectURL = %q, want %q", outcome.Hits[0].DirectURL, wantURL)
	}
}

func TestHuggingFaceAdapterNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]huggingFaceModel{})
	}))
	defer srv.Close()

	a := NewHuggingFaceAdapter(HuggingFaceConfig{BaseURL: srv.URL}, srv.Client(), nil)
	outcome := a.Search(context.Background(), "nonexistent.safetensors", registry.KindCheckpoint, []string{"nonexistent"})

	if outcome.Kind != OutcomeNotFound {
		t.Fatalf("expected NotFound, got %+v", outcome)
	}
}

func TestHuggingFaceAdapterAuthRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := NewHuggingFaceAdapter(HuggingFaceConfig{BaseURL: srv.URL}, srv.Client(), nil)
	outcome := a.Search(context.Background(), "x.safetensors", registry.KindCheckpoint, []string{"x"})

	if outcome.Kind != OutcomeAuthRequired {
		t.Fatalf("expected AuthRequired, got %+v", outcome)
	}
}

func TestHuggingFaceAdapterTransientOn5xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := NewHuggingFaceAdapter(HuggingFaceConfig{BaseURL: srv.URL}, srv.Client(), nil)
	outcome := a.Search(context.Background(), "x.safetensors", registry.KindCheckpoint, []string{"x"})

	if outcome.Kind != OutcomeTransient {
		t.Fatalf("expected Transient, got %+v", outcome)
	}
}

func TestCivitaiAdapterPicksBestVariantBySimilarityThenSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := civitaiSearchResponse{
			Items: []civitaiModel{
				{
					Name:    "Cute 3D Cartoon",
					Creator: "trusted_author",
					Versions: []civitaiModelVersion{
						{
							ID: 12345,
							Files: []civitaiFile{
								{Name: "Cute_3d_Cartoon_Flux_v2.safetensors", SizeBytes: 900},
								{Name: "Cute_3d_Cartoon_Flux.safetensors", SizeBytes: 500},
							},
						},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	a := NewCivitaiAdapter(CivitaiConfig{BaseURL: srv.URL}, srv.Client(), nil)
	outcome := a.Search(context.Background(), "Cute_3d_Cartoon_Flux.safetensors", registry.KindLora, []string{"Cute 3d Cartoon Flux"})

	if outcome.Kind != OutcomeHits || len(outcome.Hits) != 1 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Hits[0].DisplayName != "Cute_3d_Cartoon_Flux.safetensors" {
		t.Errorf("expected the exact-name variant to win, got %q", outcome.Hits[0].DisplayName)
	}
	if outcome.Hits[0].Confidence != ConfidenceExact {
		t.Errorf("expected exact confidence for exact filename match, got %v", outcome.Hits[0].Confidence)
	}
}

func TestCivitaiAdapterDownloadURLShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := civitaiSearchResponse{
			Items: []civitaiModel{
				{
					Creator: "author",
					Versions: []civitaiModelVersion{
						{ID: 999, Files: []civitaiFile{{Name: "model.safetensors", SizeBytes: 100}}},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	a := NewCivitaiAdapter(CivitaiConfig{BaseURL: srv.URL}, srv.Client(), nil)
	outcome := a.Search(context.Background(), "model.safetensors", registry.KindLora, []string{"model"})

	if outcome.Kind != OutcomeHits {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	want := srv.URL + "/api/download/models/999"
	if outcome.Hits[0].DirectURL != want {
		t.Errorf("DirectURL = %q, want %q", outcome.Hits[0].DirectURL, want)
	}
}

func TestAdapterSearchRespectsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]huggingFaceModel{})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewHuggingFaceAdapter(HuggingFaceConfig{BaseURL: srv.URL}, srv.Client(), nil)
	outcome := a.Search(ctx, "x.safetensors", registry.KindCheckpoint, []string{"x", "y"})

	if outcome.Kind != OutcomeCancelled {
		t.Fatalf("expected Cancelled, got %+v", outcome)
	}
}
