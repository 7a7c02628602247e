package keyword

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		want     []string
	}{
		{
			name:     "strips extension and drops the underscore-joined quant tag whole",
			filename: "flux1-dev-Q4_0.gguf",
			want:     []string{"flux", "1", "dev"},
		},
		{
			name:     "preserves sdxl and drops stop-listed base token",
			filename: "sdxl_base.safetensors",
			want:     []string{"sdxl"},
		},
		{
			name:     "letter digit boundary",
			filename: "Cute_3d_Cartoon_Flux.safetensors",
			want:     []string{"cute", "3", "d", "cartoon", "flux"},
		},
		{
			name:     "camel case segmentation",
			filename: "epicRealism_naturalSin.safetensors",
			want:     []string{"epic", "realism", "natural", "sin"},
		},
		{
			name:     "no recognized extension keeps full name",
			filename: "weights.unknownext",
			want:     []string{"weights", "unknownext"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.filename)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Extract(%q) = %v, want %v", tc.filename, got, tc.want)
			}
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	a := Extract("t5-v1_1-xxl-encoder-Q4_K_S.gguf")
	b := Extract("t5-v1_1-xxl-encoder-Q4_K_S.gguf")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Extract is not deterministic: %v vs %v", a, b)
	}
}

func TestSimilarity(t *testing.T) {
	// Mirrors the near-duplicate checkpoint scenario from the spec: one
	// extra keyword beyond an otherwise identical set still clears the
	// default 0.7 fuzzy-match threshold.
	a := []string{"epic", "realism", "natural", "sin", "rc1"}
	b := []string{"epic", "realism", "natural", "sin"}
	score := Similarity(a, b)
	if score < 0.7 {
		t.Errorf("expected similarity >= 0.7 for near-duplicate filenames, got %v (a=%v b=%v)", score, a, b)
	}

	identical := Similarity(a, a)
	if identical != 1.0 {
		t.Errorf("expected identical sets to have similarity 1.0, got %v", identical)
	}

	disjoint := Similarity([]string{"lora", "anime"}, []string{"vae", "encoder"})
	if disjoint != 0.0 {
		t.Errorf("expected disjoint sets to have similarity 0.0, got %v", disjoint)
	}
}
