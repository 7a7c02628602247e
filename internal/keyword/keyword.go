// Package keyword extracts normalized search keywords from model filenames.
package keyword

import (
	"strings"
	"unicode"
)

// recognizedExtensions are the artifact extensions stripped before tokenizing.
var recognizedExtensions = []string{
	".safetensors", ".ckpt", ".pt", ".pth", ".bin", ".onnx", ".gguf",
}

// stopTokens are version/quantization tokens that carry no search signal.
var stopTokens = map[string]bool{
	"q4": true, "q5": true, "q6": true, "q8": true,
	"q4_0": true, "q4_1": true, "q4_k": true, "q4_k_m": true, "q4_k_s": true,
	"q5_0": true, "q5_1": true, "q5_k": true, "q5_k_m": true, "q5_k_s": true,
	"q6_k": true, "q8_0": true,
	"gguf": true, "ggml": true,
	"fp16": true, "fp32": true, "bf16": true, "int8": true, "f16": true, "f32": true,
	"pruned": true, "ema": true, "emaonly": true, "vae": true, "novae": true,
	"inpainting": true, "refiner": true, "base": true, "full": true, "lite": true,
	"v1": true, "v2": true, "v3": true, "v4": true, "v5": true,
	"v1.0": true, "v2.0": true, "v3.0": true,
	"final": true, "latest": true, "alpha": true, "beta": true, "rc": true, "release": true,
	"512": true, "768": true, "1024": true, "2048": true,
	"xl": true, "xxl": true, "small": true, "medium": true, "large": true,
}

// preserveTokens are never dropped even though they may look like noise.
var preserveTokens = map[string]bool{
	"sdxl": true, "sd15": true, "sd21": true, "flux": true, "animatediff": true,
	"controlnet": true, "openpose": true, "canny": true, "depth": true,
	"normal": true, "semantic": true,
}

// Extract returns the ordered, duplicate-free, lowercase keyword set for filename.
//
// Splitting happens in two passes so that underscore-joined quantization
// tags (q4_0, q5_k_m, ...) survive as a single stop-list entry: the name is
// first split on '-', '.' and space only, and a chunk that matches the
// stop-list whole is dropped outright; surviving chunks are then split on
// '_' and segmented at case/digit transitions for the finer per-word
// keywords the matcher compares with Jaccard similarity.
func Extract(filename string) []string {
	base := stripExtension(filename)

	seen := make(map[string]bool)
	var out []string

	addKeyword := func(seg string) {
		seg = strings.ToLower(seg)
		if seg == "" || seen[seg] {
			return
		}
		if !preserveTokens[seg] && stopTokens[seg] {
			return
		}
		seen[seg] = true
		out = append(out, seg)
	}

	for _, chunk := range splitOnSeparators(base) {
		lowerChunk := strings.ToLower(chunk)
		if !preserveTokens[lowerChunk] && stopTokens[lowerChunk] {
			continue
		}
		for _, sub := range strings.Split(chunk, "_") {
			for _, seg := range segmentCase(sub) {
				addKeyword(seg)
			}
		}
	}
	return out
}

// Similarity computes the Jaccard index between two keyword sets.
func Similarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	setA := toSet(a)
	setB := toSet(b)

	inter := 0
	for k := range setA {
		if setB[k] {
			inter++
		}
	}
	union := len(setA)
	for k := range setB {
		if !setA[k] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func toSet(keys []string) map[string]bool {
	s := make(map[string]bool, len(keys))
	for _, k := range keys {
		s[k] = true
	}
	return s
}

func stripExtension(filename string) string {
	lower := strings.ToLower(filename)
	for _, ext := range recognizedExtensions {
		if strings.HasSuffix(lower, ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}

func splitOnSeparators(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '.' || r == ' '
	})
}

// segmentCase splits a token at lowercase->uppercase and letter<->digit
// transitions, the way camelCase identifiers are segmented.
func segmentCase(token string) []string {
	if token == "" {
		return nil
	}
	runes := []rune(token)
	var segments []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := false
		if unicode.IsLower(prev) && unicode.IsUpper(cur) {
			boundary = true
		} else if isLetter(prev) != isLetter(cur) && (unicode.IsDigit(prev) || unicode.IsDigit(cur)) {
			boundary = true
		}
		if boundary {
			segments = append(segments, string(runes[start:i]))
			start = i
		}
	}
	segments = append(segments, string(runes[start:]))
	return segments
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}
