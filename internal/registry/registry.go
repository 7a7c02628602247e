// Package registry holds the static mapping from workflow loader node types
// to the artifact kind, target subdirectory, and accepted extensions they
// imply. The table is data, not code, so adding a loader is a one-line table
// entry.
package registry

// Kind identifies the semantic class of a model artifact.
type Kind string

const (
	KindCheckpoint   Kind = "checkpoint"
	KindLora         Kind = "lora"
	KindVAE          Kind = "vae"
	KindClip         Kind = "clip"
	KindUNet         Kind = "unet"
	KindControlNet   Kind = "controlnet"
	KindUpscale      Kind = "upscale"
	KindEmbeddings   Kind = "embeddings"
	KindClipVision   Kind = "clip_vision"
	KindHypernetwork Kind = "hypernetwork"
	KindTextEncoder  Kind = "text_encoder"
	KindReactor      Kind = "reactor"
	KindUnknown      Kind = "unknown"
)

// kindOrder is the total order used to pick the most-specific kind when a
// filename is referenced by more than one node (spec §4.2 dedup rule).
// Earlier entries are more specific and win.
var kindOrder = map[Kind]int{
	KindVAE:          0,
	KindLora:         1,
	KindClip:         2,
	KindUNet:         3,
	KindReactor:      4,
	KindControlNet:   5,
	KindUpscale:      6,
	KindCheckpoint:   7,
	KindEmbeddings:   8,
	KindClipVision:   9,
	KindHypernetwork: 10,
	KindTextEncoder:  11,
	KindUnknown:      12,
}

// MoreSpecific returns the more specific of two kinds per the total order
// in spec §4.2: vae < lora < clip < unet < reactor < controlnet < upscale <
// checkpoint < embeddings < clip_vision < hypernetwork < text_encoder < unknown.
func MoreSpecific(a, b Kind) Kind {
	oa, ok := kindOrder[a]
	if !ok {
		oa = kindOrder[KindUnknown]
	}
	ob, ok := kindOrder[b]
	if !ok {
		ob = kindOrder[KindUnknown]
	}
	if oa <= ob {
		return a
	}
	return b
}

// NodeTypeEntry describes how a known loader node type maps onto an artifact.
type NodeTypeEntry struct {
	Kind       Kind
	Subdir     string
	Extensions []string
}

var commonExtensions = []string{".safetensors", ".ckpt", ".pt", ".pth", ".bin", ".onnx", ".gguf"}

// Table is the static loader-node-type -> artifact-kind registry.
var Table = map[string]NodeTypeEntry{
	"CheckpointLoaderSimple":  {Kind: KindCheckpoint, Subdir: "checkpoints", Extensions: commonExtensions},
	"CheckpointLoader":        {Kind: KindCheckpoint, Subdir: "checkpoints", Extensions: commonExtensions},
	"unCLIPCheckpointLoader":  {Kind: KindCheckpoint, Subdir: "checkpoints", Extensions: commonExtensions},
	"LoraLoader":              {Kind: KindLora, Subdir: "loras", Extensions: commonExtensions},
	"LoraLoaderModelOnly":     {Kind: KindLora, Subdir: "loras", Extensions: commonExtensions},
	"LoraLoaderModelAndClip":  {Kind: KindLora, Subdir: "loras", Extensions: commonExtensions},
	"VAELoader":               {Kind: KindVAE, Subdir: "vae", Extensions: commonExtensions},
	"CLIPLoader":              {Kind: KindClip, Subdir: "clip", Extensions: commonExtensions},
	"DualCLIPLoader":          {Kind: KindClip, Subdir: "clip", Extensions: commonExtensions},
	"TripleCLIPLoader":        {Kind: KindClip, Subdir: "clip", Extensions: commonExtensions},
	"UNETLoader":              {Kind: KindUNet, Subdir: "unet", Extensions: commonExtensions},
	"UnetLoaderGGUF":          {Kind: KindUNet, Subdir: "unet", Extensions: commonExtensions},
	"ControlNetLoader":        {Kind: KindControlNet, Subdir: "controlnet", Extensions: commonExtensions},
	"DiffControlNetLoader":    {Kind: KindControlNet, Subdir: "controlnet", Extensions: commonExtensions},
	"UpscaleModelLoader":      {Kind: KindUpscale, Subdir: "upscale_models", Extensions: commonExtensions},
	"ImageUpscaleWithModel":   {Kind: KindUpscale, Subdir: "upscale_models", Extensions: commonExtensions},
	"EmbeddingLoader":         {Kind: KindEmbeddings, Subdir: "embeddings", Extensions: commonExtensions},
	"CLIPVisionLoader":        {Kind: KindClipVision, Subdir: "clip_vision", Extensions: commonExtensions},
	"HypernetworkLoader":      {Kind: KindHypernetwork, Subdir: "hypernetworks", Extensions: commonExtensions},
	"CLIPTextEncodeGGUF":      {Kind: KindTextEncoder, Subdir: "text_encoders", Extensions: commonExtensions},
	"DualCLIPLoaderGGUF":      {Kind: KindTextEncoder, Subdir: "text_encoders", Extensions: commonExtensions},
	"ReActorFaceSwap":         {Kind: KindReactor, Subdir: "reactor", Extensions: commonExtensions},
	"ReActorRestoreFace":      {Kind: KindReactor, Subdir: "reactor", Extensions: commonExtensions},
}

// DefaultSubdirs is the default kind -> subdirectory mapping (spec §6),
// used by configuration as the starting point for subdirs.<kind> overrides.
var DefaultSubdirs = map[Kind]string{
	KindCheckpoint:   "checkpoints",
	KindLora:         "loras",
	KindVAE:          "vae",
	KindClip:         "clip",
	KindUNet:         "unet",
	KindControlNet:   "controlnet",
	KindUpscale:      "upscale_models",
	KindEmbeddings:   "embeddings",
	KindClipVision:   "clip_vision",
	KindTextEncoder:  "text_encoders",
	KindReactor:      "reactor",
	KindHypernetwork: "hypernetworks",
}

// Lookup returns the registry entry for a node type, if known.
func Lookup(nodeType string) (NodeTypeEntry, bool) {
	e, ok := Table[nodeType]
	return e, ok
}

// CustomNodeLoaders is the small allow-list of community loader node types
// (spec §4.2 strategy 6) whose widgets carry lora filenames even though
// they aren't registered loaders with a fixed widget layout.
var CustomNodeLoaders = map[string]bool{
	"Power Lora Loader (rgthree)": true,
	"LoraManagerLoader":           true,
	"CR LoRA Stack":               true,
}

// FluxSpecificTypes are UNet/dual-CLIP/GGUF loader node types whose widget
// ordering differs from the generic registry entries (spec §4.2 strategy 2).
var FluxSpecificTypes = map[string]bool{
	"UNETLoader":         true,
	"UnetLoaderGGUF":     true,
	"DualCLIPLoader":     true,
	"DualCLIPLoaderGGUF": true,
}
