package mcp

import "github.com/mark3labs/mcp-go/mcp"

// analyzeWorkflowTool defines the analyze_workflow MCP tool.
var analyzeWorkflowTool = mcp.NewTool("analyze_workflow",
	mcp.WithDescription("Extract the model artifacts (checkpoints, loras, vaes, ...) a workflow document depends on, matching each against the local models directory."),
	mcp.WithString("workflow_json",
		mcp.Required(),
		mcp.Description("The raw workflow document JSON"),
	),
)

// searchArtifactTool defines the search_artifact MCP tool.
var searchArtifactTool = mcp.NewTool("search_artifact",
	mcp.WithDescription("Search Hugging Face and Civitai for a model artifact by filename, returning ranked download candidates."),
	mcp.WithString("filename",
		mcp.Required(),
		mcp.Description("The artifact filename to search for"),
	),
	mcp.WithString("kind",
		mcp.Description("The artifact kind, used to route the search to the right catalog and subdirectory"),
		mcp.Enum("checkpoint", "lora", "vae", "clip", "unet", "controlnet", "upscale", "embeddings", "clip_vision", "hypernetwork", "text_encoder", "reactor", "unknown"),
	),
)

// queueStatusTool defines the queue_status MCP tool.
var queueStatusTool = mcp.NewTool("queue_status",
	mcp.WithDescription("Get the current state of the download queue: queued, active, and recently finished downloads."),
)
