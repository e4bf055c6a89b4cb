// Package mcpserver exposes the artifact store and the prose analyzer as
// Model Context Protocol tools.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thedeuce2/ProWriter/internal/pw"
)

// Version is reported to MCP clients during initialization.
const Version = "0.1.0"

// Options configures the tool handlers.
type Options struct {
	// DefaultProject is used when a tool call names no project.
	DefaultProject string
	// BeforeWrite runs before every mutating tool call; an error aborts the call.
	BeforeWrite func(ctx context.Context, params map[string]any) error
	// AfterWrite receives the outcome of every mutating tool call.
	AfterWrite func(err error)
}

// New creates a fully configured MCP server with all tools registered.
func New(svc *pw.PWService, opts Options) *mcp.Server {
	at := &ArtifactTools{svc: svc, opts: opts}
	xt := &AnalysisTools{svc: svc, artifacts: at}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "prowriter",
		Version: Version,
	}, nil)

	// Project and artifact tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "ensure_project",
		Description: "Return the project with the given name, creating it (with a default style profile) if needed",
	}, at.EnsureProject)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_projects",
		Description: "List all projects, oldest first",
	}, at.ListProjects)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "upsert_artifact",
		Description: "Validate a payload and store it as the next revision of an artifact, creating the artifact at revision 1 if needed",
	}, at.UpsertArtifact)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_artifact",
		Description: "Get an artifact with the payload of its current revision, or of a given revision",
	}, at.GetArtifact)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_artifacts",
		Description: "List a project's artifacts sorted by type then name, optionally filtered by type",
	}, at.ListArtifacts)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_artifact_revisions",
		Description: "List the revision numbers and creation times of an artifact, oldest first",
	}, at.ListArtifactRevisions)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_artifact_revision",
		Description: "Get one immutable revision of an artifact with its payload",
	}, at.GetArtifactRevision)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_artifact_schema",
		Description: "Get the JSON Schema that payloads of an artifact type must satisfy",
	}, at.GetArtifactSchema)

	// Analysis tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "analyze_text",
		Description: "Compute deterministic text metrics: counts, averages, readability, lexical diversity, dialogue ratio",
	}, xt.AnalyzeText)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "scan_text",
		Description: "Run the heuristic flag battery over text and return flags with byte offsets plus proposed edit operations",
	}, xt.ScanText)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "apply_edits",
		Description: "Apply edit operations (as returned by scan_text) to the text they were computed from",
	}, xt.ApplyEdits)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "synthesize_plan",
		Description: "Return the fixed revision rubric, risks and recommended passes for an editing mode",
	}, xt.SynthesizePlan)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "record_quality_report",
		Description: "Analyze and scan text, optionally apply all suggested edits, and store the result as a quality_report revision",
	}, xt.RecordQualityReport)

	return srv
}
