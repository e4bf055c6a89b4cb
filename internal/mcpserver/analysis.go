package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thedeuce2/ProWriter/internal/model"
	"github.com/thedeuce2/ProWriter/internal/prose"
	"github.com/thedeuce2/ProWriter/internal/pw"
	"github.com/thedeuce2/ProWriter/internal/rubric"
)

// AnalysisTools holds the handlers for the analysis tools.
type AnalysisTools struct {
	svc       *pw.PWService
	artifacts *ArtifactTools
}

// --- Input types ---

type TextInput struct {
	Text string `json:"text" jsonschema:"Prose to analyze"`
}

type SpanInput struct {
	Start   int    `json:"start" jsonschema:"Start byte offset, inclusive"`
	End     int    `json:"end" jsonschema:"End byte offset, exclusive"`
	Snippet string `json:"snippet,omitempty" jsonschema:"Text of the span; informational"`
}

type EditOpInput struct {
	Op          string    `json:"op" jsonschema:"delete or replace"`
	Span        SpanInput `json:"span" jsonschema:"Byte range in the original text"`
	Replacement string    `json:"replacement,omitempty" jsonschema:"Replacement text for replace ops"`
	Kind        string    `json:"kind,omitempty" jsonschema:"Flag kind that proposed the op"`
	Note        string    `json:"note,omitempty" jsonschema:"Why the op was proposed"`
}

type ApplyEditsInput struct {
	Text string        `json:"text" jsonschema:"The original text the ops were computed against"`
	Ops  []EditOpInput `json:"ops" jsonschema:"Edit operations to apply"`
}

type SynthesizePlanInput struct {
	Mode string `json:"mode" jsonschema:"Editing mode: humanize, marketability, tighten, voice_match, clarity, dialogue_punchup or pacing"`
}

type RecordQualityReportInput struct {
	Project string `json:"project,omitempty" jsonschema:"Project ID or name; created on first use"`
	Name    string `json:"name" jsonschema:"quality_report artifact name"`
	Source  string `json:"source,omitempty" jsonschema:"Where the text came from"`
	Text    string `json:"text" jsonschema:"Prose to analyze"`
	Apply   bool   `json:"apply,omitempty" jsonschema:"Apply all suggested edits and include the cleaned text"`
}

// RecordedReport is the result of record_quality_report.
type RecordedReport struct {
	Artifact *model.Artifact `json:"artifact"`
	Report   *pw.TextReport  `json:"report"`
}

// --- Handlers ---

func (t *AnalysisTools) AnalyzeText(_ context.Context, _ *mcp.CallToolRequest, input TextInput) (*mcp.CallToolResult, any, error) {
	return toolJSON(prose.Analyze(input.Text))
}

func (t *AnalysisTools) ScanText(_ context.Context, _ *mcp.CallToolRequest, input TextInput) (*mcp.CallToolResult, any, error) {
	return toolJSON(prose.Scan(input.Text))
}

func (t *AnalysisTools) ApplyEdits(_ context.Context, _ *mcp.CallToolRequest, input ApplyEditsInput) (*mcp.CallToolResult, any, error) {
	ops := make([]prose.EditOp, len(input.Ops))
	for i, op := range input.Ops {
		ops[i] = prose.EditOp{
			Op:          prose.OpKind(op.Op),
			Span:        prose.Span{Start: op.Span.Start, End: op.Span.End, Snippet: op.Span.Snippet},
			Replacement: op.Replacement,
			Kind:        prose.FlagKind(op.Kind),
			Note:        op.Note,
		}
	}
	return toolJSON(prose.Apply(input.Text, ops))
}

func (t *AnalysisTools) SynthesizePlan(_ context.Context, _ *mcp.CallToolRequest, input SynthesizePlanInput) (*mcp.CallToolResult, any, error) {
	mode, err := rubric.ParseMode(input.Mode)
	if err != nil {
		return toolError("VALIDATION: %v", err), nil, nil
	}
	plan, err := rubric.Synthesize(mode)
	if err != nil {
		return toolError("VALIDATION: %v", err), nil, nil
	}
	return toolJSON(plan)
}

func (t *AnalysisTools) RecordQualityReport(ctx context.Context, _ *mcp.CallToolRequest, input RecordQualityReportInput) (*mcp.CallToolResult, any, error) {
	var out RecordedReport
	params := map[string]any{"tool": "record_quality_report", "project": input.Project, "name": input.Name, "source": input.Source}
	err := t.artifacts.write(ctx, params, func() error {
		p, err := t.artifacts.project(ctx, input.Project, true)
		if err != nil {
			return err
		}
		out.Artifact, out.Report, err = t.svc.RecordQualityReport(ctx, p.ID, input.Name, input.Source, input.Text, input.Apply)
		return err
	})
	if err != nil {
		return toolFailure("Failed to record quality report", err), nil, nil
	}
	return toolJSON(out)
}
