package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thedeuce2/ProWriter/internal/model"
	"github.com/thedeuce2/ProWriter/internal/pw"
	"github.com/thedeuce2/ProWriter/internal/schema"
)

// ArtifactTools holds the handlers for project and artifact tools.
type ArtifactTools struct {
	svc  *pw.PWService
	opts Options
}

// --- Input types ---

type EnsureProjectInput struct {
	Name string `json:"name" jsonschema:"Project name; created on first use"`
}

type UpsertArtifactInput struct {
	Project       string `json:"project,omitempty" jsonschema:"Project ID or name; created on first use. Defaults to the server's default project"`
	Type          string `json:"type" jsonschema:"Artifact type: style_profile, character_sheet, draft_directive, revision_plan, quality_report or freeform_note"`
	Name          string `json:"name" jsonschema:"Artifact name, unique per project and type"`
	SchemaVersion int    `json:"schema_version,omitempty" jsonschema:"Payload schema version, default 1"`
	Payload       any    `json:"payload,omitempty" jsonschema:"Artifact payload; must match the schema of the type"`
	PayloadJSON   string `json:"payload_json,omitempty" jsonschema:"Artifact payload as a JSON document string, stored with numbers exactly as written. Use instead of payload"`
}

type ArtifactRef struct {
	Project string `json:"project,omitempty" jsonschema:"Project ID or name. Defaults to the server's default project"`
	Type    string `json:"type" jsonschema:"Artifact type"`
	Name    string `json:"name" jsonschema:"Artifact name"`
}

type GetArtifactInput struct {
	Project  string `json:"project,omitempty" jsonschema:"Project ID or name. Defaults to the server's default project"`
	Type     string `json:"type" jsonschema:"Artifact type"`
	Name     string `json:"name" jsonschema:"Artifact name"`
	Revision int    `json:"revision,omitempty" jsonschema:"Revision number; omit for the current revision"`
}

type GetArtifactRevisionInput struct {
	Project  string `json:"project,omitempty" jsonschema:"Project ID or name. Defaults to the server's default project"`
	Type     string `json:"type" jsonschema:"Artifact type"`
	Name     string `json:"name" jsonschema:"Artifact name"`
	Revision int    `json:"revision" jsonschema:"Revision number, starting at 1"`
}

type ListArtifactsInput struct {
	Project string `json:"project,omitempty" jsonschema:"Project ID or name. Defaults to the server's default project"`
	Type    string `json:"type,omitempty" jsonschema:"Only list artifacts of this type"`
}

type GetArtifactSchemaInput struct {
	Type string `json:"type" jsonschema:"Artifact type"`
}

// --- Handlers ---

func (t *ArtifactTools) project(ctx context.Context, ref string, create bool) (*model.Project, error) {
	if ref == "" {
		ref = t.opts.DefaultProject
	}
	if ref == "" {
		return nil, pw.ValidationError(nil, "project is required")
	}
	return t.svc.ResolveProject(ctx, ref, create)
}

// write wraps a mutating call with the BeforeWrite and AfterWrite hooks.
func (t *ArtifactTools) write(ctx context.Context, params map[string]any, fn func() error) error {
	if t.opts.BeforeWrite != nil {
		if err := t.opts.BeforeWrite(ctx, params); err != nil {
			return err
		}
	}
	err := fn()
	if t.opts.AfterWrite != nil {
		t.opts.AfterWrite(err)
	}
	return err
}

func (t *ArtifactTools) EnsureProject(ctx context.Context, _ *mcp.CallToolRequest, input EnsureProjectInput) (*mcp.CallToolResult, any, error) {
	var project *model.Project
	err := t.write(ctx, map[string]any{"tool": "ensure_project", "name": input.Name}, func() error {
		var err error
		project, err = t.svc.EnsureProject(ctx, input.Name)
		return err
	})
	if err != nil {
		return toolFailure("Failed to ensure project", err), nil, nil
	}
	return toolJSON(project)
}

func (t *ArtifactTools) ListProjects(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	projects, err := t.svc.ListProjects(ctx)
	if err != nil {
		return toolFailure("Failed to list projects", err), nil, nil
	}
	if projects == nil {
		projects = []*model.Project{}
	}
	return toolJSON(projects)
}

func (t *ArtifactTools) UpsertArtifact(ctx context.Context, _ *mcp.CallToolRequest, input UpsertArtifactInput) (*mcp.CallToolResult, any, error) {
	var payload json.RawMessage
	switch {
	case input.PayloadJSON != "" && input.Payload != nil:
		return toolError("VALIDATION: set payload or payload_json, not both"), nil, nil
	case input.PayloadJSON != "":
		payload = json.RawMessage(input.PayloadJSON)
	case input.Payload != nil:
		data, err := json.Marshal(input.Payload)
		if err != nil {
			return toolError("VALIDATION: payload is not JSON: %v", err), nil, nil
		}
		payload = data
	default:
		return toolError("VALIDATION: payload is required"), nil, nil
	}

	var artifact *model.Artifact
	params := map[string]any{"tool": "upsert_artifact", "project": input.Project, "type": input.Type, "name": input.Name}
	err := t.write(ctx, params, func() error {
		p, err := t.project(ctx, input.Project, true)
		if err != nil {
			return err
		}
		artifact, err = t.svc.UpsertArtifact(ctx, pw.UpsertArtifactRequest{
			ProjectID:     p.ID,
			Type:          model.ArtifactType(input.Type),
			Name:          input.Name,
			SchemaVersion: input.SchemaVersion,
			Payload:       payload,
		})
		return err
	})
	if err != nil {
		return toolFailure("Failed to upsert artifact", err), nil, nil
	}
	return toolJSON(artifact)
}

func (t *ArtifactTools) GetArtifact(ctx context.Context, req *mcp.CallToolRequest, input GetArtifactInput) (*mcp.CallToolResult, any, error) {
	if input.Revision > 0 {
		return t.GetArtifactRevision(ctx, req, GetArtifactRevisionInput(input))
	}
	p, err := t.project(ctx, input.Project, false)
	if err != nil {
		return toolFailure("Failed to get artifact", err), nil, nil
	}
	artifact, err := t.svc.GetArtifactLatest(ctx, p.ID, model.ArtifactType(input.Type), input.Name)
	if err != nil {
		return toolFailure("Failed to get artifact", err), nil, nil
	}
	return toolJSON(artifact)
}

func (t *ArtifactTools) GetArtifactRevision(ctx context.Context, _ *mcp.CallToolRequest, input GetArtifactRevisionInput) (*mcp.CallToolResult, any, error) {
	p, err := t.project(ctx, input.Project, false)
	if err != nil {
		return toolFailure("Failed to get revision", err), nil, nil
	}
	rev, err := t.svc.GetArtifactRevision(ctx, p.ID, model.ArtifactType(input.Type), input.Name, input.Revision)
	if err != nil {
		return toolFailure("Failed to get revision", err), nil, nil
	}
	return toolJSON(rev)
}

func (t *ArtifactTools) ListArtifacts(ctx context.Context, _ *mcp.CallToolRequest, input ListArtifactsInput) (*mcp.CallToolResult, any, error) {
	p, err := t.project(ctx, input.Project, false)
	if err != nil {
		return toolFailure("Failed to list artifacts", err), nil, nil
	}
	artifacts, err := t.svc.ListArtifacts(ctx, p.ID, model.ArtifactType(input.Type))
	if err != nil {
		return toolFailure("Failed to list artifacts", err), nil, nil
	}
	if artifacts == nil {
		artifacts = []*model.Artifact{}
	}
	return toolJSON(artifacts)
}

func (t *ArtifactTools) ListArtifactRevisions(ctx context.Context, _ *mcp.CallToolRequest, input ArtifactRef) (*mcp.CallToolResult, any, error) {
	p, err := t.project(ctx, input.Project, false)
	if err != nil {
		return toolFailure("Failed to list revisions", err), nil, nil
	}
	revs, err := t.svc.ListArtifactRevisions(ctx, p.ID, model.ArtifactType(input.Type), input.Name)
	if err != nil {
		return toolFailure("Failed to list revisions", err), nil, nil
	}
	return toolJSON(revs)
}

func (t *ArtifactTools) GetArtifactSchema(_ context.Context, _ *mcp.CallToolRequest, input GetArtifactSchemaInput) (*mcp.CallToolResult, any, error) {
	doc, err := schema.Document(model.ArtifactType(input.Type))
	if err != nil {
		return toolError("VALIDATION: %v", err), nil, nil
	}
	return toolText(string(doc)), nil, nil
}
