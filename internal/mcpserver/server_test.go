package mcpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thedeuce2/ProWriter/internal/mcpserver"
	"github.com/thedeuce2/ProWriter/internal/testutil"
)

// connect starts a server over in-memory transports and returns a client
// session to it.
func connect(t *testing.T, opts mcpserver.Options) *mcp.ClientSession {
	t.Helper()
	svc, _ := testutil.NewTestService(t)
	srv := mcpserver.New(svc, opts)

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	if _, err := srv.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func call(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	return tc.Text, result.IsError
}

// callTool calls a tool that must succeed and decodes its JSON result into out.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	text, isErr := call(t, session, name, args)
	if isErr {
		t.Fatalf("CallTool(%s) returned error: %s", name, text)
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("CallTool(%s): decoding %q: %v", name, text, err)
	}
}

func callToolExpectError(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	text, isErr := call(t, session, name, args)
	if !isErr {
		t.Fatalf("CallTool(%s) expected error, got: %s", name, text)
	}
	return text
}

type artifactResult struct {
	ID       string          `json:"artifact_id"`
	Type     string          `json:"type"`
	Name     string          `json:"name"`
	Revision int             `json:"revision"`
	Payload  json.RawMessage `json:"payload"`
}

func TestTools_Registered(t *testing.T) {
	session := connect(t, mcpserver.Options{})

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	got := make(map[string]bool)
	for _, tool := range result.Tools {
		got[tool.Name] = true
	}
	for _, name := range []string{
		"ensure_project", "list_projects", "upsert_artifact", "get_artifact",
		"list_artifacts", "list_artifact_revisions", "get_artifact_revision",
		"get_artifact_schema", "analyze_text", "scan_text", "apply_edits",
		"synthesize_plan", "record_quality_report",
	} {
		if !got[name] {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestTools_ProjectLifecycle(t *testing.T) {
	session := connect(t, mcpserver.Options{})

	var project struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	callTool(t, session, "ensure_project", map[string]any{"name": "novel"}, &project)
	if project.Name != "novel" || project.ID == "" {
		t.Fatalf("ensure_project = %+v", project)
	}

	var again struct {
		ID string `json:"id"`
	}
	callTool(t, session, "ensure_project", map[string]any{"name": "novel"}, &again)
	if again.ID != project.ID {
		t.Errorf("second ensure_project ID = %q, want %q", again.ID, project.ID)
	}

	var projects []map[string]any
	callTool(t, session, "list_projects", map[string]any{}, &projects)
	if len(projects) != 1 {
		t.Fatalf("len(projects) = %d, want 1", len(projects))
	}

	var artifacts []artifactResult
	callTool(t, session, "list_artifacts", map[string]any{"project": "novel"}, &artifacts)
	if len(artifacts) != 1 || artifacts[0].Type != "style_profile" || artifacts[0].Name != "default" {
		t.Errorf("list_artifacts = %+v, want the default style profile", artifacts)
	}

	text := callToolExpectError(t, session, "ensure_project", map[string]any{"name": "  "})
	if !strings.HasPrefix(text, "VALIDATION") {
		t.Errorf("error = %q, want VALIDATION prefix", text)
	}
}

func TestTools_ArtifactRevisions(t *testing.T) {
	session := connect(t, mcpserver.Options{DefaultProject: "novel"})

	put := func(text string) artifactResult {
		var a artifactResult
		callTool(t, session, "upsert_artifact", map[string]any{
			"type":    "freeform_note",
			"name":    "ideas",
			"payload": map[string]any{"text": text},
		}, &a)
		return a
	}

	first := put("a lighthouse")
	if first.Revision != 1 {
		t.Errorf("first revision = %d, want 1", first.Revision)
	}
	second := put("a lighthouse keeper")
	if second.Revision != 2 || second.ID != first.ID {
		t.Errorf("second = %+v, want revision 2 of %s", second, first.ID)
	}

	var latest artifactResult
	callTool(t, session, "get_artifact", map[string]any{"type": "freeform_note", "name": "ideas"}, &latest)
	if !strings.Contains(string(latest.Payload), "keeper") {
		t.Errorf("latest payload = %s", latest.Payload)
	}

	var old artifactResult
	callTool(t, session, "get_artifact", map[string]any{"type": "freeform_note", "name": "ideas", "revision": 1}, &old)
	if old.Revision != 1 || strings.Contains(string(old.Payload), "keeper") {
		t.Errorf("revision 1 = %+v", old)
	}

	var revs []struct {
		Revision  int  `json:"revision"`
		IsCurrent bool `json:"is_current"`
	}
	callTool(t, session, "list_artifact_revisions", map[string]any{"type": "freeform_note", "name": "ideas"}, &revs)
	if len(revs) != 2 || revs[0].Revision != 1 || !revs[1].IsCurrent {
		t.Errorf("revisions = %+v", revs)
	}

	text := callToolExpectError(t, session, "get_artifact_revision", map[string]any{"type": "freeform_note", "name": "ideas", "revision": 3})
	if !strings.HasPrefix(text, "NOT_FOUND") {
		t.Errorf("error = %q, want NOT_FOUND prefix", text)
	}
}

func TestTools_UpsertArtifact_PayloadJSON(t *testing.T) {
	session := connect(t, mcpserver.Options{DefaultProject: "novel"})

	var a artifactResult
	callTool(t, session, "upsert_artifact", map[string]any{
		"type":         "freeform_note",
		"name":         "ledger",
		"payload_json": `{"text":"a","id":9007199254740993,"ratio":0.1000000000000000055511151231257827}`,
	}, &a)
	if a.Revision != 1 {
		t.Fatalf("revision = %d, want 1", a.Revision)
	}

	text, isErr := call(t, session, "get_artifact", map[string]any{"type": "freeform_note", "name": "ledger"})
	if isErr {
		t.Fatalf("get_artifact returned error: %s", text)
	}
	for _, want := range []string{"9007199254740993", "0.1000000000000000055511151231257827"} {
		if !strings.Contains(text, want) {
			t.Errorf("get_artifact = %s, want %s kept exactly", text, want)
		}
	}

	tests := []struct {
		name string
		args map[string]any
	}{
		{"both forms", map[string]any{"type": "freeform_note", "name": "x", "payload": map[string]any{"text": "a"}, "payload_json": `{"text":"a"}`}},
		{"neither form", map[string]any{"type": "freeform_note", "name": "x"}},
		{"malformed json", map[string]any{"type": "freeform_note", "name": "x", "payload_json": `{"text":`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := callToolExpectError(t, session, "upsert_artifact", tt.args)
			if !strings.HasPrefix(text, "VALIDATION") {
				t.Errorf("error = %q, want VALIDATION prefix", text)
			}
		})
	}
}

func TestTools_UpsertArtifact_Invalid(t *testing.T) {
	session := connect(t, mcpserver.Options{DefaultProject: "novel"})

	tests := []struct {
		name string
		args map[string]any
	}{
		{"unknown type", map[string]any{"type": "poem", "name": "x", "payload": map[string]any{"text": "a"}}},
		{"missing required field", map[string]any{"type": "freeform_note", "name": "x", "payload": map[string]any{"tags": []string{"a"}}}},
		{"empty name", map[string]any{"type": "freeform_note", "name": "", "payload": map[string]any{"text": "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := callToolExpectError(t, session, "upsert_artifact", tt.args)
			if !strings.HasPrefix(text, "VALIDATION") {
				t.Errorf("error = %q, want VALIDATION prefix", text)
			}
		})
	}
}

func TestTools_ReadsDoNotCreateProjects(t *testing.T) {
	session := connect(t, mcpserver.Options{})

	text := callToolExpectError(t, session, "get_artifact", map[string]any{"project": "ghost", "type": "freeform_note", "name": "x"})
	if !strings.HasPrefix(text, "NOT_FOUND") {
		t.Errorf("error = %q, want NOT_FOUND prefix", text)
	}

	var projects []map[string]any
	callTool(t, session, "list_projects", map[string]any{}, &projects)
	if len(projects) != 0 {
		t.Errorf("len(projects) = %d, want 0", len(projects))
	}

	text = callToolExpectError(t, session, "list_artifacts", map[string]any{})
	if !strings.Contains(text, "project is required") {
		t.Errorf("error = %q, want project is required", text)
	}
}

func TestTools_ScanThenApply(t *testing.T) {
	session := connect(t, mcpserver.Options{})
	text := "It was very cold."

	var scan struct {
		SuggestedOps []map[string]any `json:"suggested_ops"`
	}
	callTool(t, session, "scan_text", map[string]any{"text": text}, &scan)
	if len(scan.SuggestedOps) != 1 {
		t.Fatalf("len(suggested_ops) = %d, want 1", len(scan.SuggestedOps))
	}

	var applied struct {
		Text    string           `json:"text"`
		Applied []map[string]any `json:"applied"`
	}
	callTool(t, session, "apply_edits", map[string]any{"text": text, "ops": scan.SuggestedOps}, &applied)
	if applied.Text != "It was cold." {
		t.Errorf("text = %q, want %q", applied.Text, "It was cold.")
	}
	if len(applied.Applied) != 1 {
		t.Errorf("len(applied) = %d, want 1", len(applied.Applied))
	}
}

func TestTools_AnalyzeText(t *testing.T) {
	session := connect(t, mcpserver.Options{})

	var metrics struct {
		WordCount     int `json:"word_count"`
		SentenceCount int `json:"sentence_count"`
	}
	callTool(t, session, "analyze_text", map[string]any{"text": "The dog ran. The cat sat."}, &metrics)
	if metrics.WordCount != 6 || metrics.SentenceCount != 2 {
		t.Errorf("metrics = %+v, want 6 words in 2 sentences", metrics)
	}
}

func TestTools_SynthesizePlan(t *testing.T) {
	session := connect(t, mcpserver.Options{})

	var plan struct {
		Mode   string   `json:"mode"`
		Rubric []string `json:"rubric"`
	}
	callTool(t, session, "synthesize_plan", map[string]any{"mode": "Pacing"}, &plan)
	if plan.Mode != "pacing" || len(plan.Rubric) == 0 {
		t.Errorf("plan = %+v", plan)
	}

	text := callToolExpectError(t, session, "synthesize_plan", map[string]any{"mode": "poetry"})
	if !strings.Contains(text, "unknown mode") {
		t.Errorf("error = %q, want unknown mode", text)
	}
}

func TestTools_RecordQualityReport(t *testing.T) {
	var params []map[string]any
	var outcomes []error
	session := connect(t, mcpserver.Options{
		BeforeWrite: func(_ context.Context, p map[string]any) error {
			params = append(params, p)
			return nil
		},
		AfterWrite: func(err error) { outcomes = append(outcomes, err) },
	})

	var out struct {
		Artifact artifactResult `json:"artifact"`
		Report   struct {
			CleanedText *string `json:"cleaned_text"`
		} `json:"report"`
	}
	callTool(t, session, "record_quality_report", map[string]any{
		"project": "novel",
		"name":    "ch1",
		"text":    "She just left.",
		"apply":   true,
	}, &out)

	if out.Artifact.Type != "quality_report" || out.Artifact.Revision != 1 {
		t.Errorf("artifact = %+v", out.Artifact)
	}
	if out.Report.CleanedText == nil || *out.Report.CleanedText != "She left." {
		t.Errorf("cleaned_text = %v, want %q", out.Report.CleanedText, "She left.")
	}
	if len(params) != 1 || params[0]["tool"] != "record_quality_report" {
		t.Errorf("BeforeWrite params = %v", params)
	}
	if len(outcomes) != 1 || outcomes[0] != nil {
		t.Errorf("AfterWrite outcomes = %v", outcomes)
	}
}

func TestTools_BeforeWriteAborts(t *testing.T) {
	afterCalled := false
	session := connect(t, mcpserver.Options{
		BeforeWrite: func(context.Context, map[string]any) error { return errors.New("store is read-only") },
		AfterWrite:  func(error) { afterCalled = true },
	})

	text := callToolExpectError(t, session, "ensure_project", map[string]any{"name": "novel"})
	if !strings.Contains(text, "store is read-only") {
		t.Errorf("error = %q", text)
	}
	if afterCalled {
		t.Error("AfterWrite called after BeforeWrite failed")
	}

	var projects []map[string]any
	callTool(t, session, "list_projects", map[string]any{}, &projects)
	if len(projects) != 0 {
		t.Errorf("len(projects) = %d, want 0", len(projects))
	}
}

func TestTools_GetArtifactSchema(t *testing.T) {
	session := connect(t, mcpserver.Options{})

	var doc struct {
		Type     string   `json:"type"`
		Required []string `json:"required"`
	}
	callTool(t, session, "get_artifact_schema", map[string]any{"type": "character_sheet"}, &doc)
	if doc.Type != "object" || len(doc.Required) != 1 || doc.Required[0] != "name" {
		t.Errorf("schema = %+v", doc)
	}

	callToolExpectError(t, session, "get_artifact_schema", map[string]any{"type": "poem"})
}
