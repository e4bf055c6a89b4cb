package pw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/thedeuce2/ProWriter/internal/model"
	"github.com/thedeuce2/ProWriter/internal/prose"
	"github.com/thedeuce2/ProWriter/internal/rubric"
)

// TextReport is the combined analysis of one text. It is also the payload
// shape of quality_report artifacts.
type TextReport struct {
	Source       string            `json:"source,omitempty"`
	Metrics      prose.Metrics     `json:"metrics"`
	Counts       prose.Counts      `json:"counts"`
	Flags        []prose.Flag      `json:"flags"`
	SuggestedOps []prose.EditOp    `json:"suggested_ops"`
	CleanedText  *string           `json:"cleaned_text,omitempty"`
	Applied      []prose.EditOp    `json:"applied,omitempty"`
	Skipped      []prose.SkippedOp `json:"skipped,omitempty"`
}

// AnalyzeText runs the analyzer and the scanner over text. When clean is
// true every suggested op is applied and the cleaned text is included.
func (s *PWService) AnalyzeText(source, text string, clean bool) *TextReport {
	scan := prose.Scan(text)
	report := &TextReport{
		Source:       source,
		Metrics:      prose.Analyze(text),
		Counts:       scan.Counts,
		Flags:        scan.Flags,
		SuggestedOps: scan.SuggestedOps,
	}
	if clean {
		applied := prose.Apply(text, scan.SuggestedOps)
		report.CleanedText = &applied.Text
		report.Applied = applied.Applied
		report.Skipped = applied.Skipped
	}
	return report
}

// RecordQualityReport analyzes text and stores the report as the next
// revision of the named quality_report artifact.
func (s *PWService) RecordQualityReport(ctx context.Context, projectID, name, source, text string, clean bool) (*model.Artifact, *TextReport, error) {
	report := s.AnalyzeText(source, text, clean)
	artifact, err := s.StoreQualityReport(ctx, projectID, name, report)
	if err != nil {
		return nil, nil, err
	}
	return artifact, report, nil
}

// StoreQualityReport writes an existing report as the next revision of the
// named quality_report artifact.
func (s *PWService) StoreQualityReport(ctx context.Context, projectID, name string, report *TextReport) (*model.Artifact, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encoding quality report: %w", err)
	}
	return s.UpsertArtifact(ctx, UpsertArtifactRequest{
		ProjectID: projectID,
		Type:      model.QualityReport,
		Name:      name,
		Payload:   payload,
	})
}

// NamedReport pairs a report with the quality_report artifact it is stored as.
type NamedReport struct {
	Name   string
	Report *TextReport
}

// StoreQualityReports writes a batch of reports. Every name and payload is
// checked before the first write, so an invalid report stores nothing. A
// database failure part-way through leaves the revisions already written in
// place; the error names the report that failed.
func (s *PWService) StoreQualityReports(ctx context.Context, projectID string, batch []NamedReport) ([]*model.Artifact, error) {
	payloads := make([]json.RawMessage, len(batch))
	for i, nr := range batch {
		if strings.TrimSpace(nr.Name) == "" {
			return nil, ValidationError(nil, "quality report %d has no name", i+1)
		}
		payload, err := json.Marshal(nr.Report)
		if err != nil {
			return nil, fmt.Errorf("encoding quality report %q: %w", nr.Name, err)
		}
		if _, err := s.validator.Validate(model.QualityReport, payload); err != nil {
			return nil, fmt.Errorf("quality report %q: %w", nr.Name, err)
		}
		payloads[i] = payload
	}

	artifacts := make([]*model.Artifact, 0, len(batch))
	for i, nr := range batch {
		artifact, err := s.UpsertArtifact(ctx, UpsertArtifactRequest{
			ProjectID: projectID,
			Type:      model.QualityReport,
			Name:      nr.Name,
			Payload:   payloads[i],
		})
		if err != nil {
			return artifacts, fmt.Errorf("storing quality report %q after %d of %d: %w", nr.Name, i, len(batch), err)
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

// RecordRevisionPlan synthesizes the plan for mode and stores it as the next
// revision of the named revision_plan artifact.
func (s *PWService) RecordRevisionPlan(ctx context.Context, projectID, name string, mode rubric.Mode) (*model.Artifact, *rubric.Plan, error) {
	plan, err := rubric.Synthesize(mode)
	if err != nil {
		return nil, nil, ValidationError(err, "invalid revision plan mode")
	}
	payload, err := json.Marshal(plan)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding revision plan: %w", err)
	}

	artifact, err := s.UpsertArtifact(ctx, UpsertArtifactRequest{
		ProjectID: projectID,
		Type:      model.RevisionPlan,
		Name:      name,
		Payload:   payload,
	})
	if err != nil {
		return nil, nil, err
	}
	return artifact, &plan, nil
}

// ScanFiles analyzes one manuscript file, or every manuscript file under a
// directory. When recursive is true, files in subdirectories are included.
// Reports are returned in path order.
func (s *PWService) ScanFiles(path *Path, recursive, clean bool) ([]*TextReport, error) {
	files := []*Path{path}
	if path.IsDir() {
		found, err := s.fsmgr.FindFiles(path, recursive)
		if err != nil {
			return nil, fmt.Errorf("finding files: %w", err)
		}
		files = files[:0]
		for _, f := range found {
			if f.IsManuscript() {
				files = append(files, f)
			}
		}
	}

	reports := make([]*TextReport, 0, len(files))
	for _, f := range files {
		text, err := s.readText(f)
		if err != nil {
			return nil, err
		}
		report := s.AnalyzeText(f.String(), text, clean)
		s.logger.Debug("file scanned", "path", f.String(), "flags", report.Counts.Total())
		reports = append(reports, report)
	}

	s.logger.Info("scan complete", "files", len(reports))
	return reports, nil
}

func (s *PWService) readText(path *Path) (string, error) {
	rc, err := s.fsmgr.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", ValidationError(nil, "%s is not valid UTF-8 text", path)
	}
	return string(data), nil
}
