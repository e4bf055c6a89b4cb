package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ArtifactType is the closed set of artifact kinds a project can hold.
type ArtifactType string

const (
	StyleProfile   ArtifactType = "style_profile"
	CharacterSheet ArtifactType = "character_sheet"
	DraftDirective ArtifactType = "draft_directive"
	RevisionPlan   ArtifactType = "revision_plan"
	QualityReport  ArtifactType = "quality_report"
	FreeformNote   ArtifactType = "freeform_note"
)

// ArtifactTypes lists every artifact type in sort order.
var ArtifactTypes = []ArtifactType{
	CharacterSheet,
	DraftDirective,
	FreeformNote,
	QualityReport,
	RevisionPlan,
	StyleProfile,
}

// ParseArtifactType returns the ArtifactType named by s.
func ParseArtifactType(s string) (ArtifactType, error) {
	for _, t := range ArtifactTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown artifact type %q", s)
}

// Project is a named container for artifacts.
type Project struct {
	ID        string    `json:"id"`             // UUID
	Name      string    `json:"name,omitempty"` // Unique when set
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Artifact is a named, typed document within a project.
// (ProjectID, Type, Name) is unique.
type Artifact struct {
	ID              string       `json:"artifact_id"` // UUID
	ProjectID       string       `json:"project_id"`  // Foreign key to Project
	Type            ArtifactType `json:"type"`
	Name            string       `json:"name"`
	SchemaVersion   int          `json:"schema_version"`
	CurrentRevision int          `json:"revision"` // Revision number of the current revision
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// ArtifactRevision is one immutable snapshot of an artifact's payload.
type ArtifactRevision struct {
	ID             string          `json:"id"`          // UUID
	ArtifactID     string          `json:"artifact_id"` // Foreign key to Artifact
	RevisionNumber int             `json:"revision"`    // 1..N, no gaps
	SchemaVersion  int             `json:"schema_version"`
	Payload        json.RawMessage `json:"payload"`
	CreatedAt      time.Time       `json:"created_at"`
}

// RevisionSummary is a revision listing entry without its payload.
type RevisionSummary struct {
	RevisionNumber int       `json:"revision"`
	CreatedAt      time.Time `json:"created_at"`
	IsCurrent      bool      `json:"is_current"`
}

// ArtifactWithPayload pairs an artifact with the payload of one of its revisions.
type ArtifactWithPayload struct {
	Artifact
	Payload json.RawMessage `json:"payload"`
}

// Operation records a mutating CLI command.
type Operation struct {
	ID         int64      `json:"id"`
	Operation  string     `json:"operation"`
	Parameters string     `json:"parameters"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
