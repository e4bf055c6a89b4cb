package pw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/thedeuce2/ProWriter/internal/model"
)

// PWService is the orchestration layer between the request-handling surfaces
// (CLI, MCP server) and the artifact store, validator and analysis packages.
type PWService struct {
	database  Database
	validator Validator
	vault     Vault
	encryptor Encryptor
	fsmgr     FilesystemManager
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewPWService creates a new PWService with the provided dependencies.
// vault, encryptor and fsmgr may be nil when the caller never archives
// snapshots or scans files.
func NewPWService(database Database, validator Validator, vault Vault, encryptor Encryptor, fsmgr FilesystemManager, logger Logger, clock Clock, idgen IDGenerator) *PWService {
	return &PWService{
		database:  database,
		validator: validator,
		vault:     vault,
		encryptor: encryptor,
		fsmgr:     fsmgr,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// Project operations

// CreateProject creates a project and seeds its default style profile.
// name may be empty; a non-empty name must be unused.
func (s *PWService) CreateProject(ctx context.Context, name string) (*model.Project, error) {
	now := s.clock.Now().UTC()
	project := &model.Project{
		ID:        s.idgen.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.database.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	s.logger.Info("project created", "project_id", project.ID, "name", project.Name)

	if _, err := s.EnsureDefaultStyleProfile(ctx, project.ID); err != nil {
		return nil, err
	}
	return project, nil
}

// EnsureProject returns the project named name, creating it on first use.
// A concurrent creator winning the race is not an error.
func (s *PWService) EnsureProject(ctx context.Context, name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError(nil, "project name is required")
	}

	project, err := s.database.FindProjectByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("finding project: %w", err)
	}
	if project == nil {
		project, err = s.CreateProject(ctx, name)
		if errors.Is(err, ErrConflict) {
			project, err = s.database.FindProjectByName(ctx, name)
			if err == nil && project == nil {
				err = NotFoundError("project %q vanished after conflict", name)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	if _, err := s.EnsureDefaultStyleProfile(ctx, project.ID); err != nil {
		return nil, err
	}
	return project, nil
}

// GetProject returns the project with the given ID.
func (s *PWService) GetProject(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.database.FindProjectByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding project: %w", err)
	}
	if project == nil {
		return nil, NotFoundError("project %s not found", id)
	}
	return project, nil
}

// FindProject returns the project whose ID or name is ref. IDs take precedence.
func (s *PWService) FindProject(ctx context.Context, ref string) (*model.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ValidationError(nil, "project is required")
	}
	project, err := s.database.FindProjectByID(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("finding project: %w", err)
	}
	if project == nil {
		project, err = s.database.FindProjectByName(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("finding project: %w", err)
		}
	}
	if project == nil {
		return nil, NotFoundError("project %q not found", ref)
	}
	return project, nil
}

// ResolveProject returns the project whose ID or name is ref. With create
// set, an unknown ref is taken as a name and the project is created.
func (s *PWService) ResolveProject(ctx context.Context, ref string, create bool) (*model.Project, error) {
	project, err := s.FindProject(ctx, ref)
	if err == nil || !create || !errors.Is(err, ErrNotFound) {
		return project, err
	}
	return s.EnsureProject(ctx, ref)
}

// ListProjects returns every project, oldest first.
func (s *PWService) ListProjects(ctx context.Context) ([]*model.Project, error) {
	projects, err := s.database.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// DefaultStyleProfileName names the style profile seeded into every project.
const DefaultStyleProfileName = "default"

// DefaultStyleProfile is the payload of the seeded style profile.
var DefaultStyleProfile = json.RawMessage(`{
	"voice": "Clear, concrete, close third person; plain words over ornament.",
	"tense": "past",
	"pov": "third_limited",
	"sentence_length_target": 16,
	"banned_phrases": ["time stood still", "heart skipped a beat", "the silence was deafening"],
	"preferred_words": [],
	"notes": "Seeded default. Edit or replace with a project-specific profile."
}`)

// EnsureDefaultStyleProfile seeds the default style profile into a project
// if it is missing. Reports whether this call created it. Losing the insert
// race to another writer counts as success.
func (s *PWService) EnsureDefaultStyleProfile(ctx context.Context, projectID string) (bool, error) {
	existing, err := s.database.FindArtifact(ctx, projectID, model.StyleProfile, DefaultStyleProfileName)
	if err != nil {
		return false, fmt.Errorf("finding default style profile: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	payload, err := s.validator.Validate(model.StyleProfile, DefaultStyleProfile)
	if err != nil {
		return false, fmt.Errorf("validating default style profile: %w", err)
	}

	artifact, revision := s.newArtifact(projectID, model.StyleProfile, DefaultStyleProfileName, 1, payload)
	if _, err := s.database.CreateArtifact(ctx, artifact, revision); err != nil {
		if errors.Is(err, ErrConflict) {
			s.logger.Debug("default style profile seeded concurrently", "project_id", projectID)
			return false, nil
		}
		return false, fmt.Errorf("seeding default style profile: %w", err)
	}

	s.logger.Info("default style profile seeded", "project_id", projectID)
	return true, nil
}

// Artifact operations

// UpsertArtifactRequest describes one write to an artifact.
type UpsertArtifactRequest struct {
	ProjectID     string
	Type          model.ArtifactType
	Name          string
	SchemaVersion int // 0 means 1
	Payload       json.RawMessage
}

// UpsertArtifact validates the payload and writes it as the next revision of
// the artifact, creating the artifact with revision 1 if needed.
func (s *PWService) UpsertArtifact(ctx context.Context, req UpsertArtifactRequest) (*model.Artifact, error) {
	if err := checkType(req.Type); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ValidationError(nil, "artifact name is required")
	}
	schemaVersion := req.SchemaVersion
	if schemaVersion == 0 {
		schemaVersion = 1
	}
	if schemaVersion < 1 {
		return nil, ValidationError(nil, "schema_version must be >= 1, got %d", req.SchemaVersion)
	}

	payload, err := s.validator.Validate(req.Type, req.Payload)
	if err != nil {
		return nil, err
	}

	artifact, revision := s.newArtifact(req.ProjectID, req.Type, name, schemaVersion, payload)
	stored, err := s.database.UpsertArtifact(ctx, artifact, revision)
	if err != nil {
		return nil, fmt.Errorf("upserting %s %q: %w", req.Type, name, err)
	}

	s.logger.Info("artifact revision written",
		"project_id", stored.ProjectID, "type", string(stored.Type), "name", stored.Name, "revision", stored.CurrentRevision)
	return stored, nil
}

func (s *PWService) newArtifact(projectID string, artifactType model.ArtifactType, name string, schemaVersion int, payload json.RawMessage) (*model.Artifact, *model.ArtifactRevision) {
	now := s.clock.Now().UTC()
	artifact := &model.Artifact{
		ID:            s.idgen.New(),
		ProjectID:     projectID,
		Type:          artifactType,
		Name:          name,
		SchemaVersion: schemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	revision := &model.ArtifactRevision{
		ID:            s.idgen.New(),
		SchemaVersion: schemaVersion,
		Payload:       payload,
		CreatedAt:     now,
	}
	return artifact, revision
}

// GetArtifactLatest returns an artifact with the payload of its current revision.
func (s *PWService) GetArtifactLatest(ctx context.Context, projectID string, artifactType model.ArtifactType, name string) (*model.ArtifactWithPayload, error) {
	artifact, err := s.findArtifact(ctx, projectID, artifactType, name)
	if err != nil {
		return nil, err
	}
	revision, err := s.database.FindArtifactRevision(ctx, artifact.ID, artifact.CurrentRevision)
	if err != nil {
		return nil, fmt.Errorf("finding current revision: %w", err)
	}
	if revision == nil {
		return nil, NotFoundError("current revision %d of %s %q not found", artifact.CurrentRevision, artifactType, name)
	}
	return &model.ArtifactWithPayload{Artifact: *artifact, Payload: revision.Payload}, nil
}

// ListArtifacts returns a project's artifacts sorted by (type, name).
// An empty artifactType lists all types.
func (s *PWService) ListArtifacts(ctx context.Context, projectID string, artifactType model.ArtifactType) ([]*model.Artifact, error) {
	if artifactType != "" {
		if err := checkType(artifactType); err != nil {
			return nil, err
		}
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	artifacts, err := s.database.ListArtifacts(ctx, projectID, artifactType)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	return artifacts, nil
}

// ListArtifactRevisions returns the revision numbers and times of an artifact, ascending.
func (s *PWService) ListArtifactRevisions(ctx context.Context, projectID string, artifactType model.ArtifactType, name string) ([]*model.RevisionSummary, error) {
	artifact, err := s.findArtifact(ctx, projectID, artifactType, name)
	if err != nil {
		return nil, err
	}
	revisions, err := s.database.ListArtifactRevisions(ctx, artifact.ID)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}

	summaries := make([]*model.RevisionSummary, len(revisions))
	for i, rev := range revisions {
		summaries[i] = &model.RevisionSummary{
			RevisionNumber: rev.RevisionNumber,
			CreatedAt:      rev.CreatedAt,
			IsCurrent:      rev.RevisionNumber == artifact.CurrentRevision,
		}
	}
	return summaries, nil
}

// GetArtifactRevision returns one revision of an artifact with its payload.
func (s *PWService) GetArtifactRevision(ctx context.Context, projectID string, artifactType model.ArtifactType, name string, revisionNumber int) (*model.ArtifactRevision, error) {
	artifact, err := s.findArtifact(ctx, projectID, artifactType, name)
	if err != nil {
		return nil, err
	}
	revision, err := s.database.FindArtifactRevision(ctx, artifact.ID, revisionNumber)
	if err != nil {
		return nil, fmt.Errorf("finding revision: %w", err)
	}
	if revision == nil {
		return nil, NotFoundError("revision %d of %s %q not found", revisionNumber, artifactType, name)
	}
	return revision, nil
}

func (s *PWService) findArtifact(ctx context.Context, projectID string, artifactType model.ArtifactType, name string) (*model.Artifact, error) {
	if err := checkType(artifactType); err != nil {
		return nil, err
	}
	artifact, err := s.database.FindArtifact(ctx, projectID, artifactType, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("finding artifact: %w", err)
	}
	if artifact == nil {
		return nil, NotFoundError("%s %q not found in project %s", artifactType, name, projectID)
	}
	return artifact, nil
}

func checkType(t model.ArtifactType) error {
	if _, err := model.ParseArtifactType(string(t)); err != nil {
		return ValidationError(err, "invalid artifact type")
	}
	return nil
}
