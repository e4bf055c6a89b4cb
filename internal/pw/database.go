package pw

import (
	"context"
	"time"

	"github.com/thedeuce2/ProWriter/internal/model"
)

// Database provides the durable artifact store.
// Read methods return nil, nil when the row does not exist.
type Database interface {
	// Project operations

	// CreateProject inserts a project. A duplicate name is a ConflictError.
	CreateProject(ctx context.Context, project *model.Project) error

	// FindProjectByID returns the project with the given ID.
	FindProjectByID(ctx context.Context, id string) (*model.Project, error)

	// FindProjectByName returns the project with the given name.
	FindProjectByName(ctx context.Context, name string) (*model.Project, error)

	// ListProjects returns all projects ordered by creation time.
	ListProjects(ctx context.Context) ([]*model.Project, error)

	// Artifact operations

	// UpsertArtifact stores revision as the next revision of the artifact
	// identified by (artifact.ProjectID, artifact.Type, artifact.Name) and moves
	// the current pointer to it, in one transaction. When the artifact does not
	// exist it is created from artifact with revision 1. Returns the stored
	// artifact. Fails with NotFoundError when the project is missing and with
	// ConflictError when a concurrent writer won the race.
	UpsertArtifact(ctx context.Context, artifact *model.Artifact, revision *model.ArtifactRevision) (*model.Artifact, error)

	// CreateArtifact creates artifact with revision 1 only if it does not exist.
	// An existing artifact is a ConflictError.
	CreateArtifact(ctx context.Context, artifact *model.Artifact, revision *model.ArtifactRevision) (*model.Artifact, error)

	// FindArtifact returns the artifact identified by the triple.
	FindArtifact(ctx context.Context, projectID string, artifactType model.ArtifactType, name string) (*model.Artifact, error)

	// ListArtifacts returns a project's artifacts ordered by (type, name).
	// An empty artifactType lists every type.
	ListArtifacts(ctx context.Context, projectID string, artifactType model.ArtifactType) ([]*model.Artifact, error)

	// ListArtifactRevisions returns an artifact's revisions ordered by number,
	// without payloads.
	ListArtifactRevisions(ctx context.Context, artifactID string) ([]*model.ArtifactRevision, error)

	// FindArtifactRevision returns one revision of an artifact, with payload.
	FindArtifactRevision(ctx context.Context, artifactID string, revisionNumber int) (*model.ArtifactRevision, error)

	// Operation tracking

	// CreateOperation records the start of a mutating command.
	CreateOperation(ctx context.Context, operation, parameters string, startedAt time.Time) (*model.Operation, error)

	// FinishOperation records the outcome of a command.
	FinishOperation(ctx context.Context, id int64, status string, finishedAt time.Time) error

	// ListOperations returns up to limit operations, newest first.
	ListOperations(ctx context.Context, limit int) ([]*model.Operation, error)

	// MaxOperationID returns the highest operation ID, or 0 when there are none.
	MaxOperationID(ctx context.Context) (int64, error)

	// CheckMigrations verifies the schema is at the latest version.
	CheckMigrations() error

	// BackupTo writes a consistent copy of the database to destPath.
	BackupTo(destPath string) error

	// Close closes the database connection.
	Close() error
}
