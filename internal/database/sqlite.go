package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/thedeuce2/ProWriter/internal/database/migrations"
	"github.com/thedeuce2/ProWriter/internal/model"
	"github.com/thedeuce2/ProWriter/internal/pw"
)

// SQLiteDatabase implements the Database interface using SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *Queries
	path    string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:      db,
		queries: NewQueries(db),
		path:    path,
	}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{
		db:      db,
		queries: NewQueries(db),
	}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
//
// The pool holds a single connection, so transactions are serialized and an
// in-memory database is shared by every caller.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// classify maps SQLite constraint and locking failures to ConflictError and
// wraps everything else.
func classify(err error, format string, args ...any) error {
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch {
		case se.ExtendedCode == sqlite3.ErrConstraintUnique,
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey,
			se.Code == sqlite3.ErrBusy,
			se.Code == sqlite3.ErrLocked:
			return pw.ConflictError(err, format, args...)
		}
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Project operations

func (s *SQLiteDatabase) CreateProject(ctx context.Context, project *model.Project) error {
	if err := s.queries.InsertProject(ctx, project); err != nil {
		return classify(err, "inserting project %q", project.Name)
	}
	return nil
}

func (s *SQLiteDatabase) FindProjectByID(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.queries.GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding project by id: %w", err)
	}
	return p, nil
}

func (s *SQLiteDatabase) FindProjectByName(ctx context.Context, name string) (*model.Project, error) {
	p, err := s.queries.GetProjectByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding project by name: %w", err)
	}
	return p, nil
}

func (s *SQLiteDatabase) ListProjects(ctx context.Context) ([]*model.Project, error) {
	projects, err := s.queries.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// Artifact operations

func (s *SQLiteDatabase) UpsertArtifact(ctx context.Context, artifact *model.Artifact, revision *model.ArtifactRevision) (*model.Artifact, error) {
	return s.writeArtifact(ctx, artifact, revision, true)
}

func (s *SQLiteDatabase) CreateArtifact(ctx context.Context, artifact *model.Artifact, revision *model.ArtifactRevision) (*model.Artifact, error) {
	return s.writeArtifact(ctx, artifact, revision, false)
}

// writeArtifact stores revision and moves the artifact's current pointer to it
// in a single transaction. With allowExisting false an existing artifact is a
// conflict.
func (s *SQLiteDatabase) writeArtifact(ctx context.Context, artifact *model.Artifact, revision *model.ArtifactRevision, allowExisting bool) (*model.Artifact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	if _, err := qtx.GetProjectByID(ctx, artifact.ProjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pw.NotFoundError("project %s not found", artifact.ProjectID)
		}
		return nil, fmt.Errorf("finding project: %w", err)
	}

	existing, err := qtx.GetArtifact(ctx, artifact.ProjectID, artifact.Type, artifact.Name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("finding artifact: %w", err)
	}

	var stored model.Artifact
	if existing == nil {
		stored = *artifact
		stored.CurrentRevision = 1
		stored.SchemaVersion = revision.SchemaVersion
		if err := qtx.InsertArtifact(ctx, &stored); err != nil {
			return nil, classify(err, "inserting %s %q", artifact.Type, artifact.Name)
		}
		rev := *revision
		rev.ArtifactID = stored.ID
		rev.RevisionNumber = 1
		if err := qtx.InsertRevision(ctx, &rev); err != nil {
			return nil, classify(err, "inserting revision 1 of %s %q", artifact.Type, artifact.Name)
		}
	} else {
		if !allowExisting {
			return nil, pw.ConflictError(nil, "%s %q already exists", artifact.Type, artifact.Name)
		}

		latest, err := qtx.MaxRevisionNumber(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("reading latest revision: %w", err)
		}
		next := latest + 1

		rev := *revision
		rev.ArtifactID = existing.ID
		rev.RevisionNumber = next
		if err := qtx.InsertRevision(ctx, &rev); err != nil {
			return nil, classify(err, "inserting revision %d of %s %q", next, artifact.Type, artifact.Name)
		}

		moved, err := qtx.MoveCurrentRevision(ctx, existing.ID, latest, next, revision.SchemaVersion, artifact.UpdatedAt)
		if err != nil {
			return nil, classify(err, "updating current revision of %s %q", artifact.Type, artifact.Name)
		}
		if moved != 1 {
			return nil, pw.ConflictError(nil, "%s %q changed during update", artifact.Type, artifact.Name)
		}

		stored = *existing
		stored.CurrentRevision = next
		stored.SchemaVersion = revision.SchemaVersion
		stored.UpdatedAt = artifact.UpdatedAt
	}

	if err := tx.Commit(); err != nil {
		return nil, classify(err, "committing %s %q", artifact.Type, artifact.Name)
	}
	return &stored, nil
}

func (s *SQLiteDatabase) FindArtifact(ctx context.Context, projectID string, artifactType model.ArtifactType, name string) (*model.Artifact, error) {
	a, err := s.queries.GetArtifact(ctx, projectID, artifactType, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding artifact: %w", err)
	}
	return a, nil
}

func (s *SQLiteDatabase) ListArtifacts(ctx context.Context, projectID string, artifactType model.ArtifactType) ([]*model.Artifact, error) {
	artifacts, err := s.queries.ListArtifacts(ctx, projectID, artifactType)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	return artifacts, nil
}

func (s *SQLiteDatabase) ListArtifactRevisions(ctx context.Context, artifactID string) ([]*model.ArtifactRevision, error) {
	revisions, err := s.queries.ListRevisions(ctx, artifactID)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}
	return revisions, nil
}

func (s *SQLiteDatabase) FindArtifactRevision(ctx context.Context, artifactID string, revisionNumber int) (*model.ArtifactRevision, error) {
	r, err := s.queries.GetRevision(ctx, artifactID, revisionNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding revision: %w", err)
	}
	return r, nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(ctx context.Context, operation, parameters string, startedAt time.Time) (*model.Operation, error) {
	op, err := s.queries.InsertOperation(ctx, startedAt, operation, parameters)
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	return op, nil
}

func (s *SQLiteDatabase) FinishOperation(ctx context.Context, id int64, status string, finishedAt time.Time) error {
	if err := s.queries.FinishOperation(ctx, id, status, finishedAt); err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(ctx context.Context, limit int) ([]*model.Operation, error) {
	ops, err := s.queries.ListOperations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

func (s *SQLiteDatabase) MaxOperationID(ctx context.Context) (int64, error) {
	id, err := s.queries.MaxOperationID(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting max operation id: %w", err)
	}
	return id, nil
}

// Path returns the database file path, or "" for a wrapped connection.
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp applies pending migrations to this database.
func (s *SQLiteDatabase) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements pw.Database interface
var _ pw.Database = (*SQLiteDatabase)(nil)
