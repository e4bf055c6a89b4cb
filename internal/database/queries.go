package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/thedeuce2/ProWriter/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the SQL statements of the artifact store. Single-row reads
// return sql.ErrNoRows when nothing matches.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Projects

const projectColumns = `id, name, created_at, updated_at`

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	var name sql.NullString
	if err := row.Scan(&p.ID, &name, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Name = name.String
	return &p, nil
}

func (q *Queries) InsertProject(ctx context.Context, p *model.Project) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?)`,
		p.ID, sql.NullString{String: p.Name, Valid: p.Name != ""}, p.CreatedAt, p.UpdatedAt)
	return err
}

func (q *Queries) GetProjectByID(ctx context.Context, id string) (*model.Project, error) {
	return scanProject(q.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
}

func (q *Queries) GetProjectByName(ctx context.Context, name string) (*model.Project, error) {
	return scanProject(q.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE name = ?`, name))
}

func (q *Queries) ListProjects(ctx context.Context) ([]*model.Project, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Artifacts

const artifactColumns = `id, project_id, type, name, schema_version, current_revision, created_at, updated_at`

func scanArtifact(row rowScanner) (*model.Artifact, error) {
	var a model.Artifact
	if err := row.Scan(&a.ID, &a.ProjectID, &a.Type, &a.Name, &a.SchemaVersion, &a.CurrentRevision, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (q *Queries) InsertArtifact(ctx context.Context, a *model.Artifact) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO artifacts (`+artifactColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ProjectID, a.Type, a.Name, a.SchemaVersion, a.CurrentRevision, a.CreatedAt, a.UpdatedAt)
	return err
}

func (q *Queries) GetArtifact(ctx context.Context, projectID string, artifactType model.ArtifactType, name string) (*model.Artifact, error) {
	return scanArtifact(q.db.QueryRowContext(ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE project_id = ? AND type = ? AND name = ?`,
		projectID, artifactType, name))
}

func (q *Queries) ListArtifacts(ctx context.Context, projectID string, artifactType model.ArtifactType) ([]*model.Artifact, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+artifactColumns+` FROM artifacts
		 WHERE project_id = ? AND (? = '' OR type = ?)
		 ORDER BY type, name`,
		projectID, artifactType, artifactType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []*model.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// MoveCurrentRevision advances the pointer only if it still points at from.
// Returns the number of rows changed.
func (q *Queries) MoveCurrentRevision(ctx context.Context, artifactID string, from, to, schemaVersion int, updatedAt time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE artifacts SET current_revision = ?, schema_version = ?, updated_at = ?
		 WHERE id = ? AND current_revision = ?`,
		to, schemaVersion, updatedAt, artifactID, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Revisions

func (q *Queries) InsertRevision(ctx context.Context, r *model.ArtifactRevision) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO artifact_revisions (id, artifact_id, revision_number, schema_version, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.ArtifactID, r.RevisionNumber, r.SchemaVersion, string(r.Payload), r.CreatedAt)
	return err
}

func (q *Queries) MaxRevisionNumber(ctx context.Context, artifactID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(revision_number), 0) FROM artifact_revisions WHERE artifact_id = ?`,
		artifactID).Scan(&n)
	return n, err
}

func (q *Queries) ListRevisions(ctx context.Context, artifactID string) ([]*model.ArtifactRevision, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, artifact_id, revision_number, schema_version, created_at
		 FROM artifact_revisions WHERE artifact_id = ? ORDER BY revision_number`,
		artifactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []*model.ArtifactRevision
	for rows.Next() {
		var r model.ArtifactRevision
		if err := rows.Scan(&r.ID, &r.ArtifactID, &r.RevisionNumber, &r.SchemaVersion, &r.CreatedAt); err != nil {
			return nil, err
		}
		revisions = append(revisions, &r)
	}
	return revisions, rows.Err()
}

func (q *Queries) GetRevision(ctx context.Context, artifactID string, revisionNumber int) (*model.ArtifactRevision, error) {
	var r model.ArtifactRevision
	var payload string
	err := q.db.QueryRowContext(ctx,
		`SELECT id, artifact_id, revision_number, schema_version, payload, created_at
		 FROM artifact_revisions WHERE artifact_id = ? AND revision_number = ?`,
		artifactID, revisionNumber).Scan(&r.ID, &r.ArtifactID, &r.RevisionNumber, &r.SchemaVersion, &payload, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Payload = []byte(payload)
	return &r, nil
}

// Operations

func (q *Queries) InsertOperation(ctx context.Context, startedAt time.Time, operation, parameters string) (*model.Operation, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO operations (started_at, operation, parameters, status) VALUES (?, ?, ?, 'running')`,
		startedAt, operation, parameters)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Operation{ID: id, Operation: operation, Parameters: parameters, Status: "running", StartedAt: startedAt}, nil
}

func (q *Queries) FinishOperation(ctx context.Context, id int64, status string, finishedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE operations SET status = ?, finished_at = ? WHERE id = ?`,
		status, finishedAt, id)
	return err
}

func (q *Queries) ListOperations(ctx context.Context, limit int) ([]*model.Operation, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, operation, parameters, status
		 FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []*model.Operation
	for rows.Next() {
		var op model.Operation
		var finished sql.NullTime
		if err := rows.Scan(&op.ID, &op.StartedAt, &finished, &op.Operation, &op.Parameters, &op.Status); err != nil {
			return nil, err
		}
		if finished.Valid {
			op.FinishedAt = &finished.Time
		}
		ops = append(ops, &op)
	}
	return ops, rows.Err()
}

func (q *Queries) MaxOperationID(ctx context.Context) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM operations`).Scan(&id)
	return id, err
}
