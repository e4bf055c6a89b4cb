package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/thedeuce2/ProWriter/internal/config"
	"github.com/thedeuce2/ProWriter/internal/database"
	"github.com/thedeuce2/ProWriter/internal/encryption"
	"github.com/thedeuce2/ProWriter/internal/fs"
	"github.com/thedeuce2/ProWriter/internal/model"
	"github.com/thedeuce2/ProWriter/internal/pw"
	"github.com/thedeuce2/ProWriter/internal/rubric"
	"github.com/thedeuce2/ProWriter/internal/schema"
	"github.com/thedeuce2/ProWriter/internal/vault"
)

// Options adjusts how NewPWApp builds the app.
type Options struct {
	// Console receives log lines in addition to the log file. nil means the
	// log file only.
	Console io.Writer
	// Verbose enables debug logging.
	Verbose bool
	// Clock stamps operations and revisions. nil means the wall clock.
	Clock pw.Clock
}

// PWApp is the application layer between the CLI / MCP server and PWService.
// It constructs all dependencies from config, resolves project references and
// raw paths, and archives a database snapshot on Close after mutating commands.
//
// BeginWrite and Observe may be called from concurrent MCP tool calls; mu
// guards op.
type PWApp struct {
	cfg       *config.Config
	db        pw.Database
	vault     pw.Vault
	fsmgr     pw.FilesystemManager
	encryptor pw.Encryptor
	service   *pw.PWService
	clock     pw.Clock
	logFile   *os.File

	mu sync.Mutex
	op *Operation
}

// NewPWApp creates a fully wired PWApp from the given config.
// operation identifies the command being run (e.g. "artifact put", "serve").
// The caller must call Close when done.
func NewPWApp(cfg *config.Config, operation string, opts Options) (*PWApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)

	var v pw.Vault
	if len(cfg.Vaults) > 0 {
		var err error
		v, err = vault.NewVaultFromConfig(cfg.Vaults[0])
		if err != nil {
			return nil, fmt.Errorf("creating vault: %w", err)
		}
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("creating validator: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.StoreID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date (run `prowriter config init`): %w", err)
	}

	// A newer archived snapshot means another machine wrote to this store.
	if v != nil {
		remoteVersion, err := v.SnapshotVersion(cfg.StoreID)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("checking archived snapshot version: %w", err)
		}
		localMax, err := db.MaxOperationID(context.Background())
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("checking local operation version: %w", err)
		}
		if remoteVersion > localMax {
			db.Close()
			return nil, fmt.Errorf("local database is behind the archive (local=%d, archive=%d): run `prowriter restore`", localMax, remoteVersion)
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = pw.RealClock{}
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	opID := clock.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID, opts.Console, level)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := pw.NewPWService(db, validator, v, enc, fsmgr, &slogAdapter{l: logger}, clock, pw.UUIDGenerator{})

	return &PWApp{
		cfg:       cfg,
		db:        db,
		vault:     v,
		fsmgr:     fsmgr,
		encryptor: enc,
		service:   svc,
		clock:     clock,
		logFile:   logFile,
		op:        NewOperation(operation),
	}, nil
}

// Service returns the underlying service.
func (a *PWApp) Service() *pw.PWService {
	return a.service
}

// Config returns the config the app was built from.
func (a *PWApp) Config() *config.Config {
	return a.cfg
}

// Operation returns the operation tracked by this app.
func (a *PWApp) Operation() *Operation {
	return a.op
}

// BeginWrite persists the operation before the first mutation, giving it an
// ID from the database. Later calls are no-ops, so a serve session records
// one operation however many writes it makes.
func (a *PWApp) BeginWrite(ctx context.Context, params map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.op.Persisted() {
		return nil
	}
	a.op.SetParameters(params)
	dbOp, err := a.db.CreateOperation(ctx, a.op.Operation, a.op.Parameters, a.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// Observe marks the operation failed when err is non-nil and returns err.
func (a *PWApp) Observe(err error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.op.Observe(err)
}

// project resolves ref (an ID or a name) to a project. An empty ref means
// analysis.default_project. With create set, an unknown name is created.
func (a *PWApp) project(ctx context.Context, ref string, create bool) (*model.Project, error) {
	if ref == "" {
		ref = a.cfg.Analysis.DefaultProject
	}
	if ref == "" {
		return nil, pw.ValidationError(nil, "no project given and analysis.default_project is not set")
	}
	return a.service.ResolveProject(ctx, ref, create)
}

// CreateProject creates a named project.
func (a *PWApp) CreateProject(ctx context.Context, name string) (*model.Project, error) {
	if err := a.BeginWrite(ctx, map[string]any{"name": name}); err != nil {
		return nil, err
	}
	p, err := a.service.CreateProject(ctx, name)
	return p, a.Observe(err)
}

// ListProjects returns every project, oldest first.
func (a *PWApp) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return a.service.ListProjects(ctx)
}

// PutArtifact writes payload as the next revision of the artifact, creating
// the project on first use.
func (a *PWApp) PutArtifact(ctx context.Context, projectRef string, artifactType model.ArtifactType, name string, schemaVersion int, payload json.RawMessage) (*model.Artifact, error) {
	if err := a.BeginWrite(ctx, map[string]any{"project": projectRef, "type": artifactType, "name": name}); err != nil {
		return nil, err
	}
	p, err := a.project(ctx, projectRef, true)
	if err != nil {
		return nil, a.Observe(err)
	}
	artifact, err := a.service.UpsertArtifact(ctx, pw.UpsertArtifactRequest{
		ProjectID:     p.ID,
		Type:          artifactType,
		Name:          name,
		SchemaVersion: schemaVersion,
		Payload:       payload,
	})
	return artifact, a.Observe(err)
}

// GetArtifact returns the current revision of an artifact.
func (a *PWApp) GetArtifact(ctx context.Context, projectRef string, artifactType model.ArtifactType, name string) (*model.ArtifactWithPayload, error) {
	p, err := a.project(ctx, projectRef, false)
	if err != nil {
		return nil, err
	}
	return a.service.GetArtifactLatest(ctx, p.ID, artifactType, name)
}

// GetArtifactRevision returns one revision of an artifact.
func (a *PWApp) GetArtifactRevision(ctx context.Context, projectRef string, artifactType model.ArtifactType, name string, revision int) (*model.ArtifactRevision, error) {
	p, err := a.project(ctx, projectRef, false)
	if err != nil {
		return nil, err
	}
	return a.service.GetArtifactRevision(ctx, p.ID, artifactType, name, revision)
}

// ListArtifacts lists a project's artifacts, optionally of one type.
func (a *PWApp) ListArtifacts(ctx context.Context, projectRef string, artifactType model.ArtifactType) ([]*model.Artifact, error) {
	p, err := a.project(ctx, projectRef, false)
	if err != nil {
		return nil, err
	}
	return a.service.ListArtifacts(ctx, p.ID, artifactType)
}

// ListArtifactRevisions lists the revisions of an artifact, oldest first.
func (a *PWApp) ListArtifactRevisions(ctx context.Context, projectRef string, artifactType model.ArtifactType, name string) ([]*model.RevisionSummary, error) {
	p, err := a.project(ctx, projectRef, false)
	if err != nil {
		return nil, err
	}
	return a.service.ListArtifactRevisions(ctx, p.ID, artifactType, name)
}

// Analyze runs the analysis pipeline over text without storing anything.
func (a *PWApp) Analyze(source, text string, clean bool) *pw.TextReport {
	return a.service.AnalyzeText(source, text, clean)
}

// RecordAnalysis analyzes text and stores the report as a quality_report.
func (a *PWApp) RecordAnalysis(ctx context.Context, projectRef, name, source, text string, clean bool) (*model.Artifact, *pw.TextReport, error) {
	if err := a.BeginWrite(ctx, map[string]any{"project": projectRef, "name": name, "source": source}); err != nil {
		return nil, nil, err
	}
	p, err := a.project(ctx, projectRef, true)
	if err != nil {
		return nil, nil, a.Observe(err)
	}
	artifact, report, err := a.service.RecordQualityReport(ctx, p.ID, name, source, text, clean)
	return artifact, report, a.Observe(err)
}

// ScanRequest describes a batch scan of manuscript files.
type ScanRequest struct {
	Path      string
	Recursive bool
	Clean     bool
	// Record, when set, stores every report as a quality_report in Project.
	// A single file is stored under Record; files found in a directory under
	// Record/<path relative to the directory>. All reports are validated
	// before any is stored. If the database fails part-way, the reports
	// already stored stay and the operation is recorded as failed.
	Record  string
	Project string
}

// Scan analyzes the manuscript files at req.Path.
func (a *PWApp) Scan(ctx context.Context, req ScanRequest) ([]*pw.TextReport, error) {
	root, err := a.fsmgr.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	reports, err := a.service.ScanFiles(root, req.Recursive, req.Clean)
	if err != nil || req.Record == "" {
		return reports, err
	}

	if err := a.BeginWrite(ctx, map[string]any{"project": req.Project, "path": root.String(), "record": req.Record}); err != nil {
		return nil, err
	}
	p, err := a.project(ctx, req.Project, true)
	if err != nil {
		return nil, a.Observe(err)
	}
	batch := make([]pw.NamedReport, 0, len(reports))
	for _, report := range reports {
		name := req.Record
		if root.IsDir() {
			rel, err := filepath.Rel(root.String(), report.Source)
			if err != nil {
				return nil, a.Observe(fmt.Errorf("naming report for %s: %w", report.Source, err))
			}
			name = req.Record + "/" + filepath.ToSlash(rel)
		}
		batch = append(batch, pw.NamedReport{Name: name, Report: report})
	}
	if _, err := a.service.StoreQualityReports(ctx, p.ID, batch); err != nil {
		return nil, a.Observe(err)
	}
	return reports, nil
}

// Plan synthesizes the revision plan for mode. An empty mode means
// analysis.default_mode.
func (a *PWApp) Plan(mode string) (rubric.Plan, error) {
	m, err := a.mode(mode)
	if err != nil {
		return rubric.Plan{}, err
	}
	return rubric.Synthesize(m)
}

// RecordPlan synthesizes the plan for mode and stores it as a revision_plan.
func (a *PWApp) RecordPlan(ctx context.Context, projectRef, name, mode string) (*model.Artifact, *rubric.Plan, error) {
	m, err := a.mode(mode)
	if err != nil {
		return nil, nil, err
	}
	if err := a.BeginWrite(ctx, map[string]any{"project": projectRef, "name": name, "mode": m}); err != nil {
		return nil, nil, err
	}
	p, err := a.project(ctx, projectRef, true)
	if err != nil {
		return nil, nil, a.Observe(err)
	}
	artifact, plan, err := a.service.RecordRevisionPlan(ctx, p.ID, name, m)
	return artifact, plan, a.Observe(err)
}

func (a *PWApp) mode(mode string) (rubric.Mode, error) {
	if mode == "" {
		mode = a.cfg.Analysis.DefaultMode
	}
	m, err := rubric.ParseMode(mode)
	if err != nil {
		return "", pw.ValidationError(err, "invalid revision mode")
	}
	return m, nil
}

// GetHistory returns the most recent operations.
func (a *PWApp) GetHistory(ctx context.Context, limit int) ([]*model.Operation, error) {
	return a.service.GetHistory(ctx, limit)
}

// Close finalizes the operation and closes all resources.
// For persisted operations: finishes the operation record, snapshots the
// database and archives the snapshot with version = operation ID.
// For non-persisted operations: just closes the database.
func (a *PWApp) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ctx := context.Background()
	var snapshot string
	if a.op.Persisted() {
		if err := a.db.FinishOperation(ctx, a.op.ID, a.op.Status, a.clock.Now().UTC()); err != nil {
			keep(fmt.Errorf("finishing operation: %w", err))
		}
		if a.vault != nil {
			path, err := a.snapshot()
			keep(err)
			snapshot = path
		}
	}

	if err := a.db.Close(); err != nil {
		keep(fmt.Errorf("closing database: %w", err))
	}

	if snapshot != "" {
		keep(a.service.ArchiveSnapshot(a.cfg.StoreID, snapshot, a.op.ID))
		os.RemoveAll(filepath.Dir(snapshot))
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// snapshot writes a copy of the database into a new temp directory.
// VACUUM INTO needs a path that does not exist yet.
func (a *PWApp) snapshot() (string, error) {
	dir, err := os.MkdirTemp("", "prowriter-snapshot-")
	if err != nil {
		return "", fmt.Errorf("creating snapshot dir: %w", err)
	}
	path := filepath.Join(dir, a.cfg.StoreID+".db")
	if err := a.db.BackupTo(path); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("snapshotting database: %w", err)
	}
	return path, nil
}

// Restore writes the archived snapshot of cfg's store to outPath. When the
// archive is encrypted, passphrase is called to unlock the private key.
// Restore does not open the local database, so it works when the local copy
// is missing or behind.
func Restore(cfg *config.Config, outPath string, passphrase func() (string, error)) error {
	if len(cfg.Vaults) == 0 {
		return fmt.Errorf("no vaults configured")
	}
	v, err := vault.NewVaultFromConfig(cfg.Vaults[0])
	if err != nil {
		return fmt.Errorf("creating vault: %w", err)
	}
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}

	var decrypt pw.DecryptionContext
	if enc != nil && enc.IsConfigured() {
		pass, err := passphrase()
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		decrypt, err = enc.Unlock(pass)
		if err != nil {
			return fmt.Errorf("unlocking private key: %w", err)
		}
	}

	svc := pw.NewPWService(nil, nil, v, enc, nil, pw.NewNopLogger(), pw.RealClock{}, pw.UUIDGenerator{})
	return svc.RestoreSnapshot(cfg.StoreID, outPath, decrypt)
}
