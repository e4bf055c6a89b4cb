package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/thedeuce2/ProWriter/internal/pw"
)

// DefaultKeepSnapshots is how many snapshots per store a FileSystemVault
// retains when no limit is configured.
const DefaultKeepSnapshots = 5

const snapshotExt = ".db"

// FileSystemVault keeps the most recent snapshots of each store on disk,
// named by version:
//
//	<root>/
//	  snapshots/
//	    <storeID>/
//	      <version>.db
//
// The newest file is the latest snapshot; older ones beyond keep are pruned
// after every put.
type FileSystemVault struct {
	name         string
	root         string
	snapshotsDir string
	keep         int
}

// NewFileSystemVault creates a vault rooted at root that retains keep
// snapshots per store. keep <= 0 means DefaultKeepSnapshots.
func NewFileSystemVault(name, root string, keep int) (*FileSystemVault, error) {
	if keep <= 0 {
		keep = DefaultKeepSnapshots
	}
	snapshotsDir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(snapshotsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}
	return &FileSystemVault{name: name, root: root, snapshotsDir: snapshotsDir, keep: keep}, nil
}

func (v *FileSystemVault) storeDir(storeID string) string {
	return filepath.Join(v.snapshotsDir, storeID)
}

// versions returns the versions on disk for storeID, newest first.
func (v *FileSystemVault) versions(storeID string) ([]int64, error) {
	entries, err := os.ReadDir(v.storeDir(storeID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	var out []int64
	for _, e := range entries {
		base, ok := strings.CutSuffix(e.Name(), snapshotExt)
		if !ok || e.IsDir() {
			continue
		}
		n, err := strconv.ParseInt(base, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out, nil
}

func (v *FileSystemVault) snapshotPath(storeID string, version int64) string {
	return filepath.Join(v.storeDir(storeID), strconv.FormatInt(version, 10)+snapshotExt)
}

// PutSnapshot writes the snapshot as <version>.db and prunes old versions.
func (v *FileSystemVault) PutSnapshot(storeID string, r io.Reader, size int64, version int64) error {
	if err := os.MkdirAll(v.storeDir(storeID), 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	if err := writeAtomic(v.snapshotPath(storeID, version), r, size); err != nil {
		return err
	}

	versions, err := v.versions(storeID)
	if err != nil {
		return err
	}
	if len(versions) > v.keep {
		for _, old := range versions[v.keep:] {
			if err := os.Remove(v.snapshotPath(storeID, old)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("pruning snapshot %d: %w", old, err)
			}
		}
	}
	return nil
}

// SnapshotVersion returns the newest version stored for storeID, or 0.
func (v *FileSystemVault) SnapshotVersion(storeID string) (int64, error) {
	versions, err := v.versions(storeID)
	if err != nil || len(versions) == 0 {
		return 0, err
	}
	return versions[0], nil
}

// GetSnapshot writes the newest snapshot for storeID to w.
func (v *FileSystemVault) GetSnapshot(storeID string, w io.Writer) error {
	version, err := v.SnapshotVersion(storeID)
	if err != nil {
		return err
	}
	if version == 0 {
		return fmt.Errorf("snapshot not found for store: %s", storeID)
	}

	f, err := os.Open(v.snapshotPath(storeID, version))
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup() error {
	for _, dir := range []string{v.root, v.snapshotsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeAtomic writes r to destPath through a temp file in the same
// directory, so readers never see a partial snapshot.
func writeAtomic(destPath string, r io.Reader, expectedSize int64) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	written, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}
	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

var _ pw.Vault = (*FileSystemVault)(nil)
