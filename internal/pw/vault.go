package pw

import "io"

// Vault stores database snapshots off-host. Each store is identified by
// storeID and holds a single latest snapshot tagged with a version.
type Vault interface {
	// PutSnapshot stores the snapshot read from r, replacing any previous one.
	// size is the number of bytes that will be read from r.
	// version is stored alongside the snapshot for consistency checks.
	PutSnapshot(storeID string, r io.Reader, size int64, version int64) error

	// GetSnapshot writes the latest snapshot for storeID to w.
	GetSnapshot(storeID string, w io.Writer) error

	// SnapshotVersion returns the version of the latest snapshot.
	// Returns 0 if no snapshot has been stored.
	SnapshotVersion(storeID string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
