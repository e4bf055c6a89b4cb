package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/thedeuce2/ProWriter/internal/pw"
)

// MemoryVault is an in-memory implementation of the Vault interface.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name      string
	snapshots map[string][]byte // storeID -> snapshot
	versions  map[string]int64  // storeID -> version
	mu        sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:      name,
		snapshots: make(map[string][]byte),
		versions:  make(map[string]int64),
	}
}

// PutSnapshot stores the snapshot for storeID, replacing any previous one.
func (m *MemoryVault) PutSnapshot(storeID string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[storeID] = data
	m.versions[storeID] = version
	return nil
}

// GetSnapshot writes the snapshot for storeID to w.
func (m *MemoryVault) GetSnapshot(storeID string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.snapshots[storeID]
	if !ok {
		return fmt.Errorf("snapshot not found for store: %s", storeID)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// SnapshotVersion returns the version of the stored snapshot, or 0.
func (m *MemoryVault) SnapshotVersion(storeID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.versions[storeID], nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements pw.Vault interface
var _ pw.Vault = (*MemoryVault)(nil)
