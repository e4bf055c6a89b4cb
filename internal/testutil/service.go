package testutil

import (
	"testing"

	"github.com/thedeuce2/ProWriter/internal/pw"
	"github.com/thedeuce2/ProWriter/internal/schema"
)

// NewTestValidator returns the schema validator, failing the test if the
// schemas do not resolve.
func NewTestValidator(t *testing.T) pw.Validator {
	t.Helper()
	v, err := schema.NewValidator()
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}
	return v
}

// ServiceDeps holds the collaborators of a service built by NewTestService,
// so tests can inspect them.
type ServiceDeps struct {
	Database pw.Database
	Vault    pw.Vault
	FS       *MockFilesystemManager
	Clock    *StubClock
	IDs      *StubIDGenerator
}

// NewTestService builds a PWService over an in-memory database, a memory
// vault, the mock filesystem and stub clock and IDs. No encryptor is set.
func NewTestService(t *testing.T) (*pw.PWService, *ServiceDeps) {
	t.Helper()
	deps := &ServiceDeps{
		Database: NewTestDatabase(t),
		Vault:    NewTestVault(),
		FS:       NewMockFilesystemManager(),
		Clock:    FixedClock(),
		IDs:      NewStubIDGenerator(),
	}
	svc := pw.NewPWService(deps.Database, NewTestValidator(t), deps.Vault, nil, deps.FS, pw.NewNopLogger(), deps.Clock, deps.IDs)
	return svc, deps
}
