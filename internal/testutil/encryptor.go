package testutil

import (
	"github.com/thedeuce2/ProWriter/internal/encryption"
	"github.com/thedeuce2/ProWriter/internal/pw"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() pw.Encryptor {
	return encryption.NewTestEncryptor()
}
