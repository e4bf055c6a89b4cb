package encryption

import (
	"fmt"

	"github.com/thedeuce2/ProWriter/internal/config"
	"github.com/thedeuce2/ProWriter/internal/pw"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// Type "none" returns a nil Encryptor: snapshots are archived in plaintext.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (pw.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
