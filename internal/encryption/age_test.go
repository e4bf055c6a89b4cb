package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thedeuce2/ProWriter/internal/config"
)

const passphrase = "correct horse"

func newTestAgeEncryptor(t *testing.T) *AgeEncryptor {
	t.Helper()
	dir := t.TempDir()
	return NewAgeEncryptor(config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "keys", "prowriter.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "prowriter.key"),
	})
}

func TestAgeEncryptor_Setup(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)

	if e.IsConfigured() {
		t.Error("IsConfigured() = true before Setup, want false")
	}
	if err := e.Setup(passphrase); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.IsConfigured() {
		t.Error("IsConfigured() = false after Setup, want true")
	}

	priv, err := os.ReadFile(e.privateKeyPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(priv), "-----BEGIN AGE ENCRYPTED FILE-----") {
		t.Errorf("private key file is not armored: %.40q", priv)
	}

	r, err := e.Recipient()
	if err != nil {
		t.Fatalf("Recipient() error = %v", err)
	}
	if !strings.HasPrefix(r.String(), "age1") {
		t.Errorf("Recipient() = %s, want age1 prefix", r)
	}

	if err := e.Setup(passphrase); err == nil {
		t.Error("second Setup() expected error, keys must not be overwritten")
	}
}

func TestAgeEncryptor_SetupEmptyPassphrase(t *testing.T) {
	t.Parallel()
	if err := newTestAgeEncryptor(t).Setup(""); err == nil {
		t.Error("Setup(\"\") expected error")
	}
}

func TestAgeEncryptor_EncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)
	if err := e.Setup(passphrase); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	dc, err := e.Unlock(passphrase)
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{"sqlite header", []byte("SQLite format 3\x00")},
		{"empty", []byte{}},
		{"large", bytes.Repeat([]byte("revision "), 20000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ciphertext bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &ciphertext); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if len(tt.input) > 0 && bytes.Contains(ciphertext.Bytes(), tt.input) {
				t.Error("ciphertext contains plaintext")
			}

			var plaintext bytes.Buffer
			if err := dc.Decrypt(&ciphertext, &plaintext); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(plaintext.Bytes(), tt.input) {
				t.Errorf("round trip mismatch: got %d bytes, want %d", plaintext.Len(), len(tt.input))
			}
		})
	}
}

func TestAgeEncryptor_UnlockWrongPassphrase(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)
	if err := e.Setup(passphrase); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if _, err := e.Unlock("wrong"); err == nil {
		t.Error("Unlock() with wrong passphrase expected error")
	}
}

func TestAgeEncryptor_BeforeSetup(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)

	var out bytes.Buffer
	if err := e.Encrypt(strings.NewReader("x"), &out); err == nil {
		t.Error("Encrypt() before Setup expected error")
	}
	if _, err := e.Unlock(passphrase); err == nil {
		t.Error("Unlock() before Setup expected error")
	}
}
