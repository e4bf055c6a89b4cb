package encryption

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/thedeuce2/ProWriter/internal/pw"
)

// testHeader marks snapshots sealed by TestEncryptor.
var testHeader = []byte("PWENC\x00\x00\x00")

// TestEncryptor is a deterministic stand-in for AgeEncryptor. It is not
// cryptography: ciphertext is testHeader followed by the bitwise complement
// of the plaintext. Once Setup has run, Unlock requires the same passphrase.
type TestEncryptor struct {
	passphrase string
	hasPass    bool
}

var _ pw.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a TestEncryptor that accepts any passphrase.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	if passphrase == "" {
		return errors.New("passphrase must not be empty")
	}
	e.passphrase = passphrase
	e.hasPass = true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	return complement(r, w)
}

func (e *TestEncryptor) Unlock(passphrase string) (pw.DecryptionContext, error) {
	if e.hasPass && passphrase != e.passphrase {
		return nil, errors.New("wrong passphrase")
	}
	return &TestDecryptionContext{}, nil
}

// IsConfigured is always true: there are no key files to be missing.
func (e *TestEncryptor) IsConfigured() bool {
	return true
}

// TestDecryptionContext reverses TestEncryptor.Encrypt.
type TestDecryptionContext struct{}

var _ pw.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return errors.New("not a test-encrypted snapshot")
	}
	return complement(r, w)
}

func complement(r io.Reader, w io.Writer) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		for i := range buf[:n] {
			buf[i] = ^buf[i]
		}
		if _, werr := bw.Write(buf[:n]); werr != nil {
			return fmt.Errorf("writing data: %w", werr)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading data: %w", err)
		}
	}
	return bw.Flush()
}
