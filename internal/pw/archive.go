package pw

import (
	"fmt"
	"io"
	"os"
)

// ArchiveSnapshot uploads the database snapshot at snapshotPath to the vault,
// tagged with version. When an encryptor is configured the snapshot is
// encrypted first.
func (s *PWService) ArchiveSnapshot(storeID, snapshotPath string, version int64) error {
	if s.vault == nil {
		return fmt.Errorf("no vault configured")
	}

	uploadPath := snapshotPath
	if s.encryptor != nil && s.encryptor.IsConfigured() {
		encPath, err := s.encryptFile(snapshotPath)
		if err != nil {
			return err
		}
		defer os.Remove(encPath)
		uploadPath = encPath
	}

	f, err := os.Open(uploadPath)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	if err := s.vault.PutSnapshot(storeID, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading snapshot to vault: %w", err)
	}

	s.logger.Info("snapshot archived", "store", storeID, "version", version, "size", info.Size())
	return nil
}

func (s *PWService) encryptFile(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.CreateTemp("", "prowriter-snapshot-*.age")
	if err != nil {
		return "", fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	defer out.Close()

	if err := s.encryptor.Encrypt(in, out); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("encrypting snapshot: %w", err)
	}
	return out.Name(), nil
}

// SnapshotVersion returns the version of the archived snapshot, or 0.
func (s *PWService) SnapshotVersion(storeID string) (int64, error) {
	if s.vault == nil {
		return 0, fmt.Errorf("no vault configured")
	}
	v, err := s.vault.SnapshotVersion(storeID)
	if err != nil {
		return 0, fmt.Errorf("reading snapshot version: %w", err)
	}
	return v, nil
}

// RestoreSnapshot writes the archived snapshot for storeID to outPath.
// decryptCtx is required when snapshots are encrypted and must be nil
// otherwise. outPath must not exist.
func (s *PWService) RestoreSnapshot(storeID, outPath string, decryptCtx DecryptionContext) error {
	if s.vault == nil {
		return fmt.Errorf("no vault configured")
	}
	if _, err := os.Stat(outPath); err == nil {
		return fmt.Errorf("output file already exists: %s", outPath)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if decryptCtx == nil {
		if err := s.vault.GetSnapshot(storeID, f); err != nil {
			os.Remove(outPath)
			return fmt.Errorf("retrieving snapshot from vault: %w", err)
		}
	} else {
		pr, pw := io.Pipe()
		vaultErrCh := make(chan error, 1)
		go func() {
			err := s.vault.GetSnapshot(storeID, pw)
			pw.CloseWithError(err)
			vaultErrCh <- err
		}()

		decryptErr := decryptCtx.Decrypt(pr, f)
		pr.CloseWithError(decryptErr)
		vaultErr := <-vaultErrCh

		if decryptErr != nil {
			os.Remove(outPath)
			return fmt.Errorf("decrypting snapshot: %w", decryptErr)
		}
		if vaultErr != nil {
			os.Remove(outPath)
			return fmt.Errorf("retrieving snapshot from vault: %w", vaultErr)
		}
	}

	s.logger.Info("snapshot restored", "store", storeID, "path", outPath)
	return nil
}
