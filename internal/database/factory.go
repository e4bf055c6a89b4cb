package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/thedeuce2/ProWriter/internal/config"
	"github.com/thedeuce2/ProWriter/internal/pw"
)

// NewDatabaseFromConfig creates a Database implementation based on the database config type.
// A memory database is migrated on creation; a sqlite file must already be
// migrated (see Initialize).
func NewDatabaseFromConfig(cfg config.DatabaseConfig, storeID string) (pw.Database, error) {
	switch cfg.Type {
	case "sqlite":
		dbPath, err := FilePath(cfg, storeID)
		if err != nil {
			return nil, err
		}
		db, err := NewSQLiteDatabase(dbPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "memory":
		db, err := NewSQLiteDatabase(":memory:")
		if err != nil {
			return nil, err
		}
		if err := db.MigrateUp(); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// Initialize creates the sqlite database file for storeID if needed and
// applies every pending migration. Returns the database path.
func Initialize(cfg config.DatabaseConfig, storeID string) (string, error) {
	if cfg.Type != "sqlite" {
		return "", nil
	}
	dbPath, err := FilePath(cfg, storeID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}

	db, err := NewSQLiteDatabase(dbPath)
	if err != nil {
		return "", err
	}
	defer db.Close()

	if err := db.MigrateUp(); err != nil {
		return "", err
	}
	return dbPath, nil
}

// FilePath returns the sqlite database file of storeID under cfg.DataDir.
func FilePath(cfg config.DatabaseConfig, storeID string) (string, error) {
	if cfg.DataDir == "" {
		return "", fmt.Errorf("data_dir required for sqlite database")
	}
	if storeID == "" {
		return "", fmt.Errorf("store id required for sqlite database")
	}
	return filepath.Join(cfg.DataDir, storeID+".db"), nil
}
