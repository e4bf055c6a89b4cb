package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/thedeuce2/ProWriter/internal/rubric"
)

// Config represents the main configuration for prowriter.
type Config struct {
	StoreID    string           `toml:"store_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Vaults     []VaultConfig    `toml:"vaults"`
	Encryption EncryptionConfig `toml:"encryption"`
	Database   DatabaseConfig   `toml:"database"`
	Filesystem FilesystemConfig `toml:"filesystem"`
	Analysis   AnalysisConfig   `toml:"analysis"`
}

// EncryptionConfig holds paths to the age key pair used for archive snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default), "test" or "none"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

// AnalysisConfig holds defaults for the analysis commands.
type AnalysisConfig struct {
	DefaultProject string `toml:"default_project"` // project name used when --project is omitted
	DefaultMode    string `toml:"default_mode"`    // revision mode used when plan is run without one
	Recursive      bool   `toml:"recursive"`       // scan subdirectories by default
}

// VaultConfig represents configuration for an archive backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`
	// S3Endpoint selects an S3-compatible service; empty means AWS.
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
	// FSKeep is how many snapshots per store to retain; 0 means the default.
	FSKeep int `toml:"fs_keep,omitempty"`
}

// DatabaseConfig represents configuration for the artifact store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(storeID, baseDir string) *Config {
	return &Config{
		StoreID: storeID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Vaults: []VaultConfig{
			{Type: "filesystem", Name: "local", FSVaultRoot: filepath.Join(baseDir, "archive")},
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "prowriter.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "prowriter.key"),
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: filepath.Join(baseDir, "db")},
		Filesystem: FilesystemConfig{
			Ignore: []string{".git", "node_modules", "*.swp"},
		},
		Analysis: AnalysisConfig{DefaultMode: "tighten"},
	}
}

// Validate checks the fields every command depends on and the tagged-union
// type of every sub-config.
func (c *Config) Validate() error {
	if c.StoreID == "" {
		return fmt.Errorf("store_id is required")
	}
	if c.LogDir == "" {
		return fmt.Errorf("log_dir is required")
	}

	switch c.Database.Type {
	case "":
		return fmt.Errorf("database.type is required")
	case "sqlite":
		if c.Database.DataDir == "" {
			return fmt.Errorf("database.data_dir is required for sqlite")
		}
	case "memory":
	default:
		return fmt.Errorf("database.type %q is not one of sqlite, memory", c.Database.Type)
	}

	for i, v := range c.Vaults {
		switch v.Type {
		case "memory", "s3", "filesystem":
		default:
			return fmt.Errorf("vaults[%d].type %q is not one of memory, s3, filesystem", i, v.Type)
		}
	}

	switch c.Encryption.Type {
	case "", "age", "test", "none":
	default:
		return fmt.Errorf("encryption.type %q is not one of age, test, none", c.Encryption.Type)
	}

	if c.Analysis.DefaultMode != "" {
		if _, err := rubric.ParseMode(c.Analysis.DefaultMode); err != nil {
			return fmt.Errorf("analysis.default_mode: %w", err)
		}
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
