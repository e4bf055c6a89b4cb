package pw

import (
	"io"
	"io/fs"
)

// FilesystemManager abstracts manuscript file access so the service can be
// tested without touching the real filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path, stats it, and validates
	// it's a regular file or directory (not a symlink, device, etc.).
	Resolve(rawPath string) (*Path, error)

	// Open opens a file for reading.
	Open(path *Path) (io.ReadCloser, error)

	// Stat returns fresh file info for a path.
	Stat(path *Path) (fs.FileInfo, error)

	// FindFiles returns the regular files under dir in lexical order.
	// When recursive is false only direct children are considered.
	// Paths matching an ignore rule are excluded.
	FindFiles(dir *Path, recursive bool) ([]*Path, error)
}
