package pw

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Path is a resolved filesystem path with the stat info captured at resolve time.
// Paths are created by FilesystemManager.Resolve.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path from its components.
// This is primarily for use by FilesystemManager implementations.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{absPath: absPath, isDir: isDir, info: info}
}

// String returns the absolute path.
func (p *Path) String() string {
	return p.absPath
}

// IsDir returns true if this path points to a directory.
func (p *Path) IsDir() bool {
	return p.isDir
}

// Info returns the cached file info from when the path was resolved.
func (p *Path) Info() fs.FileInfo {
	return p.info
}

// Ext returns the lowercased file extension, including the dot.
func (p *Path) Ext() string {
	return strings.ToLower(filepath.Ext(p.absPath))
}

// ManuscriptExtensions are the file extensions treated as prose.
var ManuscriptExtensions = []string{".txt", ".md", ".markdown", ".text"}

// IsManuscript reports whether p is a regular file with a prose extension.
func (p *Path) IsManuscript() bool {
	if p.isDir {
		return false
	}
	ext := p.Ext()
	for _, e := range ManuscriptExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
