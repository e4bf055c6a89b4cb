package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/thedeuce2/ProWriter/internal/pw"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Paths are absolute and use forward slashes.
type MockFilesystemManager struct {
	files   map[string]*MockFile
	ignored map[string]bool
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:   make(map[string]*MockFile),
		ignored: make(map[string]bool),
	}
}

// AddFile adds a file, creating its parent directories.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.addParents(path)
	m.files[path] = &MockFile{Content: content, ModTime: time.Now()}
}

// AddDirectory adds a directory, creating its parents.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.addParents(path)
	m.files[path] = &MockFile{IsDirectory: true, ModTime: time.Now()}
}

// Ignore marks path as excluded from FindFiles.
func (m *MockFilesystemManager) Ignore(path string) {
	m.ignored[path] = true
}

func (m *MockFilesystemManager) addParents(path string) {
	for dir := filepath.Dir(path); dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		if _, ok := m.files[dir]; !ok {
			m.files[dir] = &MockFile{IsDirectory: true, ModTime: time.Now()}
		}
	}
}

func (m *MockFilesystemManager) info(path string, file *MockFile) fs.FileInfo {
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(file.Content)),
		modTime: file.ModTime,
		isDir:   file.IsDirectory,
	}
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*pw.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", absPath)
	}
	return pw.NewPath(absPath, file.IsDirectory, m.info(absPath, file)), nil
}

func (m *MockFilesystemManager) Open(path *pw.Path) (io.ReadCloser, error) {
	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path.String())
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path.String())
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (m *MockFilesystemManager) Stat(path *pw.Path) (fs.FileInfo, error) {
	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path.String())
	}
	return m.info(path.String(), file), nil
}

func (m *MockFilesystemManager) FindFiles(dir *pw.Path, recursive bool) ([]*pw.Path, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}
	prefix := dir.String() + "/"

	var paths []*pw.Path
	for p, file := range m.files {
		if file.IsDirectory || !strings.HasPrefix(p, prefix) || m.isIgnored(p, dir.String()) {
			continue
		}
		if !recursive && strings.Contains(strings.TrimPrefix(p, prefix), "/") {
			continue
		}
		paths = append(paths, pw.NewPath(p, false, m.info(p, file)))
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].String() < paths[j].String() })
	return paths, nil
}

// isIgnored reports whether p or any of its directories below root is ignored.
func (m *MockFilesystemManager) isIgnored(p, root string) bool {
	for cur := p; cur != root && cur != "/" && cur != "."; cur = filepath.Dir(cur) {
		if m.ignored[cur] {
			return true
		}
	}
	return false
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string { return m.name }
func (m *mockFileInfo) Size() int64  { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode {
	if m.isDir {
		return fs.ModeDir | 0755
	}
	return 0644
}
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// Compile-time check
var _ pw.FilesystemManager = (*MockFilesystemManager)(nil)
