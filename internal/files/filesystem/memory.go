package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryEntry struct {
	content []byte
	info    *memoryFileInfo
}

// MemoryFileSystem implements FileSystemProvider in memory.
// Relative paths resolve against the root given to NewMemoryFileSystem.
type MemoryFileSystem struct {
	mu      sync.RWMutex
	root    string
	entries map[string]*memoryEntry
}

// NewMemoryFileSystem creates an in-memory filesystem containing only the root directory.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))
	mfs := &MemoryFileSystem{root: root, entries: make(map[string]*memoryEntry)}
	mfs.addDir(root)
	return mfs
}

// AddFile adds a text file.
func (mfs *MemoryFileSystem) AddFile(filePath, content string) {
	mfs.AddBytes(filePath, []byte(content), time.Now())
}

// AddBytes adds a file with raw content and a modification time.
// Missing parent directories are created.
func (mfs *MemoryFileSystem) AddBytes(filePath string, content []byte, modTime time.Time) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	abs := mfs.resolve(filePath)
	mfs.entries[abs] = &memoryEntry{
		content: content,
		info:    &memoryFileInfo{name: path.Base(abs), size: int64(len(content)), mode: 0644, modTime: modTime},
	}
	for dir := path.Dir(abs); dir != "." && dir != "/" && mfs.entries[dir] == nil; dir = path.Dir(dir) {
		mfs.addDir(dir)
	}
}

// AddDir adds an empty directory.
func (mfs *MemoryFileSystem) AddDir(dirPath string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.addDir(mfs.resolve(dirPath))
}

func (mfs *MemoryFileSystem) addDir(abs string) {
	mfs.entries[abs] = &memoryEntry{
		info: &memoryFileInfo{name: path.Base(abs), mode: 0755 | fs.ModeDir, modTime: time.Now()},
	}
}

func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || p == "." {
		return mfs.root
	}
	if !path.IsAbs(p) {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

func (mfs *MemoryFileSystem) lookup(op, p string) (*memoryEntry, error) {
	entry, ok := mfs.entries[mfs.resolve(p)]
	if !ok {
		return nil, &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
	}
	return entry, nil
}

func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	entry, err := mfs.lookup("read", filePath)
	if err != nil {
		return nil, err
	}
	if entry.info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	return entry.content, nil
}

func (mfs *MemoryFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	entry, err := mfs.lookup("readdir", dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if !entry.info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	prefix := mfs.resolve(dirPath) + "/"
	if prefix == "//" {
		prefix = "/"
	}
	var result []FileInfo
	for p, e := range mfs.entries {
		rest := strings.TrimPrefix(p, prefix)
		if rest == p || rest == "" || strings.Contains(rest, "/") {
			continue
		}
		result = append(result, e.info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	entry, err := mfs.lookup("stat", statPath)
	if err != nil {
		return nil, err
	}
	return entry.info, nil
}

var _ FileSystemProvider = (*MemoryFileSystem)(nil)
