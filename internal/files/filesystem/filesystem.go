package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// FileSystemProvider is the read-only view of a filesystem used for discovery and loading.
type FileSystemProvider interface {
	// ReadFile reads the whole file at path.
	ReadFile(path string) ([]byte, error)

	// ReadDir lists the immediate entries of the directory at path, sorted by name.
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns file information for the given path.
	Stat(path string) (FileInfo, error)
}
