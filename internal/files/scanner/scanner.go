package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/vvka-141/pgdash/internal/files/filesystem"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// Scanner discovers source files through a filesystem provider.
// Safe for concurrent use when the provider is.
type Scanner struct {
	fsProvider filesystem.FileSystemProvider
}

// NewScanner creates a scanner over the OS filesystem.
func NewScanner() *Scanner {
	return &Scanner{fsProvider: filesystem.NewOSFileSystem()}
}

// NewScannerWithFS creates a scanner over a custom filesystem provider.
// Panics if fsProvider is nil.
func NewScannerWithFS(fsProvider filesystem.FileSystemProvider) *Scanner {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{fsProvider: fsProvider}
}

// ScanDirectory lists the *.csv files directly inside dir, sorted by name.
// An empty result is not an error. A missing, non-directory or unreadable
// dir is reported wrapping pgdash.ErrSourceNotFound.
func (s *Scanner) ScanDirectory(dir string) ([]pgdash.SourceFile, error) {
	info, err := s.fsProvider.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("datasets directory %q does not exist: %w", dir, pgdash.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("datasets directory %q is not accessible: %v: %w", dir, err, pgdash.ErrSourceNotFound)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("datasets path %q is not a directory: %w", dir, pgdash.ErrSourceNotFound)
	}

	entries, err := s.fsProvider.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("datasets directory %q is not readable: %v: %w", dir, err, pgdash.ErrSourceNotFound)
	}

	var files []pgdash.SourceFile
	for _, entry := range entries {
		if entry.IsDir() || !IsSourceFile(entry.Name()) {
			continue
		}
		files = append(files, pgdash.SourceFile{
			Path:       path.Join(filepath.ToSlash(dir), entry.Name()),
			Name:       entry.Name(),
			TableName:  TableName(entry.Name()),
			SizeBytes:  entry.Size(),
			ModifiedAt: entry.ModTime(),
		})
	}

	return files, nil
}

// IsSourceFile reports whether name has the .csv extension in any case.
func IsSourceFile(name string) bool {
	return strings.EqualFold(path.Ext(name), pgdash.SourceExtension)
}

// TableName derives the target table identifier from a file name:
// the base name without extension, lower-cased.
func TableName(name string) string {
	base := path.Base(filepath.ToSlash(name))
	return strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
}

var _ pgdash.FileScanner = (*Scanner)(nil)
