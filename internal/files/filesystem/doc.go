// Package filesystem abstracts the few filesystem operations the loader
// needs, so discovery and parsing can run against an in-memory tree in tests.
//
// Implementations:
//   - OSFileSystem: production implementation using the os package
//   - MemoryFileSystem: in-memory implementation for testing
//
// Both report missing paths with errors that satisfy errors.Is(err, fs.ErrNotExist).
package filesystem
