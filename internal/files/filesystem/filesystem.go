package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// FileSystemProvider is the read-only view of a corpus the walker and extractors use.
// Missing paths are reported with errors matching fs.ErrNotExist.
type FileSystemProvider interface {
	// ReadFile reads a specific file at the given path
	ReadFile(path string) ([]byte, error)

	// ReadDir returns the immediate entries of a directory, sorted by name.
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)

	// Join joins path elements with the provider's separator.
	Join(elem ...string) string
}
