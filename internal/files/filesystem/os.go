package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
)

// OSFileSystemProvider implements FileSystemProvider using the OS filesystem.
type OSFileSystemProvider struct{}

// NewOSFileSystem creates a new OS filesystem provider.
func NewOSFileSystem() *OSFileSystemProvider {
	return &OSFileSystemProvider{}
}

func (p *OSFileSystemProvider) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadDir resolves each entry's FileInfo; os.ReadDir already sorts by name.
func (p *OSFileSystemProvider) ReadDir(path string) ([]FileInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", filepath.Join(path, entry.Name()), err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (p *OSFileSystemProvider) Stat(path string) (FileInfo, error) {
	return os.Stat(path)
}

func (p *OSFileSystemProvider) Join(elem ...string) string {
	return filepath.Join(elem...)
}

var _ FileSystemProvider = (*OSFileSystemProvider)(nil)
