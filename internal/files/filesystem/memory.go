package filesystem

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	content []byte
	info    *entryInfo
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// Paths use forward slashes; relative paths are resolved against the root.
type MemoryFileSystem struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	root    string
}

// NewMemoryFileSystem creates an in-memory filesystem containing only its root directory.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))
	mfs := &MemoryFileSystem{
		entries: make(map[string]*memoryEntry),
		root:    root,
	}
	mfs.entries[root] = newDirEntry(root)
	return mfs
}

// Root returns the normalized root directory.
func (mfs *MemoryFileSystem) Root() string {
	return mfs.root
}

// AddFile adds a file, creating its parent directories.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	abs := mfs.resolve(filePath)

	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.entries[abs] = &memoryEntry{
		content: []byte(content),
		info: &entryInfo{
			name:    path.Base(abs),
			size:    int64(len(content)),
			modTime: time.Now(),
		},
	}
	mfs.ensureParents(abs)
}

// AddDir adds an empty directory, creating its parents.
func (mfs *MemoryFileSystem) AddDir(dirPath string) {
	abs := mfs.resolve(dirPath)

	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	if _, ok := mfs.entries[abs]; !ok {
		mfs.entries[abs] = newDirEntry(abs)
	}
	mfs.ensureParents(abs)
}

func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	abs := mfs.resolve(filePath)

	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	entry, ok := mfs.entries[abs]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrNotExist}
	}
	if entry.info.isDir {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: fs.ErrInvalid}
	}
	return append([]byte(nil), entry.content...), nil
}

func (mfs *MemoryFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	abs := mfs.resolve(dirPath)

	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	entry, ok := mfs.entries[abs]
	if !ok {
		return nil, &fs.PathError{Op: "readdir", Path: dirPath, Err: fs.ErrNotExist}
	}
	if !entry.info.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: dirPath, Err: fs.ErrInvalid}
	}

	var infos []FileInfo
	for p, e := range mfs.entries {
		if p != abs && path.Dir(p) == abs {
			infos = append(infos, e.info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos, nil
}

func (mfs *MemoryFileSystem) Stat(filePath string) (FileInfo, error) {
	abs := mfs.resolve(filePath)

	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	entry, ok := mfs.entries[abs]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
	}
	return entry.info, nil
}

func (mfs *MemoryFileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if !path.IsAbs(p) && p != mfs.root && !strings.HasPrefix(p, mfs.root+"/") {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

// ensureParents must be called with mu held.
func (mfs *MemoryFileSystem) ensureParents(p string) {
	for dir := path.Dir(p); dir != p; p, dir = dir, path.Dir(dir) {
		if _, ok := mfs.entries[dir]; ok {
			return
		}
		mfs.entries[dir] = newDirEntry(dir)
	}
}

func newDirEntry(p string) *memoryEntry {
	return &memoryEntry{info: &entryInfo{name: path.Base(p), modTime: time.Now(), isDir: true}}
}

var _ FileSystemProvider = (*MemoryFileSystem)(nil)
