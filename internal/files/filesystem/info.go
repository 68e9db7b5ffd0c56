package filesystem

import (
	"io/fs"
	"time"
)

// entryInfo implements fs.FileInfo for virtual filesystems.
type entryInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
}

func (f *entryInfo) Name() string       { return f.name }
func (f *entryInfo) Size() int64        { return f.size }
func (f *entryInfo) ModTime() time.Time { return f.modTime }
func (f *entryInfo) IsDir() bool        { return f.isDir }
func (f *entryInfo) Sys() interface{}   { return nil }

func (f *entryInfo) Mode() fs.FileMode {
	if f.isDir {
		return 0755 | fs.ModeDir
	}
	return 0644
}
