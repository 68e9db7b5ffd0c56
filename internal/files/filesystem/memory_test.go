package filesystem

import (
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(infos []FileInfo) []string {
	out := make([]string, len(infos))
	for i, info := range infos {
		out[i] = info.Name()
	}
	return out
}

func TestMemoryFileSystem_ReadDirListsImmediateChildren(t *testing.T) {
	mfs := NewMemoryFileSystem("/corpus")
	mfs.AddFile("karnataka/2023/2.json", `{}`)
	mfs.AddFile("karnataka/2023/1.json", `{}`)
	mfs.AddFile("goa/2022/4.json", `{}`)
	mfs.AddFile("README.md", "notes")
	mfs.AddDir("empty")

	root, err := mfs.ReadDir("/corpus")
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "empty", "goa", "karnataka"}, names(root))

	quarters, err := mfs.ReadDir(mfs.Join("/corpus", "karnataka", "2023"))
	require.NoError(t, err)
	assert.Equal(t, []string{"1.json", "2.json"}, names(quarters))

	empty, err := mfs.ReadDir("/corpus/empty")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryFileSystem_StatAndReadFile(t *testing.T) {
	mfs := NewMemoryFileSystem("/corpus")
	mfs.AddFile("goa/2022/4.json", `{"data":{}}`)

	info, err := mfs.Stat("/corpus/goa")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	info, err = mfs.Stat("goa/2022/4.json")
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, int64(11), info.Size())

	content, err := mfs.ReadFile("/corpus/goa/2022/4.json")
	require.NoError(t, err)
	assert.Equal(t, `{"data":{}}`, string(content))
}

func TestMemoryFileSystem_MissingPaths(t *testing.T) {
	mfs := NewMemoryFileSystem("/corpus")
	mfs.AddFile("goa/2022/4.json", `{}`)

	_, err := mfs.Stat("/elsewhere")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = mfs.ReadFile("/corpus/goa/2022/1.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = mfs.ReadDir("/corpus/goa/2022/4.json")
	assert.ErrorIs(t, err, fs.ErrInvalid)

	_, err = mfs.ReadFile("/corpus/goa")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestOSFileSystem_ReadDir(t *testing.T) {
	dir := t.TempDir()
	osfs := NewOSFileSystem()

	require.NoError(t, writeTemp(osfs.Join(dir, "b.json"), "{}"))
	require.NoError(t, writeTemp(osfs.Join(dir, "a.json"), "{}"))

	infos, err := osfs.ReadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json"}, names(infos))

	_, err = osfs.Stat(osfs.Join(dir, "missing"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func writeTemp(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
