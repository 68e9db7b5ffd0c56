package walker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pulseload/internal/files/filesystem"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

type visit struct {
	files []QuarterFile
	skips []error
	errs  []error
}

func (v *visit) fn(file QuarterFile, err error) error {
	switch {
	case err == nil:
		v.files = append(v.files, file)
	case errors.Is(err, pulse.ErrStructuralSkip):
		v.skips = append(v.skips, err)
	default:
		v.errs = append(v.errs, err)
	}
	return nil
}

func TestWalk_YieldsCoordinatesFromPath(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/corpus")
	mfs.AddFile("karnataka/2023/2.json", "{}")
	mfs.AddFile("karnataka/2023/1.json", "{}")
	mfs.AddFile("goa/2021/4.json", "{}")

	v := &visit{}
	require.NoError(t, New(mfs).Walk(context.Background(), "/corpus", v.fn))

	assert.Equal(t, []QuarterFile{
		{Region: "goa", Year: 2021, Quarter: 4, Path: "/corpus/goa/2021/4.json"},
		{Region: "karnataka", Year: 2023, Quarter: 1, Path: "/corpus/karnataka/2023/1.json"},
		{Region: "karnataka", Year: 2023, Quarter: 2, Path: "/corpus/karnataka/2023/2.json"},
	}, v.files)
	assert.Empty(t, v.skips)
	assert.Empty(t, v.errs)
}

func TestWalk_IgnoresNoiseSilently(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/corpus")
	mfs.AddFile(".DS_Store", "x")
	mfs.AddFile("karnataka/notes.txt", "x")
	mfs.AddFile("karnataka/2023/readme.md", "x")
	mfs.AddDir("karnataka/2023/archive")
	mfs.AddFile("karnataka/2023/3.json", "{}")

	v := &visit{}
	require.NoError(t, New(mfs).Walk(context.Background(), "/corpus", v.fn))

	require.Len(t, v.files, 1)
	assert.Equal(t, 3, v.files[0].Quarter)
	assert.Empty(t, v.skips)
}

func TestWalk_ReportsStructuralSkips(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/corpus")
	mfs.AddFile("karnataka/2023/q2.json", "{}")
	mfs.AddFile("karnataka/2023/5.json", "{}")
	mfs.AddFile("karnataka/latest/1.json", "{}")
	mfs.AddFile("karnataka/2023/1.json", "{}")

	v := &visit{}
	require.NoError(t, New(mfs).Walk(context.Background(), "/corpus", v.fn))

	assert.Len(t, v.files, 1)
	assert.Len(t, v.skips, 3)
	assert.Empty(t, v.errs)
}

func TestWalk_MissingRootIsFatal(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/corpus")

	err := New(mfs).Walk(context.Background(), "/nowhere", (&visit{}).fn)
	assert.ErrorIs(t, err, pulse.ErrFatalConfiguration)

	mfs.AddFile("file.json", "{}")
	err = New(mfs).Walk(context.Background(), "/corpus/file.json", (&visit{}).fn)
	assert.ErrorIs(t, err, pulse.ErrFatalConfiguration)
}

func TestWalk_StopsWhenVisitorFails(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/corpus")
	mfs.AddFile("goa/2021/1.json", "{}")
	mfs.AddFile("goa/2021/2.json", "{}")

	stop := errors.New("stop")
	calls := 0
	err := New(mfs).Walk(context.Background(), "/corpus", func(QuarterFile, error) error {
		calls++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestWalk_HonorsCancellation(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/corpus")
	mfs.AddFile("goa/2021/1.json", "{}")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(mfs).Walk(ctx, "/corpus", (&visit{}).fn)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_PanicsOnNilProvider(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}
