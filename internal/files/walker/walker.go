package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/vvka-141/pulseload/internal/files/filesystem"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

const jsonExt = ".json"

// QuarterFile is one candidate document. Region is the raw directory name.
type QuarterFile struct {
	Region  string
	Year    int
	Quarter int
	Path    string
}

// VisitFunc receives each quarter file, or a non-nil error naming the entry
// that could not be visited. Errors matching pulse.ErrStructuralSkip are
// corpus noise. Returning an error stops the walk.
type VisitFunc func(file QuarterFile, err error) error

// Walker walks a corpus through a filesystem provider.
// Safe for concurrent use if the provider is.
type Walker struct {
	fsProvider filesystem.FileSystemProvider
}

// New creates a Walker. Panics if fsProvider is nil.
func New(fsProvider filesystem.FileSystemProvider) *Walker {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Walker{fsProvider: fsProvider}
}

// CheckRoot verifies root is a readable directory.
func (w *Walker) CheckRoot(root string) error {
	info, err := w.fsProvider.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("corpus root %s does not exist: %w", root, pulse.ErrFatalConfiguration)
		}
		return fmt.Errorf("corpus root %s is unreadable: %v: %w", root, err, pulse.ErrFatalConfiguration)
	}
	if !info.IsDir() {
		return fmt.Errorf("corpus root %s is not a directory: %w", root, pulse.ErrFatalConfiguration)
	}
	return nil
}

// Walk visits every quarter file below root in name order.
// A missing or unreadable root is returned as pulse.ErrFatalConfiguration
// before fn is called. Unreadable region or year directories are passed to fn.
func (w *Walker) Walk(ctx context.Context, root string, fn VisitFunc) error {
	if err := w.CheckRoot(root); err != nil {
		return err
	}
	regions, err := w.fsProvider.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to list corpus root %s: %v: %w", root, err, pulse.ErrFatalConfiguration)
	}

	for _, region := range regions {
		if !region.IsDir() {
			continue
		}
		if err := w.walkRegion(ctx, w.fsProvider.Join(root, region.Name()), region.Name(), fn); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkRegion(ctx context.Context, regionPath, region string, fn VisitFunc) error {
	years, err := w.fsProvider.ReadDir(regionPath)
	if err != nil {
		return fn(QuarterFile{Region: region, Path: regionPath}, fmt.Errorf("failed to list %s: %w", regionPath, err))
	}

	for _, entry := range years {
		if !entry.IsDir() {
			continue
		}
		yearPath := w.fsProvider.Join(regionPath, entry.Name())
		year, err := strconv.Atoi(entry.Name())
		if err != nil || year < pulse.MinYear || year > pulse.MaxYear {
			skip := fmt.Errorf("%s: year directory %q is not a 4-digit year: %w", yearPath, entry.Name(), pulse.ErrStructuralSkip)
			if err := fn(QuarterFile{Region: region, Path: yearPath}, skip); err != nil {
				return err
			}
			continue
		}
		if err := w.walkYear(ctx, yearPath, region, year, fn); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkYear(ctx context.Context, yearPath, region string, year int, fn VisitFunc) error {
	files, err := w.fsProvider.ReadDir(yearPath)
	if err != nil {
		return fn(QuarterFile{Region: region, Year: year, Path: yearPath}, fmt.Errorf("failed to list %s: %w", yearPath, err))
	}

	for _, entry := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, jsonExt) {
			continue
		}

		file := QuarterFile{Region: region, Year: year, Path: w.fsProvider.Join(yearPath, name)}
		stem := strings.TrimSuffix(name, jsonExt)
		quarter, err := strconv.Atoi(stem)
		var visitErr error
		switch {
		case err != nil:
			visitErr = fmt.Errorf("%s: quarter %q is not an integer: %w", file.Path, stem, pulse.ErrStructuralSkip)
		case quarter < 1 || quarter > 4:
			visitErr = fmt.Errorf("%s: quarter %d is outside 1-4: %w", file.Path, quarter, pulse.ErrStructuralSkip)
		default:
			file.Quarter = quarter
		}

		if err := fn(file, visitErr); err != nil {
			return err
		}
	}
	return nil
}
