package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/vvka-141/pulseload/internal/dedup"
	"github.com/vvka-141/pulseload/internal/loader"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// transitions lists the legal state changes of a run.
var transitions = map[pulse.RunState][]pulse.RunState{
	pulse.StateWalking:    {pulse.StateExtracting, pulse.StateLoading, pulse.StateAborted},
	pulse.StateExtracting: {pulse.StateLoading, pulse.StateFileFailed, pulse.StateWalking, pulse.StateAborted},
	pulse.StateLoading:    {pulse.StateWalking, pulse.StateDone, pulse.StateAborted},
	pulse.StateFileFailed: {pulse.StateWalking, pulse.StateAborted},
}

// run is the mutable state of one category run. Only the consume stage
// touches it.
type run struct {
	*Runner
	summary *pulse.Summary
	seen    *dedup.Set
	loader  *loader.Loader
}

func (rs *run) enter(to pulse.RunState) {
	from := rs.summary.State
	if from == to {
		return
	}
	legal := false
	for _, s := range transitions[from] {
		if s == to {
			legal = true
			break
		}
	}
	if !legal {
		panic(fmt.Sprintf("illegal run transition %s -> %s", from, to))
	}
	rs.summary.State = to
	if rs.onTransition != nil {
		rs.onTransition(rs.summary.Category, from, to)
	}
}

func (rs *run) abort(err error) (*pulse.Summary, error) {
	rs.enter(pulse.StateAborted)
	rs.logger.Error("%s: run aborted: %v", rs.summary.Category, err)
	return rs.summary, err
}

func (rs *run) applyStats(stats loader.Stats) {
	rs.summary.RowsLoaded = stats.RowsLoaded
	rs.summary.LoadFailures = stats.LoadFailures
}

func (rs *run) fail(path string, err error) {
	rs.summary.FilesFailed++
	rs.summary.Errors = append(rs.summary.Errors, pulse.FileError{Path: path, Err: err})
	rs.logger.Error("%v", err)
}

// consume applies one file's outcome to the run. It returns an error only
// when the run must stop.
func (rs *run) consume(ctx context.Context, fr fileResult) error {
	s := rs.summary
	if fr.walkErr != nil {
		if errors.Is(fr.walkErr, pulse.ErrStructuralSkip) {
			s.FilesSkipped++
			rs.logger.Verbose("skipping %v", fr.walkErr)
			return nil
		}
		rs.fail(fr.file.Path, fr.walkErr)
		return nil
	}

	s.FilesVisited++
	rs.enter(pulse.StateExtracting)
	if fr.err != nil {
		if errors.Is(fr.err, context.Canceled) || errors.Is(fr.err, context.DeadlineExceeded) {
			return fr.err
		}
		rs.enter(pulse.StateFileFailed)
		rs.fail(fr.file.Path, fr.err)
		rs.enter(pulse.StateWalking)
		return nil
	}

	res := fr.result
	s.RecordsExtracted += len(res.Records)
	s.RecordsDropped += len(res.Dropped)
	s.SparseEntries += res.Sparse
	for _, dropped := range res.Dropped {
		rs.logger.Warn("%s: record dropped: %v", fr.file.Path, dropped)
	}
	if res.Sparse > 0 {
		rs.logger.Verbose("%s: %d entries without a region identifier", fr.file.Path, res.Sparse)
	}
	if res.Skipped != "" {
		s.FilesSkipped++
		rs.logger.Info("%s: skipped: %s", fr.file.Path, res.Skipped)
		rs.enter(pulse.StateWalking)
		return nil
	}

	rs.enter(pulse.StateLoading)
	for _, rec := range res.Records {
		switch rs.seen.Admit(rec) {
		case dedup.Kept:
			s.RecordsEmitted++
			if err := rs.loader.Add(ctx, rec); err != nil {
				return err
			}
		case dedup.Duplicate:
			s.RecordsDeduplicated++
		case dedup.Conflict:
			s.RecordsDeduplicated++
			s.Conflicts++
			rs.logger.Warn("%s: key %s already loaded with different values; keeping the first", fr.file.Path, rec.Key())
		}
	}
	rs.enter(pulse.StateWalking)
	return nil
}
