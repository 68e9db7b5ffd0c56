package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/pulseload/internal/dedup"
	"github.com/vvka-141/pulseload/internal/extract"
	"github.com/vvka-141/pulseload/internal/files/filesystem"
	"github.com/vvka-141/pulseload/internal/files/walker"
	"github.com/vvka-141/pulseload/internal/loader"
	"github.com/vvka-141/pulseload/internal/metrics"
	"github.com/vvka-141/pulseload/internal/normalize"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// TransitionFunc observes run state changes.
type TransitionFunc func(c pulse.Category, from, to pulse.RunState)

// Option configures a Runner.
type Option func(*Runner)

// WithMetrics records every finished run and batch latency in rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithTransitionHook registers fn for every state change.
func WithTransitionHook(fn TransitionFunc) Option {
	return func(r *Runner) { r.onTransition = fn }
}

// Runner executes category runs. Each Run opens its own store and walks
// its own root, so runs share nothing but the filesystem provider.
type Runner struct {
	fsProvider   filesystem.FileSystemProvider
	walker       *walker.Walker
	openStore    pulse.StoreOpener
	logger       pulse.Logger
	recorder     *metrics.Recorder
	onTransition TransitionFunc
}

// NewRunner creates a Runner. Panics if any argument is nil.
func NewRunner(fsProvider filesystem.FileSystemProvider, openStore pulse.StoreOpener, logger pulse.Logger, opts ...Option) *Runner {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if openStore == nil {
		panic("openStore cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	r := &Runner{
		fsProvider: fsProvider,
		walker:     walker.New(fsProvider),
		openStore:  openStore,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ingests one category. Data-quality problems never make Run fail;
// they are logged and counted in the returned summary. An error is
// returned only for invalid configuration, an unusable root or store,
// cancellation, or a rejected commit, and the summary is then ABORTED.
func (r *Runner) Run(ctx context.Context, cfg pulse.IngestConfig) (*pulse.Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ext, err := extract.For(cfg.Category)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	rs := &run{
		Runner:  r,
		summary: &pulse.Summary{RunID: uuid.New(), Category: cfg.Category, Root: cfg.Root, State: pulse.StateWalking},
		seen:    dedup.New(),
	}
	defer func() {
		rs.summary.Duration = time.Since(started)
		if r.recorder != nil {
			r.recorder.RecordSummary(*rs.summary)
		}
	}()

	r.logger.Info("%s: ingesting %s (run %s)", cfg.Category, cfg.Root, rs.summary.RunID)
	if err := r.walker.CheckRoot(cfg.Root); err != nil {
		return rs.abort(err)
	}

	s, err := r.openStore(ctx)
	if err != nil {
		return rs.abort(fmt.Errorf("open store: %w: %w", pulse.ErrFatalConfiguration, err))
	}
	defer func() {
		if err := s.Close(); err != nil {
			r.logger.Warn("%s: closing store: %v", cfg.Category, err)
		}
	}()

	loaderOpts := []loader.Option{loader.WithBatchSize(cfg.BatchSize), loader.WithCommitEvery(cfg.CommitEvery)}
	if r.recorder != nil {
		loaderOpts = append(loaderOpts, loader.WithFlushObserver(r.recorder.FlushObserver(cfg.Category)))
	}
	rs.loader = loader.New(s, cfg.Category, r.logger, loaderOpts...)

	if cfg.Workers > 1 {
		err = r.walkParallel(ctx, ext, cfg.Root, cfg.Workers, func(fr fileResult) error { return rs.consume(ctx, fr) })
	} else {
		err = r.walker.Walk(ctx, cfg.Root, func(file walker.QuarterFile, walkErr error) error {
			if walkErr != nil {
				return rs.consume(ctx, fileResult{file: file, walkErr: walkErr})
			}
			return rs.consume(ctx, r.extractFile(ctx, ext, file))
		})
	}
	if err != nil {
		rs.applyStats(rs.loader.Stats())
		return rs.abort(err)
	}

	rs.enter(pulse.StateLoading)
	stats, err := rs.loader.Finish(ctx)
	rs.applyStats(stats)
	if err != nil {
		return rs.abort(err)
	}

	rs.enter(pulse.StateDone)
	rs.summary.Duration = time.Since(started)
	r.logger.Info("%s", rs.summary)
	return rs.summary, nil
}

// RunAll runs each configuration in turn. A failed category does not stop
// the others; the returned error joins every failure.
func (r *Runner) RunAll(ctx context.Context, cfgs []pulse.IngestConfig) ([]*pulse.Summary, error) {
	summaries := make([]*pulse.Summary, 0, len(cfgs))
	var errs []error
	for _, cfg := range cfgs {
		summary, err := r.Run(ctx, cfg)
		if summary != nil {
			summaries = append(summaries, summary)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cfg.Category, err))
			if ctx.Err() != nil {
				break
			}
		}
	}
	return summaries, errors.Join(errs...)
}

// fileResult is what the extraction stage hands to the single consume stage.
type fileResult struct {
	file    walker.QuarterFile
	walkErr error
	result  extract.Result
	err     error
}

func (r *Runner) extractFile(ctx context.Context, ext extract.Extractor, file walker.QuarterFile) fileResult {
	fr := fileResult{file: file}
	if err := ctx.Err(); err != nil {
		fr.err = err
		return fr
	}

	content, err := r.fsProvider.ReadFile(file.Path)
	if err != nil {
		fr.err = &pulse.ExtractionError{Path: file.Path, Err: fmt.Errorf("read: %w", err)}
		return fr
	}
	doc, err := extract.Decode(content)
	if err != nil {
		fr.err = &pulse.ExtractionError{Path: file.Path, Err: err}
		return fr
	}

	at := pulse.Coordinate{Region: normalize.Title(file.Region), Year: file.Year, Quarter: file.Quarter}
	res, err := ext.Extract(ctx, doc, at)
	if err != nil {
		if ctx.Err() != nil {
			fr.err = ctx.Err()
		} else {
			fr.err = &pulse.ExtractionError{Path: file.Path, Err: err}
		}
		return fr
	}
	fr.result = res
	return fr
}
