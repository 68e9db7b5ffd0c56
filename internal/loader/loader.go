// Package loader appends normalized records to their category table.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vvka-141/pulseload/internal/store"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// Stats counts what a Loader did during one run.
type Stats struct {
	RowsLoaded   int
	LoadFailures int
	Batches      int
	Commits      int
}

// FlushObserver is told about each submitted batch.
type FlushObserver func(rows, failed int, elapsed time.Duration)

// Option configures a Loader.
type Option func(*Loader)

// WithBatchSize sets the number of rows submitted per round trip.
func WithBatchSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

// WithCommitEvery commits after at least n rows were submitted; zero commits only in Finish.
func WithCommitEvery(n int) Option {
	return func(l *Loader) { l.commitEvery = n }
}

// WithFlushObserver registers a callback invoked after every batch.
func WithFlushObserver(fn FlushObserver) Option {
	return func(l *Loader) { l.onFlush = fn }
}

// Loader batches inserts for one category table. A rejected row is logged
// and counted; it never stops the rows after it.
// A Loader is used by a single goroutine.
type Loader struct {
	store     pulse.Store
	batcher   pulse.BatchExecer
	logger    pulse.Logger
	statement string

	batchSize   int
	commitEvery int
	onFlush     FlushObserver

	pending     []pulse.Record
	sinceCommit int
	stats       Stats
}

// New creates a Loader for category c writing through s.
// Panics if s or logger is nil.
func New(s pulse.Store, c pulse.Category, logger pulse.Logger, opts ...Option) *Loader {
	if s == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	l := &Loader{
		store:       s,
		logger:      logger,
		statement:   store.InsertStatement(s.Dialect(), c.Table()),
		batchSize:   pulse.DefaultBatchSize,
		commitEvery: pulse.DefaultCommitEvery,
	}
	if b, ok := s.(pulse.BatchExecer); ok {
		l.batcher = b
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add queues r and submits the queue once it reaches the batch size.
// Only cancellation and commit failures are returned.
func (l *Loader) Add(ctx context.Context, r pulse.Record) error {
	l.pending = append(l.pending, r)
	if len(l.pending) < l.batchSize {
		return nil
	}
	return l.flush(ctx)
}

// Finish submits queued rows and commits the run.
func (l *Loader) Finish(ctx context.Context) (Stats, error) {
	if err := l.flush(ctx); err != nil {
		return l.stats, err
	}
	if err := l.commit(ctx); err != nil {
		return l.stats, err
	}
	return l.stats, nil
}

// Stats returns the counters so far.
func (l *Loader) Stats() Stats {
	return l.stats
}

func (l *Loader) flush(ctx context.Context) error {
	if len(l.pending) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := l.pending
	l.pending = nil
	start := time.Now()

	rowErrs, err := l.submit(ctx, batch)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.logger.Error("batch of %d rows into %s rejected: %v", len(batch), batch[0].Category().Table().Name, err)
		rowErrs = make([]error, len(batch))
		for i := range rowErrs {
			rowErrs[i] = err
		}
	}

	failed := 0
	for i, rowErr := range rowErrs {
		if rowErr == nil {
			l.stats.RowsLoaded++
			continue
		}
		failed++
		l.stats.LoadFailures++
		loadErr := &pulse.LoadError{Coordinate: batch[i].Coordinate(), Key: batch[i].Key(), Err: rowErr}
		l.logger.Error("%s: %v", batch[i].Category(), loadErr)
	}
	l.stats.Batches++
	l.sinceCommit += len(batch)
	if l.onFlush != nil {
		l.onFlush(len(batch), failed, time.Since(start))
	}

	if l.commitEvery > 0 && l.sinceCommit >= l.commitEvery {
		return l.commit(ctx)
	}
	return nil
}

func (l *Loader) submit(ctx context.Context, batch []pulse.Record) ([]error, error) {
	if l.batcher != nil {
		rows := make([][]any, len(batch))
		for i, r := range batch {
			rows[i] = r.Values()
		}
		rowErrs, err := l.batcher.ExecBatch(ctx, l.statement, rows)
		if err == nil && len(rowErrs) != len(batch) {
			err = fmt.Errorf("store returned %d results for %d rows", len(rowErrs), len(batch))
		}
		return rowErrs, err
	}

	rowErrs := make([]error, len(batch))
	for i, r := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rowErrs[i] = l.store.Exec(ctx, l.statement, r.Values()...)
	}
	return rowErrs, nil
}

func (l *Loader) commit(ctx context.Context) error {
	if err := l.store.Commit(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("commit after %d rows: %v: %w", l.stats.RowsLoaded, err, pulse.ErrCommitFailed)
	}
	l.stats.Commits++
	l.sinceCommit = 0
	return nil
}
