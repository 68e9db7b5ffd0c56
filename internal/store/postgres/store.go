// Package postgres is the PostgreSQL store. Every row runs under its own
// savepoint inside the run's transaction, so a rejected row is rolled back
// alone and later rows still load.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

const (
	savepoint         = "SAVEPOINT pulse_row"
	releaseSavepoint  = "RELEASE SAVEPOINT pulse_row"
	rollbackSavepoint = "ROLLBACK TO SAVEPOINT pulse_row"
)

// Store writes through one transaction at a time. A transaction is begun
// lazily and replaced after every Commit. Not safe for concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	logger pulse.Logger
	closer io.Closer
	tx     pgx.Tx
}

// Open connects through connector. Close closes the pool and, if the
// connector holds resources of its own, the connector too.
func Open(ctx context.Context, connector pulse.Connector, logger pulse.Logger) (*Store, error) {
	if connector == nil {
		panic("connector cannot be nil")
	}
	pool, err := connector.Connect(ctx)
	if err != nil {
		if errors.Is(err, pulse.ErrConnectionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%v: %w", err, pulse.ErrConnectionFailed)
	}
	s := New(pool, logger)
	if c, ok := connector.(io.Closer); ok {
		s.closer = c
	}
	return s, nil
}

// New wraps an open pool. The Store takes ownership of pool.
func New(pool *pgxpool.Pool, logger pulse.Logger) *Store {
	if pool == nil {
		panic("pool cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Store{pool: pool, logger: logger}
}

func (s *Store) Dialect() pulse.Dialect { return pulse.DialectPostgres }

func (s *Store) begin(ctx context.Context) error {
	if s.tx != nil {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

func (s *Store) Exec(ctx context.Context, statement string, args ...any) error {
	errs, err := s.ExecBatch(ctx, statement, [][]any{args})
	if err != nil {
		return err
	}
	return errs[0]
}

// ExecBatch pipelines rows in one round trip. When row i is rejected the
// pipeline stops there; the row's savepoint is rolled back and rows after
// i are resubmitted.
func (s *Store) ExecBatch(ctx context.Context, statement string, rows [][]any) ([]error, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}

	rowErrs := make([]error, len(rows))
	for start := 0; start < len(rows); {
		failed, rowErr, err := s.send(ctx, statement, rows[start:])
		if err != nil {
			return nil, err
		}
		if failed < 0 {
			break
		}
		rowErrs[start+failed] = rowErr
		if err := s.restore(ctx); err != nil {
			return nil, err
		}
		start += failed + 1
	}
	return rowErrs, nil
}

// send returns the index of the first rejected row, or -1.
func (s *Store) send(ctx context.Context, statement string, rows [][]any) (int, error, error) {
	batch := &pgx.Batch{}
	for _, args := range rows {
		batch.Queue(savepoint)
		batch.Queue(statement, args...)
		batch.Queue(releaseSavepoint)
	}

	results := s.tx.SendBatch(ctx, batch)
	for i := range rows {
		if _, err := results.Exec(); err != nil {
			results.Close() //nolint:errcheck
			return 0, nil, fmt.Errorf("open savepoint: %w", err)
		}
		if _, err := results.Exec(); err != nil {
			results.Close() //nolint:errcheck
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				return i, err, nil
			}
			return 0, nil, err
		}
		if _, err := results.Exec(); err != nil {
			results.Close() //nolint:errcheck
			return 0, nil, fmt.Errorf("release savepoint: %w", err)
		}
	}
	return -1, nil, results.Close()
}

// restore clears the aborted state left by a rejected row.
func (s *Store) restore(ctx context.Context) error {
	if _, err := s.tx.Exec(ctx, rollbackSavepoint); err != nil {
		return fmt.Errorf("rollback to savepoint: %w", err)
	}
	if _, err := s.tx.Exec(ctx, releaseSavepoint); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return tx.Commit(ctx)
}

// Close rolls back uncommitted work and releases the pool.
func (s *Store) Close() error {
	var errs []error
	if s.tx != nil {
		if err := s.tx.Rollback(context.Background()); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			errs = append(errs, err)
		}
		s.tx = nil
	}
	s.pool.Close()
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ pulse.Store       = (*Store)(nil)
	_ pulse.BatchExecer = (*Store)(nil)
)
