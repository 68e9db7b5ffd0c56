// Package storetest provides an in-memory pulse.Store for tests.
package storetest

import (
	"context"
	"errors"
	"sync"

	"github.com/vvka-141/pulseload/pkg/pulse"
)

// ErrClosed is returned by a Store used after Close.
var ErrClosed = errors.New("store closed")

// Exec is one accepted statement.
type Exec struct {
	Statement string
	Args      []any
}

// Store records statements in memory. Statements accepted since the last
// Commit are dropped by Close.
type Store struct {
	mu        sync.Mutex
	dialect   pulse.Dialect
	pending   []Exec
	committed []Exec
	commits   int
	closed    bool

	// Reject decides per statement whether to fail it.
	Reject func(statement string, args []any) error

	// CommitErr is returned by Commit when set.
	CommitErr error
}

// New creates an empty Store.
func New(d pulse.Dialect) *Store {
	return &Store{dialect: d}
}

func (s *Store) Dialect() pulse.Dialect { return s.dialect }

func (s *Store) Exec(ctx context.Context, statement string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execLocked(statement, args)
}

func (s *Store) execLocked(statement string, args []any) error {
	if s.closed {
		return ErrClosed
	}
	if s.Reject != nil {
		if err := s.Reject(statement, args); err != nil {
			return err
		}
	}
	s.pending = append(s.pending, Exec{Statement: statement, Args: args})
	return nil
}

func (s *Store) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.CommitErr != nil {
		return s.CommitErr
	}
	s.committed = append(s.committed, s.pending...)
	s.pending = nil
	s.commits++
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.pending = nil
	return nil
}

// Committed returns the statements made durable so far.
func (s *Store) Committed() []Exec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Exec(nil), s.committed...)
}

// Commits returns how many times Commit succeeded.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// BatchStore is a Store that also accepts whole batches.
type BatchStore struct {
	*Store
	batches int
}

// NewBatching creates an empty BatchStore.
func NewBatching(d pulse.Dialect) *BatchStore {
	return &BatchStore{Store: New(d)}
}

func (b *BatchStore) ExecBatch(ctx context.Context, statement string, rows [][]any) ([]error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	b.batches++
	errs := make([]error, len(rows))
	for i, args := range rows {
		errs[i] = b.execLocked(statement, args)
	}
	return errs, nil
}

// Batches returns how many ExecBatch calls were made.
func (b *BatchStore) Batches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.batches
}

var (
	_ pulse.Store       = (*Store)(nil)
	_ pulse.BatchExecer = (*BatchStore)(nil)
)
