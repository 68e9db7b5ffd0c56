// Package sqlstore implements pulse.Store over database/sql for MySQL and
// SQLite. Both engines undo only the failing statement on a constraint
// violation, so a rejected row leaves the transaction usable.
package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/vvka-141/pulseload/internal/retry"
	"github.com/vvka-141/pulseload/pkg/pulse"
	_ "modernc.org/sqlite"
)

// Store writes through one transaction at a time, begun lazily and
// replaced after every Commit. Not safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect pulse.Dialect
	tx      *sql.Tx
}

// New wraps an open database. The Store takes ownership of db.
func New(db *sql.DB, dialect pulse.Dialect) *Store {
	if db == nil {
		panic("db cannot be nil")
	}
	return &Store{db: db, dialect: dialect}
}

// OpenMySQL connects with a go-sql-driver DSN such as
// "loader:secret@tcp(localhost:3306)/pulse". Transient failures while
// connecting are retried.
func OpenMySQL(ctx context.Context, dsn string, logger pulse.Logger) (*Store, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %v: %w", err, pulse.ErrInvalidConfig)
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %v: %w", err, pulse.ErrInvalidConfig)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(2)

	if err := retry.MySQLDialer(logger).Dial(ctx, db.PingContext); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL at %s: %w: %w", cfg.Addr, pulse.ErrConnectionFailed, err)
	}
	logger.Verbose("connected to MySQL at %s/%s", cfg.Addr, cfg.DBName)
	return New(db, pulse.DialectMySQL), nil
}

// OpenSQLite opens or creates the database file at path; ":memory:" is
// a private in-memory database.
func OpenSQLite(ctx context.Context, path string, logger pulse.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty: %w", pulse.ErrInvalidConfig)
	}
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %v: %w", path, err, pulse.ErrConnectionFailed)
	}
	// One connection keeps :memory: databases and the write lock in one place.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w: %w", path, pulse.ErrConnectionFailed, err)
	}
	logger.Verbose("opened SQLite database %s", path)
	return New(db, pulse.DialectSQLite), nil
}

func (s *Store) Dialect() pulse.Dialect { return s.dialect }

// DB exposes the underlying handle for read queries.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) begin(ctx context.Context) error {
	if s.tx != nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

func (s *Store) Exec(ctx context.Context, statement string, args ...any) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	_, err := s.tx.ExecContext(ctx, statement, args...)
	return err
}

// ExecBatch prepares statement once and runs it per row. Lost connections
// and cancellation fail the whole batch; anything else is the row's error.
func (s *Store) ExecBatch(ctx context.Context, statement string, rows [][]any) ([]error, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	stmt, err := s.tx.PrepareContext(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	rowErrs := make([]error, len(rows))
	for i, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			if connectionLost(ctx, err) {
				return nil, err
			}
			rowErrs[i] = err
		}
	}
	return rowErrs, nil
}

func connectionLost(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrTxDone) ||
		errors.Is(err, sql.ErrConnDone)
}

func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return tx.Commit()
}

// Close rolls back uncommitted work and closes the database.
func (s *Store) Close() error {
	var errs []error
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}
		s.tx = nil
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

var (
	_ pulse.Store       = (*Store)(nil)
	_ pulse.BatchExecer = (*Store)(nil)
)
