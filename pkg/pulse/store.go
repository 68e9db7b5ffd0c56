package pulse

import "context"

// Dialect selects SQL placeholder syntax, identifier quoting and column types.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectMySQL
	DialectSQLite
)

func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectMySQL:
		return "mysql"
	case DialectSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Store is the write capability a run needs from the relational store.
// A failed Exec must not poison later statements of the same run.
// Implementations are used by one goroutine at a time.
type Store interface {
	Dialect() Dialect

	// Exec runs one parameterized statement inside the current unit of work.
	Exec(ctx context.Context, statement string, args ...any) error

	// Commit makes every successful statement since the last commit durable.
	Commit(ctx context.Context) error

	// Close releases the store. Uncommitted work is rolled back.
	Close() error
}

// BatchExecer is implemented by stores that can submit many rows of one
// statement per round trip. The returned slice has one entry per row;
// a nil entry means the row was accepted.
type BatchExecer interface {
	ExecBatch(ctx context.Context, statement string, rows [][]any) ([]error, error)
}

// StoreOpener acquires a store for the duration of one run.
type StoreOpener func(ctx context.Context) (Store, error)
