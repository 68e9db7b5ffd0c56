// Package store generates the SQL a run issues and bootstraps destination tables.
// Driver-specific stores live in the postgres and sqlstore subpackages.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/pulseload/pkg/pulse"
)

var columnTypes = map[pulse.Dialect]map[pulse.ColumnType]string{
	pulse.DialectPostgres: {
		pulse.ColumnSmallInt: "SMALLINT",
		pulse.ColumnBigInt:   "BIGINT",
		pulse.ColumnText:     "TEXT",
		pulse.ColumnDecimal:  "NUMERIC(24,6)",
		pulse.ColumnFloat:    "DOUBLE PRECISION",
	},
	pulse.DialectMySQL: {
		pulse.ColumnSmallInt: "SMALLINT",
		pulse.ColumnBigInt:   "BIGINT",
		pulse.ColumnText:     "VARCHAR(255)",
		pulse.ColumnDecimal:  "DECIMAL(24,6)",
		pulse.ColumnFloat:    "DOUBLE",
	},
	pulse.DialectSQLite: {
		pulse.ColumnSmallInt: "INTEGER",
		pulse.ColumnBigInt:   "INTEGER",
		pulse.ColumnText:     "TEXT",
		pulse.ColumnDecimal:  "NUMERIC",
		pulse.ColumnFloat:    "REAL",
	},
}

// Quote quotes an identifier for the dialect.
func Quote(d pulse.Dialect, ident string) string {
	if d == pulse.DialectMySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Placeholder returns the n-th (1-based) bind parameter marker.
func Placeholder(d pulse.Dialect, n int) string {
	if d == pulse.DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// InsertStatement returns the parameterized single-row insert for t.
func InsertStatement(d pulse.Dialect, t pulse.Table) string {
	cols := make([]string, len(t.Columns))
	params := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = Quote(d, c.Name)
		params[i] = Placeholder(d, i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		Quote(d, t.Name), strings.Join(cols, ", "), strings.Join(params, ", "))
}

// CreateTableStatement returns an idempotent CREATE TABLE for t.
func CreateTableStatement(d pulse.Dialect, t pulse.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", Quote(d, t.Name))
	for i, c := range t.Columns {
		fmt.Fprintf(&b, "    %s %s", Quote(d, c.Name), columnTypes[d][c.Type])
		if i < len(t.Columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

// EnsureSchema creates the tables of the given categories when missing and commits.
func EnsureSchema(ctx context.Context, s pulse.Store, categories ...pulse.Category) error {
	for _, c := range categories {
		if err := s.Exec(ctx, CreateTableStatement(s.Dialect(), c.Table())); err != nil {
			return fmt.Errorf("failed to create table %s: %w", c.Table().Name, err)
		}
	}
	if err := s.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	return nil
}
