package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pulseload/internal/store/storetest"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

func TestInsertStatement(t *testing.T) {
	table := pulse.CategoryAggregatedTransaction.Table()

	assert.Equal(t,
		`INSERT INTO "aggregated_transactions" ("year", "quarter", "state", "transaction_type", "transaction_count", "transaction_amount") VALUES ($1, $2, $3, $4, $5, $6)`,
		InsertStatement(pulse.DialectPostgres, table))
	assert.Equal(t,
		"INSERT INTO `aggregated_transactions` (`year`, `quarter`, `state`, `transaction_type`, `transaction_count`, `transaction_amount`) VALUES (?, ?, ?, ?, ?, ?)",
		InsertStatement(pulse.DialectMySQL, table))
}

func TestCreateTableStatement(t *testing.T) {
	got := CreateTableStatement(pulse.DialectSQLite, pulse.CategoryMapUser.Table())

	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "map_users" (
    "year" INTEGER,
    "quarter" INTEGER,
    "state" TEXT,
    "registered_users" INTEGER,
    "app_opens" INTEGER
)`, got)

	assert.Contains(t, CreateTableStatement(pulse.DialectPostgres, pulse.CategoryTopTransaction.Table()),
		`"transaction_amount" NUMERIC(24,6)`)
	assert.Contains(t, CreateTableStatement(pulse.DialectMySQL, pulse.CategoryAggregatedUser.Table()),
		"`device_percentage` DOUBLE")
}

func TestQuote_EscapesDelimiters(t *testing.T) {
	assert.Equal(t, `"a""b"`, Quote(pulse.DialectPostgres, `a"b`))
	assert.Equal(t, "`a``b`", Quote(pulse.DialectMySQL, "a`b"))
}

func TestEnsureSchema(t *testing.T) {
	s := storetest.New(pulse.DialectPostgres)

	require.NoError(t, EnsureSchema(context.Background(), s, pulse.CategoryTopUser, pulse.CategoryMapUser))

	require.Len(t, s.Committed(), 2)
	assert.Contains(t, s.Committed()[0].Statement, `CREATE TABLE IF NOT EXISTS "top_users"`)
	assert.Equal(t, 1, s.Commits())
}
