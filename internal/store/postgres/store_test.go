package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pulseload/internal/db"
	"github.com/vvka-141/pulseload/internal/logging"
	"github.com/vvka-141/pulseload/internal/store"
	"github.com/vvka-141/pulseload/internal/testinfra"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

func openStore(t *testing.T) (*Store, *pgxpool.Pool) {
	t.Helper()
	connString := testinfra.RequireDatabase(t)
	ctx := context.Background()

	cfg, err := db.ParseConnectionString(connString)
	require.NoError(t, err)
	s, err := Open(ctx, db.NewStandardConnector(cfg, logging.NewNullLogger()), logging.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	check, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)
	t.Cleanup(check.Close)

	_, err = check.Exec(ctx, `DROP TABLE IF EXISTS "aggregated_transactions"`)
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(ctx, s, pulse.CategoryAggregatedTransaction))
	_, err = check.Exec(ctx, `CREATE UNIQUE INDEX aggregated_transactions_key
		ON aggregated_transactions (year, quarter, state, transaction_type)`)
	require.NoError(t, err)
	return s, check
}

func row(txType string, count int64) []any {
	return pulse.AggregatedTransaction{
		At:              pulse.Coordinate{Region: "Karnataka", Year: 2023, Quarter: 2},
		TransactionType: txType,
		Count:           count,
		Amount:          decimal.RequireFromString("5000.25"),
	}.Values()
}

func TestStore_ExecBatchIsolatesRejectedRows(t *testing.T) {
	s, check := openStore(t)
	ctx := context.Background()
	insert := store.InsertStatement(pulse.DialectPostgres, pulse.CategoryAggregatedTransaction.Table())

	rowErrs, err := s.ExecBatch(ctx, insert, [][]any{
		row("Recharge", 1),
		row("Recharge", 2),
		row("Merchant payments", 3),
		row("Recharge", 4),
		row("Others", 5),
	})
	require.NoError(t, err)
	require.Len(t, rowErrs, 5)
	assert.NoError(t, rowErrs[0])
	assert.Error(t, rowErrs[1])
	assert.NoError(t, rowErrs[2])
	assert.Error(t, rowErrs[3])
	assert.NoError(t, rowErrs[4])

	require.NoError(t, s.Commit(ctx))

	var n int
	require.NoError(t, check.QueryRow(ctx, `SELECT count(*) FROM aggregated_transactions`).Scan(&n))
	assert.Equal(t, 3, n)

	var amount decimal.Decimal
	require.NoError(t, check.QueryRow(ctx,
		`SELECT transaction_amount::text FROM aggregated_transactions WHERE transaction_type = 'Recharge'`).Scan(&amount))
	assert.True(t, amount.Equal(decimal.RequireFromString("5000.25")))
}

func TestStore_CloseRollsBackUncommitted(t *testing.T) {
	s, check := openStore(t)
	ctx := context.Background()
	insert := store.InsertStatement(pulse.DialectPostgres, pulse.CategoryAggregatedTransaction.Table())

	require.NoError(t, s.Exec(ctx, insert, row("Recharge", 1)...))
	require.NoError(t, s.Close())

	var n int
	require.NoError(t, check.QueryRow(ctx, `SELECT count(*) FROM aggregated_transactions`).Scan(&n))
	assert.Zero(t, n)
}
