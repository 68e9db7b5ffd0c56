package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pulseload/internal/logging"
	"github.com/vvka-141/pulseload/internal/store/sqlstore"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// resetFlags restores defaults between Execute calls on the shared commands.
func resetFlags(t *testing.T) {
	t.Helper()
	for _, cmd := range []*cobra.Command{rootCmd, ingestCmd, schemaCmd} {
		for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				require.NoError(t, f.Value.Set(f.DefValue))
				f.Changed = false
			})
		}
	}
	for _, env := range []string{"PULSE_CORPUS_ROOT", "PULSE_CONNECTION_STRING", "DATABASE_URL", "PULSE_MYSQL_DSN", "PGHOST"} {
		t.Setenv(env, "")
	}
	t.Setenv("PULSE_PLAIN", "1")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetOut(nil)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeCorpusFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

const txDoc = `{"success": true, "data": {"transactionData": [
	{"name": "Recharge", "paymentInstruments": [{"type": "TOTAL", "count": 100, "amount": 5000.5}]},
	{"name": "Others", "paymentInstruments": [{"type": "TOTAL", "count": 3, "amount": 12}]}
]}}`

func countRows(t *testing.T, dbPath, table string) int {
	t.Helper()
	s, err := sqlstore.OpenSQLite(context.Background(), dbPath, logging.NewNullLogger())
	require.NoError(t, err)
	defer s.Close()
	var n int
	require.NoError(t, s.DB().QueryRow("SELECT count(*) FROM "+table).Scan(&n))
	return n
}

func TestIngest_SQLiteEndToEnd(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "data")
	dbPath := filepath.Join(dir, "pulse.db")
	metricsPath := filepath.Join(dir, "pulse.prom")
	writeCorpusFile(t, corpus, "aggregated/transaction/country/india/state/goa/2021/1.json", txDoc)
	writeCorpusFile(t, corpus, "aggregated/transaction/country/india/state/goa/2021/2.json", `{"code": "SUCCESS"}`)

	out, err := execute(t, "ingest", "aggregated-transaction",
		"--root", corpus, "--store", "sqlite", "--sqlite-path", dbPath,
		"--ensure-schema", "--metrics-file", metricsPath, "--batch-size", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "aggregated-transaction DONE: files visited=2 skipped=0 failed=1")
	assert.Contains(t, out, "rows loaded=2 load failures=0")
	assert.Equal(t, 2, countRows(t, dbPath, "aggregated_transactions"))

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `pulseload_rows_total{category="aggregated-transaction",outcome="loaded"} 2`)
}

func TestIngest_AllReportsWorstFailure(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "data")
	dbPath := filepath.Join(dir, "pulse.db")
	writeCorpusFile(t, corpus, "aggregated/transaction/country/india/state/goa/2021/1.json", txDoc)

	out, err := execute(t, "ingest", "--all",
		"--root", corpus, "--store", "sqlite", "--sqlite-path", dbPath, "--ensure-schema")

	require.Error(t, err)
	assert.Equal(t, pulse.ExitFatalRun, pulse.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "top-user")
	assert.Contains(t, out, "aggregated-transaction DONE")
	assert.Contains(t, out, "map-user ABORTED")
	assert.Equal(t, 2, countRows(t, dbPath, "aggregated_transactions"), "other categories do not stop a finished one")
}

func TestIngest_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "data")
	dbPath := filepath.Join(dir, "pulse.db")
	writeCorpusFile(t, corpus, "tx/goa/2021/1.json", txDoc)
	configPath := filepath.Join(dir, "pulse.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
store:
  driver: sqlite
  sqlite_path: `+dbPath+`
corpus:
  root: `+corpus+`
categories:
  aggregated-transaction: tx
ensure_schema: true
workers: 3
`), 0o644))

	out, err := execute(t, "--config", configPath, "ingest", "aggregated_transaction")
	require.NoError(t, err)
	assert.Contains(t, out, "rows loaded=2")
	assert.Equal(t, 2, countRows(t, dbPath, "aggregated_transactions"))
}

func TestIngest_ConfigurationErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{
			name: "missing categories",
			args: []string{"ingest"},
			code: pulse.ExitUsageError,
			want: "missing required argument",
		},
		{
			name: "unknown category",
			args: []string{"ingest", "weather", "--root", dir},
			code: pulse.ExitConfigError,
			want: "weather",
		},
		{
			name: "missing root",
			args: []string{"ingest", "top-user", "--store", "sqlite", "--sqlite-path", filepath.Join(dir, "x.db")},
			code: pulse.ExitConfigError,
			want: "corpus root is required",
		},
		{
			name: "unsupported driver",
			args: []string{"ingest", "top-user", "--root", dir, "--store", "oracle"},
			code: pulse.ExitConfigError,
			want: "unsupported store driver",
		},
		{
			name: "sqlite without path",
			args: []string{"ingest", "top-user", "--root", dir, "--store", "sqlite"},
			code: pulse.ExitConfigError,
			want: "--sqlite-path",
		},
		{
			name: "explicit config file missing",
			args: []string{"--config", filepath.Join(dir, "absent.yaml"), "ingest", "top-user"},
			code: pulse.ExitConfigError,
			want: "absent.yaml",
		},
		{
			name: "connection with granular flags",
			args: []string{"ingest", "top-user", "--root", dir, "--connection", "postgresql://localhost/pulse", "-h", "db"},
			code: pulse.ExitConfigError,
			want: "cannot combine",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, pulse.ExitCodeForError(err), "error: %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSchema_PrintsDialectStatements(t *testing.T) {
	out, err := execute(t, "schema", "top-user", "--store", "mysql")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "CREATE TABLE IF NOT EXISTS `top_users` ("))
	assert.Equal(t, 1, strings.Count(out, "CREATE TABLE"))
}

func TestSchema_ApplySQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pulse.db")

	_, err := execute(t, "schema", "--apply", "--store", "sqlite", "--sqlite-path", dbPath)
	require.NoError(t, err)

	for _, c := range pulse.AllCategories {
		assert.Zero(t, countRows(t, dbPath, c.Table().Name))
	}
}

func TestCategories_ListsEveryCategory(t *testing.T) {
	out, err := execute(t, "categories")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(pulse.AllCategories)+1)
	assert.Contains(t, lines[1], "aggregated-transaction")
	assert.Contains(t, lines[1], "aggregated_transactions")
	assert.Contains(t, lines[1], "aggregated/transaction/country/india/state")
}

func TestWorstFailure_PrefersHighestExitCode(t *testing.T) {
	err := worstFailure(errors.Join(
		pulse.ErrFatalConfiguration,
		pulse.ErrCommitFailed,
		pulse.ErrConnectionFailed,
	))
	assert.Equal(t, pulse.ExitCommitFailed, pulse.ExitCodeForError(err))
	assert.ErrorIs(t, err, pulse.ErrCommitFailed)
	assert.Contains(t, err.Error(), "fatal configuration error")
}

func TestIngest_HelpDescribesExitCode(t *testing.T) {
	assert.Contains(t, ingestCmd.Long, "the exit code reflects the most severe failure")
}
