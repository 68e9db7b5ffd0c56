package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

func summary() pulse.Summary {
	return pulse.Summary{
		Category:            pulse.CategoryTopUser,
		State:               pulse.StateDone,
		FilesVisited:        4,
		FilesSkipped:        1,
		FilesFailed:         1,
		RecordsExtracted:    10,
		RecordsEmitted:      8,
		RecordsDeduplicated: 2,
		Conflicts:           1,
		RowsLoaded:          7,
		LoadFailures:        1,
		Duration:            1500 * time.Millisecond,
	}
}

func TestRecordSummary(t *testing.T) {
	r := NewRecorder()
	r.RecordSummary(summary())
	r.RecordSummary(summary())

	c := pulse.CategoryTopUser.String()
	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues(c, "DONE")))
	assert.Equal(t, 8.0, testutil.ToFloat64(r.files.WithLabelValues(c, "visited")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.records.WithLabelValues(c, "deduplicated")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.records.WithLabelValues(c, "conflict")))
	assert.Equal(t, 14.0, testutil.ToFloat64(r.rows.WithLabelValues(c, "loaded")))
	assert.Equal(t, 1.5, testutil.ToFloat64(r.runDuration.WithLabelValues(c)))
}

func TestFlushObserver(t *testing.T) {
	r := NewRecorder()
	observe := r.FlushObserver(pulse.CategoryMapUser)
	observe(500, 0, 20*time.Millisecond)
	observe(120, 3, 5*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(r.flushDuration))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.RecordSummary(summary())

	path := filepath.Join(t.TempDir(), "pulseload.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pulseload_rows_total{category="top-user",outcome="loaded"} 7`)
	assert.Contains(t, string(data), "# TYPE pulseload_runs_total counter")
}

func TestWriteTextfile_BadDirectory(t *testing.T) {
	err := NewRecorder().WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
