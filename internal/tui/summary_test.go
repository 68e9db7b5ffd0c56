package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

func sampleSummaries() []*pulse.Summary {
	return []*pulse.Summary{
		{Category: pulse.CategoryAggregatedTransaction, State: pulse.StateDone,
			FilesVisited: 12, RecordsEmitted: 60, RowsLoaded: 59, LoadFailures: 1, Duration: 1500 * time.Millisecond},
		{Category: pulse.CategoryMapUser, State: pulse.StateAborted},
	}
}

func TestRenderSummaries_Plain(t *testing.T) {
	out := RenderSummaries(sampleSummaries(), ModePlain)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "aggregated-transaction DONE: files visited=12"))
	assert.Contains(t, lines[0], "rows loaded=59 load failures=1 (1.5s)")
	assert.True(t, strings.HasPrefix(lines[1], "map-user ABORTED"))
}

func TestRenderSummaries_Table(t *testing.T) {
	out := RenderSummaries(sampleSummaries(), ModeStyled)

	for _, want := range []string{"Category", "Load failures", "aggregated-transaction", "map-user", "ABORTED", "59", "1.5s"} {
		assert.Contains(t, out, want)
	}
	assert.Len(t, strings.Split(strings.TrimSuffix(out, "\n"), "\n"), 6, "border, header, separator, two rows, border")
}
