package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

var summaryHeaders = []string{
	"Category", "State", "Visited", "Skipped", "Failed",
	"Emitted", "Deduplicated", "Conflicts", "Loaded", "Load failures", "Duration",
}

// RenderSummaries renders one row per category run. Plain mode writes the
// one-line summaries instead of a table.
func RenderSummaries(summaries []*pulse.Summary, mode Mode) string {
	if mode == ModePlain {
		var b strings.Builder
		for _, s := range summaries {
			b.WriteString(s.String())
			b.WriteString("\n")
		}
		return b.String()
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Category.String(),
			s.State.String(),
			strconv.Itoa(s.FilesVisited),
			strconv.Itoa(s.FilesSkipped),
			strconv.Itoa(s.FilesFailed),
			strconv.Itoa(s.RecordsEmitted),
			strconv.Itoa(s.RecordsDeduplicated),
			strconv.Itoa(s.Conflicts),
			strconv.Itoa(s.RowsLoaded),
			strconv.Itoa(s.LoadFailures),
			s.Duration.Round(time.Millisecond).String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(BorderStyle).
		Headers(summaryHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return HeaderStyle
			case col == 1:
				return stateStyle(summaries[row].State)
			case col == 0:
				return CellStyle
			default:
				return NumberStyle
			}
		})
	return t.String() + "\n"
}

func stateStyle(state pulse.RunState) lipgloss.Style {
	switch state {
	case pulse.StateDone:
		return CellStyle.Inherit(SuccessStyle)
	case pulse.StateAborted:
		return CellStyle.Inherit(ErrorStyle)
	default:
		return CellStyle.Inherit(WarningStyle)
	}
}
