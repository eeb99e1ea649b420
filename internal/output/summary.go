package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// SummaryRow is one repository's line in the run summary.
type SummaryRow struct {
	Name          string
	URL           string
	TestFiles     int
	Modifications int
	Commits       int
	Duration      time.Duration
	Err           error
}

// Failed reports whether the repository failed.
func (r SummaryRow) Failed() bool { return r.Err != nil }

// TotalModifications sums the counts of a ledger snapshot.
func TotalModifications(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// WriteSummary renders the run summary table to w.
func WriteSummary(w io.Writer, rows []SummaryRow) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	tbl.AppendHeader(table.Row{"Repository", "Status", "Test files", "Modifications", "Commits", "Elapsed"})

	failed := 0
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = r.URL
		}
		if r.Failed() {
			failed++
			tbl.AppendRow(table.Row{name, color.RedString("failed"), "-", "-", "-", formatDuration(r.Duration)})
			continue
		}
		tbl.AppendRow(table.Row{
			name,
			color.GreenString("ok"),
			humanize.Comma(int64(r.TestFiles)),
			humanize.Comma(int64(r.Modifications)),
			humanize.Comma(int64(r.Commits)),
			formatDuration(r.Duration),
		})
	}

	tbl.AppendFooter(table.Row{
		english.Plural(len(rows), "repository", "repositories"),
		fmt.Sprintf("%d failed", failed),
	})
	tbl.Render()
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
