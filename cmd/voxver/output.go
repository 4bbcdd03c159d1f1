package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"voxver/internal/dataset"
	"voxver/internal/manifest"
)

// printJSON writes v as indented JSON, formatted like the summary artifact so
// piped command output diffs cleanly against the stored file.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func newStyledTable() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

// renderSplitTable renders the per-split sample and duration table shared by
// build and show. Numeric columns are right aligned.
func renderSplitTable(summary manifest.Summary) string {
	tw := newStyledTable()
	tw.AppendHeader(table.Row{"Split", "Samples", "Hours"})
	for _, sp := range dataset.Splits() {
		name := string(sp)
		tw.AppendRow(table.Row{
			name,
			strconv.Itoa(summary.SplitCounts[name]),
			fmt.Sprintf("%.2f", summary.SplitDurationsHours[name]),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// renderVersionsTable renders the registry listing for the versions command.
func renderVersionsTable(rows []table.Row) string {
	tw := newStyledTable()
	tw.AppendHeader(table.Row{"Version", "State", "Samples", "Updated"})
	tw.AppendRows(rows)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
